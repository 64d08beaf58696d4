// Package playback plays response audio through an external player binary,
// enforcing one active playback at a time.
package playback

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Runner executes a player process. Swapped out in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Resolver turns a backend-relative audio path into an absolute URL.
// (*api.Client).ResolveURL satisfies it.
type Resolver func(ref string) string

// Player downloads response audio and plays it with the first suitable
// system player. Starting playback for one message stops any other message
// that is still playing.
type Player struct {
	resolve  Resolver
	client   *http.Client
	runner   Runner
	lookPath func(string) (string, error)

	mu      sync.Mutex
	current string
	cancel  context.CancelFunc
}

type Option func(*Player)

func WithRunner(r Runner) Option {
	return func(p *Player) { p.runner = r }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(p *Player) { p.client = hc }
}

func WithLookPath(fn func(string) (string, error)) Option {
	return func(p *Player) { p.lookPath = fn }
}

func New(resolve Resolver, opts ...Option) *Player {
	p := &Player{
		resolve:  resolve,
		client:   &http.Client{Timeout: 60 * time.Second},
		runner:   execRunner{},
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Playing reports the id of the message currently playing, if any.
func (p *Player) Playing() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Play fetches the message's audio and plays it to completion. A second Play
// for the same message while it is playing restarts it from the beginning;
// for a different message it stops the current one first.
func (p *Player) Play(ctx context.Context, messageID, audioURL string) error {
	if audioURL == "" {
		return fmt.Errorf("play %s: no audio available", messageID)
	}

	p.Stop()

	playCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.current = messageID
	p.cancel = cancel
	p.mu.Unlock()

	defer func() {
		cancel()
		p.mu.Lock()
		if p.current == messageID {
			p.current = ""
			p.cancel = nil
		}
		p.mu.Unlock()
	}()

	path, err := p.download(playCtx, audioURL)
	if err != nil {
		return fmt.Errorf("play %s: %w", messageID, err)
	}
	defer os.Remove(path)

	name, args, err := p.playerCommand(path)
	if err != nil {
		return fmt.Errorf("play %s: %w", messageID, err)
	}

	log.Printf("Playback: playing %s via %s", messageID, name)
	if err := p.runner.Run(playCtx, name, args...); err != nil {
		if playCtx.Err() != nil {
			return nil // stopped deliberately
		}
		return fmt.Errorf("play %s: %s failed: %w", messageID, name, err)
	}
	return nil
}

// Stop interrupts the active playback, if any.
func (p *Player) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.current = ""
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (p *Player) download(ctx context.Context, audioURL string) (string, error) {
	if p.resolve != nil {
		audioURL = p.resolve(audioURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch audio: status %d", resp.StatusCode)
	}

	f, err := os.CreateTemp("", "konvo-audio-*"+audioExt(audioURL, resp.Header.Get("Content-Type")))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write audio: %w", err)
	}
	return f.Name(), nil
}

func audioExt(audioURL, contentType string) string {
	if ext := filepath.Ext(audioURL); ext == ".wav" || ext == ".mp3" || ext == ".ogg" {
		return ext
	}
	switch {
	case strings.Contains(contentType, "mpeg"):
		return ".mp3"
	case strings.Contains(contentType, "ogg"):
		return ".ogg"
	default:
		return ".wav"
	}
}

// playerCommand picks a player for the file. aplay handles WAV only, so MP3
// goes to mpg123 or ffplay first.
func (p *Player) playerCommand(path string) (string, []string, error) {
	isMP3 := strings.HasSuffix(path, ".mp3")

	if isMP3 {
		if _, err := p.lookPath("mpg123"); err == nil {
			return "mpg123", []string{"-q", path}, nil
		}
		if _, err := p.lookPath("ffplay"); err == nil {
			return "ffplay", []string{"-nodisp", "-autoexit", "-loglevel", "quiet", path}, nil
		}
		return "", nil, fmt.Errorf("no suitable MP3 player found (tried: mpg123, ffplay)")
	}

	if _, err := p.lookPath("pw-play"); err == nil {
		return "pw-play", []string{path}, nil
	}
	if _, err := p.lookPath("aplay"); err == nil {
		return "aplay", []string{"-q", path}, nil
	}
	if _, err := p.lookPath("paplay"); err == nil {
		return "paplay", []string{path}, nil
	}
	if _, err := p.lookPath("ffplay"); err == nil {
		return "ffplay", []string{"-nodisp", "-autoexit", "-loglevel", "quiet", path}, nil
	}
	if _, err := p.lookPath("afplay"); err == nil {
		return "afplay", []string{path}, nil
	}
	return "", nil, fmt.Errorf("no suitable audio player found (tried: pw-play, aplay, paplay, ffplay, afplay)")
}
