package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Chunk is one slice of captured audio in arrival order.
type Chunk struct {
	Data      []byte
	Timestamp time.Time
}

// Config mirrors the recording section of the app config, with the fixed
// acquisition constraint set: echo cancellation, noise suppression and
// automatic gain are requested from the audio server, mono 44.1kHz nominal.
type Config struct {
	SampleRate        int
	Channels          int
	Format            string
	BufferSize        int
	Device            string
	ChannelBufferSize int
}

func DefaultConfig() Config {
	return Config{
		SampleRate:        44100,
		Channels:          1,
		Format:            "s16le",
		BufferSize:        4096,
		Device:            "",
		ChannelBufferSize: 20,
	}
}

// Engine is the platform recorder. Implementations wrap an external capture
// process; the Session owns lifecycle and buffering on top.
type Engine interface {
	// Available reports whether the engine can record at all right now.
	Available(ctx context.Context) error
	// SupportsFormat is the engine's format-support query.
	SupportsFormat(format string) bool
	Start(ctx context.Context, cfg Config) (<-chan Chunk, <-chan error, error)
	Stop() error
	Recording() bool
}

// PipeWireEngine records through pw-record, reading raw audio from its
// stdout in BufferSize slices.
type PipeWireEngine struct {
	recording atomic.Bool

	mu     sync.Mutex // guards cmd and cancel
	cmd    *exec.Cmd
	cancel context.CancelFunc

	wg sync.WaitGroup
}

func NewPipeWireEngine() *PipeWireEngine { return &PipeWireEngine{} }

var pwFormats = map[string]bool{
	"u8": true, "s8": true, "s16le": true, "s16be": true,
	"s32le": true, "f32le": true, "f64le": true,
}

func (e *PipeWireEngine) SupportsFormat(format string) bool {
	return pwFormats[format]
}

func (e *PipeWireEngine) Available(ctx context.Context) error {
	if _, err := exec.LookPath("pw-record"); err != nil {
		return fmt.Errorf("pw-record not found: %w (install pipewire-tools)", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	// Short timeout to avoid hangs on misconfigured systems.
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := exec.CommandContext(checkCtx, "pw-cli", "info").Run(); err != nil {
		return fmt.Errorf("PipeWire not running or accessible: %w", err)
	}
	return nil
}

func (e *PipeWireEngine) Recording() bool {
	return e.recording.Load()
}

func (e *PipeWireEngine) Start(ctx context.Context, cfg Config) (<-chan Chunk, <-chan error, error) {
	if e.recording.Load() {
		return nil, nil, fmt.Errorf("already recording")
	}
	if err := validateConfig(cfg); err != nil {
		return nil, nil, err
	}

	captureCtx, cancel := context.WithCancel(ctx)

	chunkCh := make(chan Chunk, cfg.ChannelBufferSize)
	errCh := make(chan error, 1)

	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	e.recording.Store(true)
	e.wg.Add(1)
	go e.captureLoop(captureCtx, cfg, chunkCh, errCh)

	return chunkCh, errCh, nil
}

func (e *PipeWireEngine) Stop() error {
	if !e.recording.Load() {
		return nil
	}

	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}

func (e *PipeWireEngine) Wait() {
	e.wg.Wait()
}

func (e *PipeWireEngine) captureLoop(ctx context.Context, cfg Config, chunkCh chan<- Chunk, errCh chan<- error) {
	defer func() {
		close(chunkCh)
		close(errCh)
		e.recording.Store(false)

		// Ensure any child process is reaped.
		e.mu.Lock()
		if e.cmd != nil {
			_ = e.cmd.Wait()
			e.cmd = nil
		}
		e.cancel = nil
		e.mu.Unlock()

		e.wg.Done()
	}()

	args := buildPwRecordArgs(cfg)
	cmd := exec.CommandContext(ctx, "pw-record", args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		e.emitErr(errCh, fmt.Errorf("create stdout pipe: %w", err))
		e.requestCancel()
		return
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		e.emitErr(errCh, fmt.Errorf("create stderr pipe: %w", err))
		e.requestCancel()
		return
	}

	e.mu.Lock()
	e.cmd = cmd
	e.mu.Unlock()

	if err := cmd.Start(); err != nil {
		e.emitErr(errCh, fmt.Errorf("start pw-record: %w", err))
		e.requestCancel()
		return
	}

	// Log stderr lines to aid diagnostics.
	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			log.Printf("Capture stderr: %s", scanner.Text())
		}
	}()

	buffer := make([]byte, cfg.BufferSize)
	var droppedCount int
	lastDropLog := time.Now()

	for {
		n, readErr := stdout.Read(buffer)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buffer[:n])

			select {
			case chunkCh <- Chunk{Data: data, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			default:
				droppedCount++
				if time.Since(lastDropLog) > time.Second {
					log.Printf("Capture: dropped %d chunks due to backpressure", droppedCount)
					lastDropLog = time.Now()
					droppedCount = 0
				}
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return
			}
			e.emitErr(errCh, fmt.Errorf("read audio: %w", readErr))
			e.requestCancel()
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (e *PipeWireEngine) requestCancel() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (e *PipeWireEngine) emitErr(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
		// Best-effort; avoid blocking
	}
	log.Printf("Capture error: %v", err)
}

func buildPwRecordArgs(cfg Config) []string {
	args := []string{
		"--rate", strconv.Itoa(cfg.SampleRate),
		"--channels", strconv.Itoa(cfg.Channels),
	}
	if cfg.Format != "" {
		args = append(args, "--format", cfg.Format)
	}
	if cfg.Device != "" {
		args = append(args, "--target", cfg.Device)
	}
	// Stream properties for the fixed constraint set.
	args = append(args,
		"--properties", "filter.want=echo-cancel",
		"-", // stdout
	)
	return args
}

func validateConfig(cfg Config) error {
	if cfg.SampleRate <= 0 {
		return fmt.Errorf("invalid SampleRate: %d", cfg.SampleRate)
	}
	if cfg.Channels <= 0 {
		return fmt.Errorf("invalid Channels: %d", cfg.Channels)
	}
	if cfg.BufferSize <= 0 {
		return fmt.Errorf("invalid BufferSize: %d", cfg.BufferSize)
	}
	if cfg.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid ChannelBufferSize: %d", cfg.ChannelBufferSize)
	}
	return nil
}
