package playback

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// blockingRunner pretends to play until its context is canceled or it is
// told to finish.
type blockingRunner struct {
	mu       sync.Mutex
	started  []string
	canceled int
	finish   chan struct{}
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{finish: make(chan struct{})}
}

func (r *blockingRunner) Run(ctx context.Context, name string, args ...string) error {
	r.mu.Lock()
	r.started = append(r.started, name)
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		r.mu.Lock()
		r.canceled++
		r.mu.Unlock()
		return ctx.Err()
	case <-r.finish:
		return nil
	}
}

func (r *blockingRunner) Canceled() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.canceled
}

func audioServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "audio/wav")
		w.Write([]byte("RIFFfakewav"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func stubLookPath(available ...string) func(string) (string, error) {
	set := map[string]bool{}
	for _, a := range available {
		set[a] = true
	}
	return func(bin string) (string, error) {
		if set[bin] {
			return "/usr/bin/" + bin, nil
		}
		return "", errors.New("not found")
	}
}

func TestPlayer_MutualExclusion(t *testing.T) {
	srv := audioServer(t)
	runner := newBlockingRunner()
	p := New(nil, WithRunner(runner), WithLookPath(stubLookPath("aplay")))

	errA := make(chan error, 1)
	go func() {
		errA <- p.Play(context.Background(), "msg-a", srv.URL+"/a.wav")
	}()

	waitFor(t, func() bool { return p.Playing() == "msg-a" }, "message a playing")

	errB := make(chan error, 1)
	go func() {
		errB <- p.Play(context.Background(), "msg-b", srv.URL+"/b.wav")
	}()

	waitFor(t, func() bool { return p.Playing() == "msg-b" }, "message b playing")

	// Starting b must have interrupted a, and a deliberate stop is not an
	// error for the caller.
	if err := <-errA; err != nil {
		t.Errorf("interrupted playback returned error: %v", err)
	}
	if runner.Canceled() != 1 {
		t.Errorf("canceled runs = %d, want 1", runner.Canceled())
	}

	close(runner.finish)
	if err := <-errB; err != nil {
		t.Errorf("Play(b) error = %v", err)
	}
	if p.Playing() != "" {
		t.Errorf("Playing() = %q after completion, want empty", p.Playing())
	}
}

func TestPlayer_NoAudioURL(t *testing.T) {
	p := New(nil, WithRunner(newBlockingRunner()), WithLookPath(stubLookPath("aplay")))
	if err := p.Play(context.Background(), "msg-1", ""); err == nil {
		t.Errorf("empty audio URL must fail")
	}
}

func TestPlayer_ResolvesRelativeURL(t *testing.T) {
	srv := audioServer(t)

	var resolved string
	resolve := func(ref string) string {
		resolved = ref
		return srv.URL + ref
	}

	runner := newBlockingRunner()
	close(runner.finish)
	p := New(resolve, WithRunner(runner), WithLookPath(stubLookPath("aplay")))

	if err := p.Play(context.Background(), "msg-1", "/audio/msg-1.wav"); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if resolved != "/audio/msg-1.wav" {
		t.Errorf("resolver saw %q", resolved)
	}
}

func TestPlayer_FetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	p := New(nil, WithRunner(newBlockingRunner()), WithLookPath(stubLookPath("aplay")))
	if err := p.Play(context.Background(), "msg-1", srv.URL+"/a.wav"); err == nil {
		t.Errorf("404 fetch must fail")
	}
	if p.Playing() != "" {
		t.Errorf("failed playback must clear the active slot")
	}
}

func TestPlayerCommand_MP3PrefersMpg123(t *testing.T) {
	p := New(nil, WithLookPath(stubLookPath("mpg123", "aplay")))
	name, _, err := p.playerCommand("/tmp/x.mp3")
	if err != nil {
		t.Fatalf("playerCommand() error = %v", err)
	}
	if name != "mpg123" {
		t.Errorf("player = %s, want mpg123", name)
	}
}

func waitFor(t *testing.T, cond func() bool, desc string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}
