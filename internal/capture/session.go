package capture

import (
	"context"
	"fmt"
	"log"
	"sync"
)

type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StateStopped   State = "stopped"
)

// Session owns one recording: it negotiates a format, drives the engine, and
// accumulates chunks in arrival order. Zero-length chunks are discarded.
type Session struct {
	engine  Engine
	cfg     Config
	onChunk func(Chunk)
	onStop  func()

	mu     sync.Mutex
	state  State
	chunks [][]byte
	size   int

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewSession prepares a recording session. Returns nil if the engine is not
// usable; the caller surfaces the failure as a capture-init condition rather
// than an error value.
func NewSession(ctx context.Context, engine Engine, cfg Config, onChunk func(Chunk), onStop func()) *Session {
	if engine == nil {
		return nil
	}
	if err := engine.Available(ctx); err != nil {
		log.Printf("Capture: engine unavailable: %v", err)
		return nil
	}

	cfg.Format = negotiateFormat(engine, cfg.Format)

	return &Session{
		engine:  engine,
		cfg:     cfg,
		onChunk: onChunk,
		onStop:  onStop,
		state:   StateIdle,
	}
}

// negotiateFormat walks the preference ladder: the configured format first,
// then the common interchange format, then whatever the engine defaults to.
func negotiateFormat(engine Engine, preferred string) string {
	candidates := []string{}
	if preferred != "" {
		candidates = append(candidates, preferred)
	}
	candidates = append(candidates, "s16le", "f32le")
	for _, f := range candidates {
		if engine.SupportsFormat(f) {
			return f
		}
	}
	// Unspecified: let the engine pick its default.
	return ""
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start begins capture. Valid only from the idle state.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("start recording: session is %s", state)
	}
	s.state = StateRecording
	s.mu.Unlock()

	captureCtx, cancel := context.WithCancel(ctx)

	chunkCh, errCh, err := s.engine.Start(captureCtx, s.cfg)
	if err != nil {
		cancel()
		s.mu.Lock()
		s.state = StateStopped
		s.mu.Unlock()
		return fmt.Errorf("start engine: %w", err)
	}

	s.mu.Lock()
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.collect(chunkCh, errCh)
	return nil
}

func (s *Session) collect(chunkCh <-chan Chunk, errCh <-chan error) {
	defer close(s.done)
	defer s.finish()

	for chunkCh != nil || errCh != nil {
		select {
		case chunk, ok := <-chunkCh:
			if !ok {
				chunkCh = nil
				continue
			}
			if len(chunk.Data) == 0 {
				continue
			}
			s.mu.Lock()
			s.chunks = append(s.chunks, chunk.Data)
			s.size += len(chunk.Data)
			s.mu.Unlock()
			if s.onChunk != nil {
				s.onChunk(chunk)
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			log.Printf("Capture: stream error: %v", err)
		}
	}
}

// finish releases the stream and fires the stop callback exactly once. The
// stream release happens even if the callback panics.
func (s *Session) finish() {
	s.stopOnce.Do(func() {
		defer func() {
			if err := s.engine.Stop(); err != nil {
				log.Printf("Capture: engine stop: %v", err)
			}
		}()

		s.mu.Lock()
		s.state = StateStopped
		s.mu.Unlock()

		if s.onStop != nil {
			s.onStop()
		}
	})
}

// Stop ends the recording. Calling Stop when the engine already went idle is
// a state mismatch that is reconciled silently rather than reported.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state != StateRecording || !s.engine.Recording() {
		if s.state == StateRecording {
			s.state = StateStopped
		}
		cancel := s.cancel
		s.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return
	}
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if err := s.engine.Stop(); err != nil {
		log.Printf("Capture: stop engine: %v", err)
	}
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Bytes returns the concatenated recording and clears the internal buffer.
func (s *Session) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]byte, 0, s.size)
	for _, c := range s.chunks {
		out = append(out, c...)
	}
	s.chunks = nil
	s.size = 0
	return out
}

// Size reports the number of buffered bytes without consuming them.
func (s *Session) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}
