package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/konvohq/konvo/internal/api"
	"github.com/konvohq/konvo/internal/i18n"
	"github.com/konvohq/konvo/internal/notify"
)

// ErrBusy rejects a submission while a previous turn is still in flight.
// One turn at a time; the caller retries after the current one resolves.
var ErrBusy = errors.New("a message is already being processed")

// Client is the backend surface the flow needs. *api.Client satisfies it.
type Client interface {
	SubmitAudio(ctx context.Context, sessionID string, audio []byte, opts api.TurnOptions) (string, error)
	SubmitText(ctx context.Context, sessionID, text string, opts api.TurnOptions) (string, error)
	GetMessageStatus(ctx context.Context, messageID string) (api.Message, error)
}

// Flow drives one turn end to end: submit, then poll the message status at a
// fixed interval until it reaches a terminal state. Status polling carries
// the full message projection, so each tick replaces the stored message.
type Flow struct {
	client   Client
	conv     *Conversation
	notifier notify.Notifier
	opts     api.TurnOptions
	interval time.Duration
	onUpdate func(api.Message)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Flow)

func WithInterval(d time.Duration) Option {
	return func(f *Flow) {
		if d > 0 {
			f.interval = d
		}
	}
}

func WithTurnOptions(opts api.TurnOptions) Option {
	return func(f *Flow) { f.opts = opts }
}

// WithUpdateHook registers a callback invoked with every fresh message
// projection, including the terminal one.
func WithUpdateHook(fn func(api.Message)) Option {
	return func(f *Flow) { f.onUpdate = fn }
}

func New(client Client, conv *Conversation, notifier notify.Notifier, opts ...Option) *Flow {
	f := &Flow{
		client:   client,
		conv:     conv,
		notifier: notifier,
		interval: time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.notifier == nil {
		f.notifier = notify.Nop{}
	}
	return f
}

func (f *Flow) Conversation() *Conversation { return f.conv }

// SubmitAudio uploads a finished recording and starts polling. The appended
// placeholder starts at pending; every stage the backend reports flows back
// through the conversation.
func (f *Flow) SubmitAudio(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		log.Printf("Flow: %s", i18n.T("submit.empty", "Nothing to send."))
		return "", fmt.Errorf("submit audio: empty recording")
	}
	if !f.conv.tryBeginTurn() {
		return "", ErrBusy
	}

	id, err := f.client.SubmitAudio(ctx, f.conv.SessionID(), audio, f.opts)
	if err != nil {
		f.conv.endTurn()
		f.notifier.Notify(notify.ProcessingFailed)
		return "", fmt.Errorf("submit audio: %w", err)
	}

	f.startTurn(ctx, id, api.StatusPending)
	return id, nil
}

// SubmitText sends a typed turn. Whitespace-only input is rejected locally
// with no network call. The placeholder starts at llm_processing because a
// text turn skips transcription.
func (f *Flow) SubmitText(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		log.Printf("Flow: %s", i18n.T("submit.empty", "Nothing to send."))
		return "", fmt.Errorf("submit text: empty message")
	}
	if !f.conv.tryBeginTurn() {
		return "", ErrBusy
	}

	id, err := f.client.SubmitText(ctx, f.conv.SessionID(), text, f.opts)
	if err != nil {
		f.conv.endTurn()
		f.notifier.Notify(notify.ProcessingFailed)
		return "", fmt.Errorf("submit text: %w", err)
	}

	f.startTurn(ctx, id, api.StatusLLM)
	return id, nil
}

// startTurn runs with the slot already claimed by tryBeginTurn.
func (f *Flow) startTurn(ctx context.Context, messageID string, initial api.Status) {
	f.conv.setInFlightID(messageID)
	f.conv.Append(api.Message{
		ID:               messageID,
		SessionID:        f.conv.SessionID(),
		ProcessingStatus: initial,
	})
	f.notifier.Notify(notify.ProcessingStarted)

	pollCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	f.mu.Lock()
	f.cancel = cancel
	f.done = done
	f.mu.Unlock()

	go f.poll(pollCtx, messageID, done)
}

// poll fetches the message projection once per interval. Transient fetch
// errors are logged and polling continues; only a terminal status or context
// cancellation ends the loop.
func (f *Flow) poll(ctx context.Context, messageID string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.conv.endTurn()
			return
		case <-ticker.C:
			msg, err := f.client.GetMessageStatus(ctx, messageID)
			if err != nil {
				if ctx.Err() != nil {
					f.conv.endTurn()
					return
				}
				log.Printf("Flow: status fetch failed for %s: %v", messageID, err)
				continue
			}

			if !f.conv.ReplaceByID(msg) {
				f.conv.Append(msg)
			}

			// Speech synthesis means the reply text is final: drop the
			// thinking indicator while the audio is still rendering.
			if msg.ProcessingStatus == api.StatusTTS {
				f.conv.clearProcessing()
			}

			if f.onUpdate != nil {
				f.onUpdate(msg)
			}

			if msg.ProcessingStatus.Terminal() {
				f.conv.endTurn()
				if msg.ProcessingStatus == api.StatusError {
					f.notifier.Notify(notify.ProcessingFailed)
				} else {
					f.notifier.Notify(notify.ResponseCompleted)
				}
				return
			}
		}
	}
}

// Stop cancels any active polling and waits for the loop to exit.
func (f *Flow) Stop() {
	f.mu.Lock()
	cancel := f.cancel
	done := f.done
	f.cancel = nil
	f.done = nil
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Wait blocks until the current turn's polling loop finishes.
func (f *Flow) Wait() {
	f.mu.Lock()
	done := f.done
	f.mu.Unlock()
	if done != nil {
		<-done
	}
}
