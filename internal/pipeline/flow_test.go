package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/konvohq/konvo/internal/api"
	"github.com/konvohq/konvo/internal/notify"
)

// fakeClient walks a scripted status sequence, one step per status fetch,
// and sticks at the last entry.
type fakeClient struct {
	mu          sync.Mutex
	sequence    []api.Status
	statusCalls int
	submitCalls int
	submitErr   error
	fetchErrAt  int // inject a transient error on this call number (1-based)
}

func (f *fakeClient) SubmitAudio(ctx context.Context, sessionID string, audio []byte, opts api.TurnOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitCalls++
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return "msg-1", nil
}

func (f *fakeClient) SubmitText(ctx context.Context, sessionID, text string, opts api.TurnOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitCalls++
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return "msg-1", nil
}

func (f *fakeClient) GetMessageStatus(ctx context.Context, messageID string) (api.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.fetchErrAt > 0 && f.statusCalls == f.fetchErrAt {
		return api.Message{}, errors.New("transient network error")
	}
	idx := f.statusCalls - 1
	if f.fetchErrAt > 0 && f.statusCalls > f.fetchErrAt {
		idx--
	}
	if idx >= len(f.sequence) {
		idx = len(f.sequence) - 1
	}
	return api.Message{
		ID:               messageID,
		SessionID:        "sess-1",
		AIResponseText:   "reply",
		ProcessingStatus: f.sequence[idx],
	}, nil
}

func (f *fakeClient) StatusCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}

func newFlow(client Client, opts ...Option) *Flow {
	conv := NewConversation("sess-1")
	opts = append([]Option{WithInterval(5 * time.Millisecond)}, opts...)
	return New(client, conv, notify.Nop{}, opts...)
}

func TestFlow_FullLifecycle(t *testing.T) {
	client := &fakeClient{sequence: []api.Status{
		api.StatusPending, api.StatusSTT, api.StatusLLM, api.StatusTTS, api.StatusCompleted,
	}}

	var mu sync.Mutex
	var processingAtTTS *bool

	var f *Flow
	f = newFlow(client, WithUpdateHook(func(msg api.Message) {
		if msg.ProcessingStatus == api.StatusTTS {
			p := f.Conversation().Processing()
			mu.Lock()
			processingAtTTS = &p
			mu.Unlock()
		}
	}))

	id, err := f.SubmitAudio(context.Background(), []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("SubmitAudio() error = %v", err)
	}
	if id != "msg-1" {
		t.Errorf("message id = %q", id)
	}
	if !f.Conversation().InFlight() {
		t.Errorf("conversation must be in flight after submit")
	}
	if got := f.Conversation().Messages(); len(got) != 1 || got[0].ProcessingStatus != api.StatusPending {
		t.Errorf("placeholder = %+v, want one pending message", got)
	}

	f.Wait()

	mu.Lock()
	if processingAtTTS == nil {
		t.Errorf("tts stage never observed")
	} else if *processingAtTTS {
		t.Errorf("thinking indicator must clear at tts_processing")
	}
	mu.Unlock()

	if f.Conversation().InFlight() {
		t.Errorf("turn must be over after completion")
	}
	msgs := f.Conversation().Messages()
	if len(msgs) != 1 || msgs[0].ProcessingStatus != api.StatusCompleted {
		t.Errorf("final message = %+v", msgs)
	}

	// Polling must stop at the terminal status: call count freezes.
	calls := client.StatusCalls()
	time.Sleep(30 * time.Millisecond)
	if client.StatusCalls() != calls {
		t.Errorf("polling continued after terminal status: %d -> %d", calls, client.StatusCalls())
	}
}

func TestFlow_ConcurrentSubmissionsClaimOneSlot(t *testing.T) {
	for i := 0; i < 500; i++ {
		client := &fakeClient{sequence: []api.Status{api.StatusCompleted}}
		f := newFlow(client)

		start := make(chan struct{})
		results := make(chan error, 2)
		for j := 0; j < 2; j++ {
			go func() {
				<-start
				_, err := f.SubmitText(context.Background(), "hello")
				results <- err
			}()
		}
		close(start)

		var accepted, busy int
		for j := 0; j < 2; j++ {
			switch err := <-results; {
			case err == nil:
				accepted++
			case errors.Is(err, ErrBusy):
				busy++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if accepted != 1 || busy != 1 {
			t.Fatalf("iteration %d: accepted = %d, busy = %d; want exactly one of each", i, accepted, busy)
		}
		f.Wait()
	}
}

func TestFlow_RejectsDoubleSubmission(t *testing.T) {
	client := &fakeClient{sequence: []api.Status{api.StatusLLM, api.StatusCompleted}}
	f := newFlow(client)

	if _, err := f.SubmitText(context.Background(), "first"); err != nil {
		t.Fatalf("SubmitText() error = %v", err)
	}
	if _, err := f.SubmitText(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Errorf("error = %v, want ErrBusy", err)
	}
	f.Wait()

	// After the turn resolves a new submission is accepted.
	if _, err := f.SubmitText(context.Background(), "third"); err != nil {
		t.Errorf("post-turn SubmitText() error = %v", err)
	}
	f.Stop()
}

func TestFlow_RejectsWhitespaceTextLocally(t *testing.T) {
	client := &fakeClient{}
	f := newFlow(client)

	if _, err := f.SubmitText(context.Background(), "   \n\t "); err == nil {
		t.Errorf("whitespace-only text must be rejected")
	}
	if client.submitCalls != 0 {
		t.Errorf("no network call expected, got %d", client.submitCalls)
	}
	if f.Conversation().InFlight() {
		t.Errorf("rejected submission must not occupy the turn slot")
	}
}

func TestFlow_TextPlaceholderSkipsTranscription(t *testing.T) {
	client := &fakeClient{sequence: []api.Status{api.StatusLLM, api.StatusCompleted}}
	f := newFlow(client)

	if _, err := f.SubmitText(context.Background(), "hello"); err != nil {
		t.Fatalf("SubmitText() error = %v", err)
	}
	if got := f.Conversation().Messages(); len(got) != 1 || got[0].ProcessingStatus != api.StatusLLM {
		t.Errorf("text placeholder = %+v, want llm_processing", got)
	}
	f.Wait()
}

func TestFlow_TransientFetchErrorContinuesPolling(t *testing.T) {
	client := &fakeClient{
		sequence:   []api.Status{api.StatusLLM, api.StatusCompleted},
		fetchErrAt: 1,
	}
	f := newFlow(client)

	if _, err := f.SubmitText(context.Background(), "hello"); err != nil {
		t.Fatalf("SubmitText() error = %v", err)
	}
	f.Wait()

	msgs := f.Conversation().Messages()
	if len(msgs) != 1 || msgs[0].ProcessingStatus != api.StatusCompleted {
		t.Errorf("final message = %+v, want completed despite transient error", msgs)
	}
}

func TestFlow_SubmitFailureClearsTurn(t *testing.T) {
	client := &fakeClient{submitErr: errors.New("backend down")}
	f := newFlow(client)

	if _, err := f.SubmitAudio(context.Background(), []byte{1}); err == nil {
		t.Fatalf("expected submit error")
	}
	if f.Conversation().InFlight() {
		t.Errorf("failed submission must release the turn slot")
	}
	if f.Conversation().Len() != 0 {
		t.Errorf("no placeholder expected for a failed submission")
	}
}

func TestFlow_StopCancelsPolling(t *testing.T) {
	client := &fakeClient{sequence: []api.Status{api.StatusLLM}} // never terminal
	f := newFlow(client)

	if _, err := f.SubmitText(context.Background(), "hello"); err != nil {
		t.Fatalf("SubmitText() error = %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	f.Stop()

	if f.Conversation().InFlight() {
		t.Errorf("Stop() must clear the turn slot")
	}
	calls := client.StatusCalls()
	time.Sleep(30 * time.Millisecond)
	if client.StatusCalls() != calls {
		t.Errorf("polling continued after Stop()")
	}
}
