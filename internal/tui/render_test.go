package tui

import (
	"strings"
	"testing"

	"github.com/konvohq/konvo/internal/api"
	"github.com/konvohq/konvo/internal/progress"
)

func TestRenderMessage_StripsFencedBlocks(t *testing.T) {
	msg := api.Message{
		ID:               "msg-1",
		UserText:         "hello",
		AIResponseText:   "Sure, let me help.\n```json\n{\"current_step\": 1, \"steps_status\": [{\"step\": 1, \"name\": \"greet\", \"status\": \"in_progress\"}]}\n```",
		ProcessingStatus: api.StatusCompleted,
	}

	out := RenderMessage(msg)
	if strings.Contains(out, "```") {
		t.Errorf("rendered output still contains a fenced block:\n%s", out)
	}
	if !strings.Contains(out, "Sure, let me help.") {
		t.Errorf("conversational text missing:\n%s", out)
	}
	if !strings.Contains(out, "Step 1 of 1") {
		t.Errorf("step table missing:\n%s", out)
	}
	if !strings.Contains(out, "greet") {
		t.Errorf("step name missing:\n%s", out)
	}
}

func TestRenderBlocks_GenericTable(t *testing.T) {
	blocks := progress.Extract("```json\n{\"fee\": 60000, \"currency\": \"KRW\"}\n```")
	out := RenderBlocks(blocks)
	if !strings.Contains(out, "fee") || !strings.Contains(out, "60000") {
		t.Errorf("generic table missing entries:\n%s", out)
	}
	if !strings.Contains(out, "currency") || !strings.Contains(out, "KRW") {
		t.Errorf("generic table missing entries:\n%s", out)
	}
}

func TestStatusBadge_AllStages(t *testing.T) {
	stages := []api.Status{
		api.StatusPending, api.StatusSTT, api.StatusLLM,
		api.StatusTTS, api.StatusCompleted, api.StatusError,
	}
	seen := map[string]bool{}
	for _, s := range stages {
		badge := StatusBadge(s)
		if badge == "" {
			t.Errorf("empty badge for %s", s)
		}
		if seen[badge] {
			t.Errorf("duplicate badge %q for %s", badge, s)
		}
		seen[badge] = true
	}
}
