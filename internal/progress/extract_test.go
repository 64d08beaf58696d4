package progress

import (
	"strings"
	"testing"
)

const stepsBlock = "```json\n{\n  \"current_step\": 2,\n  \"steps_status\": [\n    {\"step\": 1, \"name\": \"confirm purpose\", \"status\": \"completed\"},\n    {\"step\": 2, \"name\": \"collect documents\", \"status\": \"in_progress\"},\n    {\"step\": 3, \"name\": \"review\", \"status\": \"pending\"}\n  ]\n}\n```"

func TestExtract_SingleBlock(t *testing.T) {
	text := "Hello, let me check your documents.\n\n" + stepsBlock

	blocks := Extract(text)
	if len(blocks) != 1 {
		t.Fatalf("Extract() found %d blocks, want 1", len(blocks))
	}

	b := blocks[0]
	if b.Data["current_step"] != float64(2) {
		t.Errorf("current_step = %v, want 2", b.Data["current_step"])
	}
	if b.Start <= 0 || b.End != len(text) {
		t.Errorf("span = [%d,%d), text length %d", b.Start, b.End, len(text))
	}

	clean := CleanText(text, blocks)
	if clean != "Hello, let me check your documents." {
		t.Errorf("CleanText() = %q", clean)
	}
}

func TestExtract_MalformedBlockLeavesTextUntouched(t *testing.T) {
	text := "Before\n```json\n{not valid json\n```\nAfter"

	blocks := Extract(text)
	if len(blocks) != 0 {
		t.Fatalf("malformed block should be dropped, got %d blocks", len(blocks))
	}
	if got := CleanText(text, blocks); got != strings.TrimSpace(text) {
		t.Errorf("CleanText() = %q, want input unchanged", got)
	}
}

func TestExtract_MultipleBlocks(t *testing.T) {
	text := "Intro " + stepsBlock + " middle ```json\n{\"fee\": 60000, \"currency\": \"KRW\"}\n``` outro"

	blocks := Extract(text)
	if len(blocks) != 2 {
		t.Fatalf("Extract() found %d blocks, want 2", len(blocks))
	}
	if blocks[0].Start >= blocks[1].Start {
		t.Errorf("blocks must be in document order")
	}

	clean := CleanText(text, blocks)
	if clean != "Intro  middle  outro" {
		t.Errorf("CleanText() = %q", clean)
	}

	// Only the first block feeds step progress.
	sp, ok := Steps(blocks)
	if !ok {
		t.Fatalf("Steps() found no step progress")
	}
	if sp.CurrentStep != 2 || len(sp.Steps) != 3 {
		t.Errorf("StepProgress = %+v", sp)
	}
	if sp.Steps[1].Status != StepInProgress {
		t.Errorf("step 2 status = %s, want in_progress", sp.Steps[1].Status)
	}
}

func TestExtract_NoBlocks(t *testing.T) {
	if blocks := Extract("just a plain reply"); blocks != nil {
		t.Errorf("Extract() = %v, want nil", blocks)
	}
}

func TestClean(t *testing.T) {
	clean, blocks := Clean("  Hi there.  \n" + stepsBlock + "\n")
	if clean != "Hi there." {
		t.Errorf("Clean() text = %q", clean)
	}
	if len(blocks) != 1 {
		t.Errorf("Clean() blocks = %d, want 1", len(blocks))
	}
}

func TestSteps_UnknownStatusDegradesToPending(t *testing.T) {
	text := "```json\n{\"current_step\": 1, \"steps_status\": [{\"step\": 1, \"name\": \"x\", \"status\": \"weird\"}]}\n```"
	sp, ok := Steps(Extract(text))
	if !ok {
		t.Fatalf("Steps() found no step progress")
	}
	if sp.Steps[0].Status != StepPending {
		t.Errorf("status = %s, want pending", sp.Steps[0].Status)
	}
}

func TestSteps_GenericBlockIsNotStepProgress(t *testing.T) {
	text := "```json\n{\"fee\": 60000}\n```"
	if _, ok := Steps(Extract(text)); ok {
		t.Errorf("generic block must not produce step progress")
	}
}
