package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/konvohq/konvo/internal/api"
	"github.com/konvohq/konvo/internal/progress"
)

// StatusBadge renders a processing stage as a short colored label.
func StatusBadge(s api.Status) string {
	switch s {
	case api.StatusPending:
		return StyleMuted.Render("[queued]")
	case api.StatusSTT:
		return StyleWarning.Render("[transcribing]")
	case api.StatusLLM:
		return StyleWarning.Render("[thinking]")
	case api.StatusTTS:
		return StyleHighlight.Render("[voicing]")
	case api.StatusCompleted:
		return StyleSuccess.Render("[done]")
	case api.StatusError:
		return StyleError.Render("[failed]")
	default:
		return StyleMuted.Render("[" + string(s) + "]")
	}
}

// StepBadge renders a scenario step status.
func StepBadge(s progress.StepStatus) string {
	switch s {
	case progress.StepCompleted:
		return StyleSuccess.Render("done")
	case progress.StepInProgress:
		return StyleHighlight.Render("in progress")
	case progress.StepError:
		return StyleError.Render("error")
	default:
		return StyleMuted.Render("pending")
	}
}

// RenderMessage renders one turn: the user's side, then the AI reply with
// its fenced progress blocks stripped out and shown as tables below.
func RenderMessage(msg api.Message) string {
	var b strings.Builder

	b.WriteString(StatusBadge(msg.ProcessingStatus))
	b.WriteString("\n")

	if user := strings.TrimSpace(msg.UserText); user != "" {
		b.WriteString(StyleUserText.Render("You: " + user))
		b.WriteString("\n")
	}

	if msg.AIResponseText != "" {
		clean, blocks := progress.Clean(msg.AIResponseText)
		if clean != "" {
			b.WriteString(StyleAIText.Render("AI: " + clean))
			b.WriteString("\n")
		}
		if rendered := RenderBlocks(blocks); rendered != "" {
			b.WriteString(rendered)
		}
	}

	return b.String()
}

// RenderBlocks renders extracted progress blocks: the first steps_status
// block becomes the step table, anything else a generic key/value table.
func RenderBlocks(blocks []progress.Block) string {
	if len(blocks) == 0 {
		return ""
	}

	var b strings.Builder

	if sp, ok := progress.Steps(blocks); ok {
		b.WriteString(RenderSteps(sp))
		blocks = blocks[1:]
	}

	for _, block := range blocks {
		b.WriteString(renderKeyValues(block.Data))
	}
	return b.String()
}

// RenderSteps renders the scenario progress table.
func RenderSteps(sp progress.StepProgress) string {
	var b strings.Builder

	b.WriteString(StyleHighlight.Render(fmt.Sprintf("Step %d of %d", sp.CurrentStep, len(sp.Steps))))
	b.WriteString("\n")

	for _, step := range sp.Steps {
		line := fmt.Sprintf("  %d. %s  %s", step.Step, step.Name, StepBadge(step.Status))
		b.WriteString(line)
		b.WriteString("\n")
	}
	return StyleBox.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func renderKeyValues(data map[string]any) string {
	if len(data) == 0 {
		return ""
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("  %s: %s\n", StyleMuted.Render(k), formatValue(data[k])))
	}
	return StyleBox.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}

// RenderSessionLine renders one row of the session list.
func RenderSessionLine(sess api.Session, active bool) string {
	line := fmt.Sprintf("%s  %s  %s",
		sess.ID,
		StyleUserText.Render(sess.Title),
		StyleSubtle.Render(sess.UpdatedAt.Format("2006-01-02 15:04")))
	if active {
		return StyleHighlight.Render("> ") + line
	}
	return lipgloss.NewStyle().Render("  ") + line
}
