package progress

import "encoding/json"

// StepStatus values match what the backend model is prompted to emit.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepError      StepStatus = "error"
)

type Step struct {
	Step   int        `json:"step"`
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
}

// StepProgress is the structured view of a scenario's progress: which step
// is active and the status of every step.
type StepProgress struct {
	CurrentStep int    `json:"current_step"`
	Steps       []Step `json:"steps_status"`
}

// Steps derives the step-progress view from extracted blocks. Only the first
// block is considered; later blocks may carry other structured data and are
// rendered generically. Returns false when no block carries a steps_status
// array.
func Steps(blocks []Block) (StepProgress, bool) {
	if len(blocks) == 0 {
		return StepProgress{}, false
	}

	first := blocks[0]
	if _, ok := first.Data["steps_status"]; !ok {
		return StepProgress{}, false
	}

	var sp StepProgress
	if err := json.Unmarshal([]byte(first.Raw), &sp); err != nil {
		return StepProgress{}, false
	}
	if len(sp.Steps) == 0 {
		return StepProgress{}, false
	}

	// Unknown statuses degrade to pending, matching the display fallback.
	for i, s := range sp.Steps {
		switch s.Status {
		case StepPending, StepInProgress, StepCompleted, StepError:
		default:
			sp.Steps[i].Status = StepPending
		}
	}
	return sp, true
}
