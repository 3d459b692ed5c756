package domain

import "slices"

// WorkflowDiff represents the changes between two snapshots of a session.
// It is designed to be serialized to JSON for partial updates on the client.
type WorkflowDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	CurrentStep *Step `json:"current_step,omitempty"`

	// SelectedDrama is set when the drama changed. An empty string means it was cleared.
	SelectedDrama *string `json:"selected_drama,omitempty"`

	// SelectedPlatforms carries the full new list whenever the selection changed.
	// A pointer to an empty list means the selection was cleared.
	SelectedPlatforms *[]string `json:"selected_platforms,omitempty"`

	Script     *string `json:"script,omitempty"`
	InWorkflow *bool   `json:"in_workflow,omitempty"`

	// Turns holds history entries appended since the old snapshot.
	Turns []ConversationTurn `json:"turns,omitempty"`
}

// Diff calculates the difference between oldSession and newSession.
// If oldSession is nil, it returns a diff representing the entire newSession (initial load).
// It returns nil when nothing changed.
func Diff(oldSession, newSession *Session) *WorkflowDiff {
	if newSession == nil || newSession.State == nil {
		return nil
	}

	diff := &WorkflowDiff{SessionID: newSession.ID}
	next := newSession.State

	var prev *WorkflowState
	if oldSession != nil {
		prev = oldSession.State
	}

	if prev == nil || prev.CurrentStep != next.CurrentStep {
		step := next.CurrentStep
		diff.CurrentStep = &step
	}
	if prev == nil || prev.Drama() != next.Drama() {
		drama := next.Drama()
		if prev != nil || drama != "" {
			diff.SelectedDrama = &drama
		}
	}
	if prev == nil || !slices.Equal(prev.SelectedPlatforms, next.SelectedPlatforms) {
		if prev != nil || len(next.SelectedPlatforms) > 0 {
			platforms := append([]string{}, next.SelectedPlatforms...)
			diff.SelectedPlatforms = &platforms
		}
	}
	if prev == nil || prev.ScriptConfirmed() != next.ScriptConfirmed() {
		script := ""
		if next.Script != nil {
			script = *next.Script
		}
		if prev != nil || script != "" {
			diff.Script = &script
		}
	}
	if prev == nil || prev.InWorkflow != next.InWorkflow {
		in := next.InWorkflow
		diff.InWorkflow = &in
	}

	diff.Turns = diffHistory(oldSession, newSession)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// diffHistory assumes append-only history. A shorter history (reset) yields no turns.
func diffHistory(old, new *Session) []ConversationTurn {
	if old == nil {
		if len(new.History) == 0 {
			return nil
		}
		return append([]ConversationTurn{}, new.History...)
	}
	if len(new.History) > len(old.History) {
		return append([]ConversationTurn{}, new.History[len(old.History):]...)
	}
	return nil
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *WorkflowDiff) IsEmpty() bool {
	return d.CurrentStep == nil &&
		d.SelectedDrama == nil &&
		d.SelectedPlatforms == nil &&
		d.Script == nil &&
		d.InWorkflow == nil &&
		len(d.Turns) == 0
}
