package domain

// Step is the position of a session inside the promotion workflow.
type Step string

const (
	StepInit             Step = "init"
	StepDramaSelected    Step = "drama_selected"
	StepPlatformSelected Step = "platform_selected"
	StepScriptCreated    Step = "script_created"
	StepEditing          Step = "editing"
	// StepCompleted is declared for forward compatibility. No transition reaches it yet.
	StepCompleted Step = "completed"
)

// Steps returns every workflow step in declaration order.
func Steps() []Step {
	return []Step{
		StepInit,
		StepDramaSelected,
		StepPlatformSelected,
		StepScriptCreated,
		StepEditing,
		StepCompleted,
	}
}

// Valid reports whether s is one of the declared steps.
func (s Step) Valid() bool {
	for _, known := range Steps() {
		if s == known {
			return true
		}
	}
	return false
}

// ScriptConfirmed is the marker stored in WorkflowState.Script once the user accepts a script.
const ScriptConfirmed = "confirmed"

// WorkflowState is the per-session record of promotion progress.
type WorkflowState struct {
	CurrentStep       Step     `json:"current_step"`
	SelectedDrama     *string  `json:"selected_drama"`
	SelectedPlatforms []string `json:"selected_platforms"`
	// Script only records confirmation. The script text itself lives in the conversation.
	Script     *string `json:"script"`
	InWorkflow bool    `json:"in_workflow"`
}

// NewWorkflowState returns the zero workflow: step init, nothing selected.
func NewWorkflowState() *WorkflowState {
	return &WorkflowState{
		CurrentStep:       StepInit,
		SelectedPlatforms: []string{},
	}
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (s *WorkflowState) Clone() *WorkflowState {
	if s == nil {
		return nil
	}
	c := *s
	if s.SelectedDrama != nil {
		drama := *s.SelectedDrama
		c.SelectedDrama = &drama
	}
	if s.Script != nil {
		script := *s.Script
		c.Script = &script
	}
	c.SelectedPlatforms = make([]string, len(s.SelectedPlatforms))
	copy(c.SelectedPlatforms, s.SelectedPlatforms)
	return &c
}

// HasDrama reports whether a drama has been selected.
func (s *WorkflowState) HasDrama() bool {
	return s.SelectedDrama != nil && *s.SelectedDrama != ""
}

// Drama returns the selected drama or "" when none is set.
func (s *WorkflowState) Drama() string {
	if s.SelectedDrama == nil {
		return ""
	}
	return *s.SelectedDrama
}

// HasPlatforms reports whether at least one platform has been selected.
func (s *WorkflowState) HasPlatforms() bool {
	return len(s.SelectedPlatforms) > 0
}

// ScriptConfirmed reports whether the confirmation marker is set.
func (s *WorkflowState) ScriptConfirmed() bool {
	return s.Script != nil && *s.Script != ""
}

// SelectDrama records the drama to promote.
func (s *WorkflowState) SelectDrama(name string) {
	s.SelectedDrama = &name
}

// ConfirmScript sets the confirmation marker.
func (s *WorkflowState) ConfirmScript() {
	marker := ScriptConfirmed
	s.Script = &marker
}

// SetPlatforms replaces the platform selection with NormalizePlatforms(platforms).
func (s *WorkflowState) SetPlatforms(platforms []string) {
	s.SelectedPlatforms = NormalizePlatforms(platforms)
}

// NormalizePlatforms drops duplicates and empty names while keeping first-seen order.
// The result is never nil.
func NormalizePlatforms(platforms []string) []string {
	seen := make(map[string]struct{}, len(platforms))
	out := make([]string, 0, len(platforms))
	for _, p := range platforms {
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
