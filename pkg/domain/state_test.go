package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkflowState_JSON(t *testing.T) {
	raw, err := json.Marshal(NewWorkflowState())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"current_step": "init",
		"selected_drama": null,
		"selected_platforms": [],
		"script": null,
		"in_workflow": false
	}`, string(raw))
}

func TestWorkflowState_Clone(t *testing.T) {
	s := NewWorkflowState()
	s.SelectDrama("Drama A")
	s.SetPlatforms([]string{"TikTok"})
	s.ConfirmScript()

	c := s.Clone()
	c.SelectDrama("Drama B")
	c.SelectedPlatforms[0] = "Facebook"
	*c.Script = "tampered"

	assert.Equal(t, "Drama A", s.Drama())
	assert.Equal(t, []string{"TikTok"}, s.SelectedPlatforms)
	assert.Equal(t, ScriptConfirmed, *s.Script)
	assert.Nil(t, (*WorkflowState)(nil).Clone())
}

func TestWorkflowState_SetPlatforms(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"Keeps order", []string{"Instagram", "TikTok"}, []string{"Instagram", "TikTok"}},
		{"Drops duplicates", []string{"TikTok", "Instagram", "TikTok"}, []string{"TikTok", "Instagram"}},
		{"Drops empty", []string{"", "Facebook"}, []string{"Facebook"}},
		{"Nil becomes empty", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewWorkflowState()
			s.SetPlatforms(tt.in)
			assert.Equal(t, tt.want, s.SelectedPlatforms)
		})
	}
}

func TestWorkflowState_Predicates(t *testing.T) {
	s := NewWorkflowState()
	assert.False(t, s.HasDrama())
	assert.False(t, s.HasPlatforms())
	assert.False(t, s.ScriptConfirmed())
	assert.Equal(t, "", s.Drama())

	s.SelectDrama("")
	assert.False(t, s.HasDrama(), "an empty title is not a selection")

	s.SelectDrama("宫廷秘史之皇后传")
	s.SetPlatforms([]string{"X (Twitter)"})
	s.ConfirmScript()
	assert.True(t, s.HasDrama())
	assert.True(t, s.HasPlatforms())
	assert.True(t, s.ScriptConfirmed())
}

func TestStep_Valid(t *testing.T) {
	for _, step := range Steps() {
		assert.True(t, step.Valid(), step)
	}
	assert.False(t, Step("done").Valid())
	assert.Contains(t, Steps(), StepCompleted)
}

func TestParseIntent(t *testing.T) {
	for _, intent := range Intents() {
		got, ok := ParseIntent(string(intent))
		assert.True(t, ok)
		assert.Equal(t, intent, got)
	}

	got, ok := ParseIntent("order_pizza")
	assert.False(t, ok)
	assert.Equal(t, IntentGeneralQuestion, got)
	assert.Len(t, Intents(), 9)
}

func TestSession_CloneAndReset(t *testing.T) {
	s := NewSession("sess-1")
	s.State.SelectDrama("Drama A")
	s.History = append(s.History, ConversationTurn{Agent: "通用助手", UserMessage: "hi", Response: "hello"})

	c := s.Clone()
	c.State.InWorkflow = true
	c.History[0].Response = "changed"
	assert.False(t, s.State.InWorkflow)
	assert.Equal(t, "hello", s.History[0].Response)

	s.Reset()
	assert.Equal(t, NewWorkflowState(), s.State)
	assert.Empty(t, s.History)
	assert.Equal(t, "sess-1", s.ID)
}
