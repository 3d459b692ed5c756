package runtime_test

import (
	"testing"

	"github.com/aretw0/dramaflow/internal/runtime"
	"github.com/aretw0/dramaflow/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildContext(t *testing.T) {
	tests := []struct {
		name  string
		state *domain.WorkflowState
		want  string
	}{
		{"Nil State", nil, runtime.NoContext},
		{"Fresh", domain.NewWorkflowState(), "当前步骤：init"},
		{"Drama", state(domain.StepDramaSelected, "Drama A", nil, false), "已选择的短剧：《Drama A》 | 当前步骤：drama_selected"},
		{
			"Everything",
			state(domain.StepEditing, "Drama A", []string{"TikTok", "X (Twitter)"}, true),
			"已选择的短剧：《Drama A》 | 已选择的平台：TikTok、X (Twitter) | 已创作脚本 | 当前步骤：editing",
		},
		{"Platforms Only", state(domain.StepPlatformSelected, "", []string{"Facebook"}, false), "已选择的平台：Facebook | 当前步骤：platform_selected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, runtime.BuildContext(tt.state))
		})
	}
}

func TestBuildContext_Pure(t *testing.T) {
	s := state(domain.StepScriptCreated, "Drama A", []string{"TikTok"}, true)
	before := s.Clone()

	first := runtime.BuildContext(s)
	second := runtime.BuildContext(s)

	assert.Equal(t, first, second)
	assert.Equal(t, before, s)
}
