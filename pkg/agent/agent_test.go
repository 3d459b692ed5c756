package agent_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/dramaflow/internal/testutils"
	"github.com/aretw0/dramaflow/pkg/agent"
	"github.com/aretw0/dramaflow/pkg/domain"
	"github.com/aretw0/dramaflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scriptPersona() agent.Persona {
	return agent.Persona{
		ID:          domain.HandlerScript,
		Name:        "脚本创作大师",
		Instruction: "你是一个顶级的短视频脚本创作专家",
	}
}

func TestAgent_Respond(t *testing.T) {
	provider := &testutils.ScriptedProvider{Default: "开场三秒..."}
	a := agent.New(scriptPersona(), provider, agent.WithTemperature(0.2))

	text, err := a.Respond(context.Background(), "写个脚本", "当前步骤：init")
	require.NoError(t, err)
	assert.Equal(t, "开场三秒...", text)

	calls := provider.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "你是一个顶级的短视频脚本创作专家", calls[0].Instruction)
	assert.Equal(t, "当前步骤：init", calls[0].Context)
	assert.Equal(t, "写个脚本", calls[0].Message)
	assert.Equal(t, float32(0.2), calls[0].Temperature)
	assert.Equal(t, []string{"你是一个顶级的短视频脚本创作专家", "上下文信息：当前步骤：init"}, calls[0].Directives())
}

func TestAgent_Respond_EmptyContextIsOmitted(t *testing.T) {
	provider := &testutils.ScriptedProvider{Default: "ok"}
	a := agent.New(scriptPersona(), provider)

	_, err := a.Respond(context.Background(), "hi", "")
	require.NoError(t, err)
	assert.Len(t, provider.Calls()[0].Directives(), 1)
}

func TestAgent_Respond_FailureBecomesText(t *testing.T) {
	boom := &domain.ServiceError{Provider: "openai", StatusCode: 429, Err: errors.New("rate limited")}
	provider := &testutils.ScriptedProvider{Err: boom}
	a := agent.New(scriptPersona(), provider)

	text, err := a.Respond(context.Background(), "写个脚本", "")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "抱歉，发生错误: openai: status 429: rate limited", text)
	assert.Len(t, provider.Calls(), 1, "failed calls are not retried")
}

func TestAgent_Respond_Timeout(t *testing.T) {
	provider := &testutils.ScriptedProvider{
		Fn: func(ctx context.Context, req ports.CompletionRequest) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	a := agent.New(scriptPersona(), provider, agent.WithTimeout(20*time.Millisecond))

	start := time.Now()
	text, err := a.Respond(context.Background(), "slow", "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, text, agent.ErrorResponsePrefix)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRegistry(t *testing.T) {
	personas, err := agent.DefaultPersonas()
	require.NoError(t, err)

	reg, err := agent.NewRegistry(personas, &testutils.ScriptedProvider{})
	require.NoError(t, err)

	info := reg.Info()
	require.Len(t, info, 6)
	assert.Equal(t, domain.AgentInfo{ID: "intent_router", Name: "意图路由器", Icon: "🧠", Description: "智能识别用户意图"}, info[0])
	assert.Equal(t, domain.HandlerRanking, info[1].ID)
	assert.Equal(t, "短剧榜单助手", info[1].Name)
	assert.Equal(t, domain.HandlerGeneral, info[5].ID)

	for _, id := range []domain.HandlerID{domain.HandlerRanking, domain.HandlerPlatform, domain.HandlerScript, domain.HandlerEditor, domain.HandlerGeneral} {
		a, ok := reg.Get(id)
		require.True(t, ok, id)
		assert.Equal(t, id, a.ID())
	}
	_, ok := reg.Get(domain.HandlerRouter)
	assert.False(t, ok, "the router is not a handler")
	assert.Contains(t, reg.Router().Instruction, "query_ranking")
}

func TestParsePersonas_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"Bad YAML", "personas: [", "failed to parse personas"},
		{"Missing Id", "personas:\n  - name: x\n    instruction: y\n", "has no id"},
		{"Missing Instruction", "personas:\n  - id: general_agent\n", "has no instruction"},
		{"Duplicate", "personas:\n  - id: general_agent\n    instruction: a\n  - id: general_agent\n    instruction: b\n", "duplicate persona"},
		{"Incomplete Table", "personas:\n  - id: general_agent\n    instruction: a\n", "is missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := agent.ParsePersonas([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
