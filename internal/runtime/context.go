package runtime

import (
	"strings"

	"github.com/aretw0/dramaflow/pkg/domain"
)

// NoContext is the summary of a state with nothing to report.
const NoContext = "无上下文"

const (
	contextSeparator  = " | "
	platformSeparator = "、"
)

// BuildContext renders the one-line workflow summary handed to every model call.
// It only reads state.
func BuildContext(state *domain.WorkflowState) string {
	if state == nil {
		return NoContext
	}

	var parts []string
	if state.HasDrama() {
		parts = append(parts, "已选择的短剧：《"+state.Drama()+"》")
	}
	if state.HasPlatforms() {
		parts = append(parts, "已选择的平台："+joinPlatforms(state.SelectedPlatforms))
	}
	if state.ScriptConfirmed() {
		parts = append(parts, "已创作脚本")
	}
	parts = append(parts, "当前步骤："+string(state.CurrentStep))

	return strings.Join(parts, contextSeparator)
}

func joinPlatforms(platforms []string) string {
	return strings.Join(platforms, platformSeparator)
}

func annotate(summary, note string) string {
	return summary + contextSeparator + "注意：" + note
}
