package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/dramaflow/pkg/domain"
	"github.com/aretw0/dramaflow/pkg/platform"
)

const (
	msgDramaSelected      = "用户选择了短剧：%s，请询问用户想要推广到哪些平台，并给出专业建议。"
	msgPlatformsNoDrama   = "用户选择了平台：%s。请确认并询问要推广哪个短剧。"
	msgScriptAutoChain    = "请为短剧《%s》创作适合 %s 平台的推广脚本。请创作一个完整、专业、有创意的脚本。"
	msgScriptRequested    = "请为短剧《%s》创作适合 %s 平台的推广脚本。"
	msgScriptRevision     = "用户的修改意见：%s。请根据意见修改脚本。"
	msgEditingAfterReview = "用户已确认脚本。请开始为短剧《%s》制作推广视频，目标平台：%s。请提供详细的剪辑方案。"

	noteSelectionMissing   = "用户尚未选择短剧或平台，请询问相关信息"
	noteScriptUnconfirmed  = "用户尚未确认脚本，请先询问脚本情况"
	noteEditingUnderspeced = "用户尚未选择短剧或平台，剪辑方案请先确认缺失的信息"

	// placeholderUnset stands in for a drama or platform list that was never chosen.
	placeholderUnset = "（未选择）"
)

// input is everything a transition rule may look at. Rules must not modify state.
type input struct {
	state   *domain.WorkflowState
	message string
	result  domain.IntentResult
	summary string
}

// decision is what a rule resolved: who answers, with what text, and the state change
// applied once the answer succeeded.
type decision struct {
	handler domain.HandlerID
	message string
	context string
	mutate  func(*domain.WorkflowState)
	ranking bool
}

type rule func(in input) decision

// defaultRules is the transition table. Every intent must have an entry.
func defaultRules() map[domain.Intent]rule {
	return map[domain.Intent]rule{
		domain.IntentQueryRanking:    queryRanking,
		domain.IntentSelectDrama:     selectDrama,
		domain.IntentConsultPlatform: passThrough(domain.HandlerPlatform),
		domain.IntentSelectPlatform:  selectPlatform,
		domain.IntentCreateScript:    createScript,
		domain.IntentReviewScript:    reviewScript,
		domain.IntentConfirmScript:   confirmScript,
		domain.IntentRequestEditing:  requestEditing,
		domain.IntentGeneralQuestion: passThrough(domain.HandlerGeneral),
	}
}

func checkRules(rules map[domain.Intent]rule) error {
	var missing []string
	for _, intent := range domain.Intents() {
		if rules[intent] == nil {
			missing = append(missing, string(intent))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("transition table has no rule for: %s", strings.Join(missing, ", "))
	}
	return nil
}

func passThrough(handler domain.HandlerID) rule {
	return func(in input) decision {
		return decision{handler: handler, message: in.message, context: in.summary}
	}
}

func queryRanking(in input) decision {
	return decision{
		handler: domain.HandlerRanking,
		message: in.message,
		context: in.summary,
		ranking: true,
		mutate: func(s *domain.WorkflowState) {
			s.InWorkflow = true
		},
	}
}

func selectDrama(in input) decision {
	drama := in.result.Entities.DramaName
	if drama == "" {
		drama = in.message
	}
	return decision{
		handler: domain.HandlerPlatform,
		message: fmt.Sprintf(msgDramaSelected, drama),
		context: in.summary,
		mutate: func(s *domain.WorkflowState) {
			s.SelectDrama(drama)
			s.CurrentStep = domain.StepDramaSelected
			s.InWorkflow = true
		},
	}
}

// selectPlatform records the platforms and, when a drama is already chosen, goes straight
// on to drafting the script.
func selectPlatform(in input) decision {
	platforms := in.result.Entities.Platforms
	if len(platforms) == 0 {
		platforms = platform.Extract(in.message)
	}
	platforms = domain.NormalizePlatforms(platforms)

	if !in.state.HasDrama() {
		return decision{
			handler: domain.HandlerPlatform,
			message: fmt.Sprintf(msgPlatformsNoDrama, in.message),
			context: in.summary,
			mutate: func(s *domain.WorkflowState) {
				s.SetPlatforms(platforms)
				s.CurrentStep = domain.StepPlatformSelected
			},
		}
	}

	return decision{
		handler: domain.HandlerScript,
		message: fmt.Sprintf(msgScriptAutoChain, in.state.Drama(), joinPlatforms(platforms)),
		context: in.summary,
		mutate: func(s *domain.WorkflowState) {
			s.SetPlatforms(platforms)
			s.CurrentStep = domain.StepScriptCreated
		},
	}
}

func createScript(in input) decision {
	if !in.state.HasDrama() || !in.state.HasPlatforms() {
		return decision{
			handler: domain.HandlerScript,
			message: in.message,
			context: annotate(in.summary, noteSelectionMissing),
		}
	}
	return decision{
		handler: domain.HandlerScript,
		message: fmt.Sprintf(msgScriptRequested, in.state.Drama(), joinPlatforms(in.state.SelectedPlatforms)),
		context: in.summary,
		mutate: func(s *domain.WorkflowState) {
			s.CurrentStep = domain.StepScriptCreated
		},
	}
}

func reviewScript(in input) decision {
	return decision{
		handler: domain.HandlerScript,
		message: fmt.Sprintf(msgScriptRevision, in.message),
		context: in.summary,
	}
}

// confirmScript is permissive: it moves to editing even without a drama or platforms,
// and only flags the gap to the editor.
func confirmScript(in input) decision {
	drama := in.state.Drama()
	if drama == "" {
		drama = placeholderUnset
	}
	platforms := strings.Join(in.state.SelectedPlatforms, ", ")
	if platforms == "" {
		platforms = placeholderUnset
	}

	summary := in.summary
	if !in.state.HasDrama() || !in.state.HasPlatforms() {
		summary = annotate(summary, noteEditingUnderspeced)
	}

	return decision{
		handler: domain.HandlerEditor,
		message: fmt.Sprintf(msgEditingAfterReview, drama, platforms),
		context: summary,
		mutate: func(s *domain.WorkflowState) {
			s.ConfirmScript()
			s.CurrentStep = domain.StepEditing
		},
	}
}

func requestEditing(in input) decision {
	if !in.state.ScriptConfirmed() {
		return decision{
			handler: domain.HandlerEditor,
			message: in.message,
			context: annotate(in.summary, noteScriptUnconfirmed),
		}
	}
	return decision{
		handler: domain.HandlerEditor,
		message: in.message,
		context: in.summary,
		mutate: func(s *domain.WorkflowState) {
			s.CurrentStep = domain.StepEditing
		},
	}
}
