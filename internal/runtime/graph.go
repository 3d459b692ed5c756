package runtime

import "github.com/aretw0/dramaflow/pkg/domain"

// Edge is one step change the transition table can produce.
type Edge struct {
	From    domain.Step
	To      domain.Step
	Intent  domain.Intent
	Handler domain.HandlerID
}

// Edges enumerates the step changes of the transition table by running every rule
// against an empty and a fully populated state at each step. Rules that keep the step
// are left out. The order is stable: steps, then intents, in declaration order.
func Edges() []Edge {
	rules := defaultRules()
	result := domain.IntentResult{
		Entities: domain.Entities{DramaName: "drama", Platforms: []string{"TikTok"}},
	}

	type key struct {
		from, to domain.Step
		intent   domain.Intent
	}
	seen := make(map[key]bool)
	var edges []Edge

	for _, step := range domain.Steps() {
		for _, state := range sampleStates(step) {
			for _, intent := range domain.Intents() {
				result.Intent = intent
				d := rules[intent](input{state: state, message: "msg", result: result})
				if d.mutate == nil {
					continue
				}
				next := state.Clone()
				d.mutate(next)
				k := key{step, next.CurrentStep, intent}
				if next.CurrentStep == step || seen[k] {
					continue
				}
				seen[k] = true
				edges = append(edges, Edge{From: step, To: next.CurrentStep, Intent: intent, Handler: d.handler})
			}
		}
	}
	return edges
}

func sampleStates(step domain.Step) []*domain.WorkflowState {
	bare := domain.NewWorkflowState()
	bare.CurrentStep = step

	full := bare.Clone()
	full.SelectDrama("drama")
	full.SetPlatforms([]string{"TikTok"})
	full.ConfirmScript()
	full.InWorkflow = true

	return []*domain.WorkflowState{bare, full}
}
