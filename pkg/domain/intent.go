package domain

// Intent is the classified purpose of a user message.
type Intent string

const (
	IntentQueryRanking    Intent = "query_ranking"
	IntentSelectDrama     Intent = "select_drama"
	IntentConsultPlatform Intent = "consult_platform"
	IntentSelectPlatform  Intent = "select_platform"
	IntentCreateScript    Intent = "create_script"
	IntentReviewScript    Intent = "review_script"
	IntentConfirmScript   Intent = "confirm_script"
	IntentRequestEditing  Intent = "request_editing"
	IntentGeneralQuestion Intent = "general_question"
)

// Intents returns the nine intents in declaration order.
func Intents() []Intent {
	return []Intent{
		IntentQueryRanking,
		IntentSelectDrama,
		IntentConsultPlatform,
		IntentSelectPlatform,
		IntentCreateScript,
		IntentReviewScript,
		IntentConfirmScript,
		IntentRequestEditing,
		IntentGeneralQuestion,
	}
}

// ParseIntent maps a raw label onto the closed enum.
func ParseIntent(raw string) (Intent, bool) {
	for _, i := range Intents() {
		if string(i) == raw {
			return i, true
		}
	}
	return IntentGeneralQuestion, false
}

// Entities holds the optional values the classifier pulled out of a message.
type Entities struct {
	DramaName string   `json:"drama_name,omitempty" mapstructure:"drama_name"`
	Platforms []string `json:"platforms,omitempty" mapstructure:"platforms"`
	Other     string   `json:"other,omitempty" mapstructure:"other"`
}

// IntentResult is the typed classifier output.
// Confidence and Reasoning are advisory; routing only looks at Intent.
type IntentResult struct {
	Intent     Intent   `json:"intent" mapstructure:"intent"`
	Confidence float64  `json:"confidence" mapstructure:"confidence"`
	Entities   Entities `json:"entities" mapstructure:"entities"`
	Reasoning  string   `json:"reasoning" mapstructure:"reasoning"`
}
