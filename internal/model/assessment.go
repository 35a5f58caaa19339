package model

// RecommendationCategory is the outcome bucket of a completed assessment.
type RecommendationCategory string

const (
	CategoryMemoryCare        RecommendationCategory = "Memory Care"
	CategoryAssistedLiving    RecommendationCategory = "Assisted Living"
	CategoryIndependentLiving RecommendationCategory = "Independent Living"
	CategorySkilledNursing    RecommendationCategory = "Skilled Nursing"
	CategoryBoth              RecommendationCategory = "Both"
	CategoryUncertain         RecommendationCategory = "Uncertain"
)

// SelectionMode distinguishes single-choice from multi-choice questions.
type SelectionMode string

const (
	SelectSingle SelectionMode = "single"
	SelectMulti  SelectionMode = "multi"
)

// AssessmentOption is one selectable answer on a question. Weights map a
// care-type affinity to this option's contribution toward that category.
type AssessmentOption struct {
	Value       string               `json:"value" yaml:"value"`
	Label       string               `json:"label" yaml:"label"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Weights     map[CareType]float64 `json:"weights,omitempty" yaml:"weights,omitempty"`
}

// AssessmentQuestion is a single step in the care assessment wizard.
type AssessmentQuestion struct {
	ID      string             `json:"id" yaml:"id"`
	Prompt  string             `json:"prompt" yaml:"prompt"`
	Subtext string             `json:"subtext,omitempty" yaml:"subtext,omitempty"`
	Mode    SelectionMode      `json:"mode" yaml:"mode"`
	Options []AssessmentOption `json:"options" yaml:"options"`
}

// Option returns the option with the given value, if present.
func (q AssessmentQuestion) Option(value string) (AssessmentOption, bool) {
	for _, opt := range q.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return AssessmentOption{}, false
}

// AssessmentAnswers maps question ID to the selected option values. A
// single-select answer holds exactly one value; a question with no entry
// is unanswered.
type AssessmentAnswers map[string][]string

// Answered reports whether the question has at least one recorded selection.
func (a AssessmentAnswers) Answered(questionID string) bool {
	return len(a[questionID]) > 0
}

// MatchedCommunity pairs a community with a generated justification for why
// it fits the recommended category.
type MatchedCommunity struct {
	Community Community `json:"community"`
	Reason    string    `json:"reason"`
}

// Recommendation is the scored outcome of a completed assessment.
type Recommendation struct {
	Category    RecommendationCategory `json:"category"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	CostRange   string                 `json:"cost_range"`
	Reasons     []string               `json:"reasons"`
	Score       float64                `json:"score"`
	// CategoryScores holds the per-category totals the winner was chosen from.
	CategoryScores map[CareType]float64 `json:"category_scores"`
	Matches        []MatchedCommunity   `json:"matches"`
}
