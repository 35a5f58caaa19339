package assessment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/harborview-living/directory-cli/internal/model"
)

// bothEpsilonRatio is the tie-break width: when the runner-up total is at
// least this fraction of the winning total, the recommendation is "Both"
// rather than an arbitrary single pick. Product decision recorded in
// DESIGN.md; the threshold is intentionally generous so near-ties surface
// combined communities.
const bothEpsilonRatio = 0.9

// maxReasons caps the generated reason list on a recommendation.
const maxReasons = 3

// categoryProfile is the static display table for a recommendation category.
type categoryProfile struct {
	title       string
	description string
	costRange   string
	// required lists the care-type tags a matched community must carry one of.
	required []model.CareType
}

var categoryProfiles = map[model.RecommendationCategory]categoryProfile{
	model.CategoryMemoryCare: {
		title:       "Memory Care",
		description: "A secured neighborhood with specially trained staff, structured routines, and programming built around cognitive support.",
		costRange:   "$5,500 – $8,500 / month",
		required:    []model.CareType{model.CareTypeMemoryCare},
	},
	model.CategoryAssistedLiving: {
		title:       "Assisted Living",
		description: "Private apartments with help on hand for daily activities, medication management, dining, and housekeeping.",
		costRange:   "$4,000 – $6,500 / month",
		required:    []model.CareType{model.CareTypeAssistedLiving},
	},
	model.CategoryIndependentLiving: {
		title:       "Independent Living",
		description: "Maintenance-free senior apartments with dining, activities, and transportation, for adults who manage their own care.",
		costRange:   "$2,500 – $4,500 / month",
		required:    []model.CareType{model.CareTypeIndependentLiving},
	},
	model.CategorySkilledNursing: {
		title:       "Skilled Nursing",
		description: "Licensed nursing care around the clock, with rehabilitation services and physician oversight.",
		costRange:   "$7,500 – $11,000 / month",
		required:    []model.CareType{model.CareTypeSkilledNursing},
	},
	// CategoryBoth has no fixed profile; bothProfile derives one from the
	// tied pair.
	model.CategoryUncertain: {
		title:       "Let's Talk It Through",
		description: "Your answers point in a few directions. A care advisor can help narrow the options for your family.",
		costRange:   "Varies by community",
		required:    model.AllCareTypes,
	},
}

// contribution records one selected option; its weight toward the winning
// categories is computed in buildReasons once those are known.
type contribution struct {
	question model.AssessmentQuestion
	option   model.AssessmentOption
}

// Scorer converts completed answers into a recommendation. It is stateless;
// one value can serve every request.
type Scorer struct {
	bank *Bank
}

// NewScorer creates a Scorer over the given question bank.
func NewScorer(bank *Bank) *Scorer {
	return &Scorer{bank: bank}
}

// Score accumulates the selected options' weights per category, picks the
// winning category (near-ties become Both, all-zero becomes Uncertain), and
// attaches matched communities. Answers referencing a question or option
// absent from the bank are a programming error and return a wrapped error.
func (s *Scorer) Score(answers model.AssessmentAnswers, communities []model.Community) (*model.Recommendation, error) {
	totals := make(map[model.CareType]float64, len(model.AllCareTypes))
	for _, ct := range model.AllCareTypes {
		totals[ct] = 0
	}

	var contributions []contribution
	// Walk the bank in order so accumulation order is deterministic.
	for _, q := range s.bank.Questions() {
		selected, ok := answers[q.ID]
		if !ok {
			continue
		}
		for _, value := range selected {
			opt, ok := q.Option(value)
			if !ok {
				return nil, eris.Errorf("scorer: question %q has no option %q", q.ID, value)
			}
			for ct, w := range opt.Weights {
				totals[ct] += w
			}
			contributions = append(contributions, contribution{question: q, option: opt})
		}
	}
	for id := range answers {
		if _, ok := s.bank.QuestionByID(id); !ok {
			return nil, eris.Errorf("scorer: unknown question id %q in answers", id)
		}
	}

	winner, runnerUp, topScore := rank(totals)

	category := model.CategoryUncertain
	required := categoryProfiles[model.CategoryUncertain].required
	switch {
	case topScore <= 0:
		// Nothing scored; keep Uncertain.
	case totals[runnerUp] >= bothEpsilonRatio*topScore:
		category = model.CategoryBoth
		required = []model.CareType{winner, runnerUp}
	default:
		category = categoryFor(winner)
		required = categoryProfiles[category].required
	}

	profile := categoryProfiles[category]
	if category == model.CategoryBoth {
		profile = bothProfile(winner, runnerUp)
	}
	rec := &model.Recommendation{
		Category:       category,
		Title:          profile.title,
		Description:    profile.description,
		CostRange:      profile.costRange,
		Score:          topScore,
		CategoryScores: totals,
		Reasons:        buildReasons(contributions, required),
		Matches:        MatchCommunities(communities, category, required),
	}
	return rec, nil
}

// rank returns the top two categories and the winning total. Categories are
// compared in the fixed AllCareTypes order so equal totals break the same
// way every run.
func rank(totals map[model.CareType]float64) (winner, runnerUp model.CareType, topScore float64) {
	ordered := append([]model.CareType(nil), model.AllCareTypes...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return totals[ordered[i]] > totals[ordered[j]]
	})
	return ordered[0], ordered[1], totals[ordered[0]]
}

// bothProfile builds the display table for a near-tie from the two tied
// care types. The assisted living / memory care pair keeps its dedicated
// copy; any other pair gets text derived from its own names so the result
// never claims memory support that was not scored.
func bothProfile(winner, runnerUp model.CareType) categoryProfile {
	pair := map[model.CareType]bool{winner: true, runnerUp: true}
	if pair[model.CareTypeAssistedLiving] && pair[model.CareTypeMemoryCare] {
		return categoryProfile{
			title:       "Assisted Living with Memory Support",
			description: "Communities offering both assisted living and memory care, so support can deepen without another move.",
			costRange:   "$4,500 – $8,000 / month",
			required:    []model.CareType{winner, runnerUp},
		}
	}
	return categoryProfile{
		title: fmt.Sprintf("%s or %s", winner, runnerUp),
		description: fmt.Sprintf(
			"Your answers weigh %s and %s nearly evenly. Touring communities that offer both will show which fits day to day.",
			strings.ToLower(string(winner)), strings.ToLower(string(runnerUp))),
		costRange: "Varies by community",
		required:  []model.CareType{winner, runnerUp},
	}
}

func categoryFor(ct model.CareType) model.RecommendationCategory {
	switch ct {
	case model.CareTypeMemoryCare:
		return model.CategoryMemoryCare
	case model.CareTypeAssistedLiving:
		return model.CategoryAssistedLiving
	case model.CareTypeIndependentLiving:
		return model.CategoryIndependentLiving
	case model.CareTypeSkilledNursing:
		return model.CategorySkilledNursing
	}
	return model.CategoryUncertain
}

// buildReasons turns the heaviest contributions toward the winning
// categories into display sentences, one per question, strongest first.
func buildReasons(contributions []contribution, required []model.CareType) []string {
	type weighted struct {
		c      contribution
		amount float64
	}
	var toward []weighted
	for _, c := range contributions {
		var amount float64
		for _, ct := range required {
			amount += c.option.Weights[ct]
		}
		if amount > 0 {
			toward = append(toward, weighted{c: c, amount: amount})
		}
	}

	// Strongest first; equal weights keep bank order.
	sort.SliceStable(toward, func(i, j int) bool {
		return toward[i].amount > toward[j].amount
	})

	seen := make(map[string]bool, maxReasons)
	var reasons []string
	for _, w := range toward {
		if seen[w.c.question.ID] {
			continue
		}
		seen[w.c.question.ID] = true
		reasons = append(reasons, fmt.Sprintf("You indicated: %s.", w.c.option.Label))
		if len(reasons) == maxReasons {
			break
		}
	}
	return reasons
}
