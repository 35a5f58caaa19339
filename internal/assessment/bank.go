// Package assessment implements the care assessment: a question bank, the
// wizard state machine, and the scorer that turns answers into a care-type
// recommendation with matched communities.
package assessment

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/harborview-living/directory-cli/internal/model"
)

//go:embed questions.yaml
var defaultBankYAML []byte

// Bank is an ordered, immutable question bank. Load once per process.
type Bank struct {
	questions []model.AssessmentQuestion
	byID      map[string]int
}

// LoadBank parses a YAML question bank.
func LoadBank(data []byte) (*Bank, error) {
	var doc struct {
		Questions []model.AssessmentQuestion `yaml:"questions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "assessment: parse question bank")
	}
	if len(doc.Questions) == 0 {
		return nil, eris.New("assessment: question bank is empty")
	}

	byID := make(map[string]int, len(doc.Questions))
	for i, q := range doc.Questions {
		if q.ID == "" {
			return nil, eris.Errorf("assessment: question %d has no id", i)
		}
		if _, dup := byID[q.ID]; dup {
			return nil, eris.Errorf("assessment: duplicate question id %q", q.ID)
		}
		if q.Mode != model.SelectSingle && q.Mode != model.SelectMulti {
			return nil, eris.Errorf("assessment: question %q has invalid mode %q", q.ID, q.Mode)
		}
		if len(q.Options) == 0 {
			return nil, eris.Errorf("assessment: question %q has no options", q.ID)
		}
		byID[q.ID] = i
	}

	return &Bank{questions: doc.Questions, byID: byID}, nil
}

// LoadBankFile reads a question bank from a YAML file.
func LoadBankFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("assessment: read bank %s", path))
	}
	return LoadBank(data)
}

// DefaultBank returns the embedded question bank.
func DefaultBank() (*Bank, error) {
	return LoadBank(defaultBankYAML)
}

// Len returns the number of questions.
func (b *Bank) Len() int { return len(b.questions) }

// Questions returns the ordered question list.
func (b *Bank) Questions() []model.AssessmentQuestion { return b.questions }

// Question returns the question at the given index.
func (b *Bank) Question(i int) (model.AssessmentQuestion, bool) {
	if i < 0 || i >= len(b.questions) {
		return model.AssessmentQuestion{}, false
	}
	return b.questions[i], true
}

// QuestionByID looks a question up by its identifier.
func (b *Bank) QuestionByID(id string) (model.AssessmentQuestion, bool) {
	i, ok := b.byID[id]
	if !ok {
		return model.AssessmentQuestion{}, false
	}
	return b.questions[i], true
}
