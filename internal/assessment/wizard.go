package assessment

import (
	"github.com/rotisserie/eris"

	"github.com/harborview-living/directory-cli/internal/model"
)

// Stage is the wizard's top-level position.
type Stage string

const (
	StageIntro      Stage = "intro"
	StageInProgress Stage = "in-progress"
	StageComplete   Stage = "complete"
)

// State is the wizard position plus the answers recorded so far. It is a
// value passed through pure transition functions; the caller owns its
// lifecycle and persistence.
type State struct {
	Stage   Stage
	Index   int
	Answers model.AssessmentAnswers
}

// NewState returns a fresh wizard at the intro stage with no answers.
func NewState() State {
	return State{Stage: StageIntro, Answers: model.AssessmentAnswers{}}
}

// Begin moves from intro to the first question. Calling Begin on any other
// stage returns the state unchanged.
func Begin(s State) State {
	if s.Stage != StageIntro {
		return s
	}
	s.Stage = StageInProgress
	s.Index = 0
	return s
}

// Advance records the selections for the current question and moves forward.
// A single-select question requires exactly one selection; multi-select at
// least one. Answering the last question transitions to complete.
func Advance(s State, bank *Bank, selections []string) (State, error) {
	if s.Stage != StageInProgress {
		return s, eris.Errorf("wizard: advance from stage %q", s.Stage)
	}

	q, ok := bank.Question(s.Index)
	if !ok {
		return s, eris.Errorf("wizard: no question at index %d", s.Index)
	}

	switch q.Mode {
	case model.SelectSingle:
		if len(selections) != 1 {
			return s, eris.Errorf("wizard: question %q requires exactly one selection", q.ID)
		}
	case model.SelectMulti:
		if len(selections) == 0 {
			return s, eris.Errorf("wizard: question %q requires at least one selection", q.ID)
		}
	}
	for _, v := range selections {
		if _, ok := q.Option(v); !ok {
			return s, eris.Errorf("wizard: question %q has no option %q", q.ID, v)
		}
	}

	next := s
	next.Answers = cloneAnswers(s.Answers)
	next.Answers[q.ID] = append([]string(nil), selections...)

	if s.Index == bank.Len()-1 {
		next.Stage = StageComplete
	} else {
		next.Index = s.Index + 1
	}
	return next, nil
}

// Back moves to the previous question unconditionally, keeping the recorded
// answer. Backing up from the first question returns to the intro.
func Back(s State) State {
	if s.Stage != StageInProgress {
		return s
	}
	if s.Index == 0 {
		s.Stage = StageIntro
		return s
	}
	s.Index--
	return s
}

// Restart returns to the intro and clears every recorded answer.
func Restart(State) State {
	return NewState()
}

func cloneAnswers(a model.AssessmentAnswers) model.AssessmentAnswers {
	cp := make(model.AssessmentAnswers, len(a))
	for k, v := range a {
		cp[k] = append([]string(nil), v...)
	}
	return cp
}
