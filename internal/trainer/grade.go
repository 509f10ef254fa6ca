package trainer

import (
	"fmt"
	"math"
)

// TestOutcome is the user's self-assessment for one presentation of a word
type TestOutcome int

const (
	// OutcomeUnknown - the user did not know the word
	OutcomeUnknown TestOutcome = -1
	// OutcomePartial - the user partially knew the word
	OutcomePartial TestOutcome = 0
	// OutcomeKnown - the user knew the word
	OutcomeKnown TestOutcome = 1
)

// MaxGrade is the ceiling the grade approaches on correct answers
const MaxGrade = 10.0

// CalcNewGrade computes the next knowing grade from the old one and the
// test outcome. A wrong answer halves the grade, a correct answer moves it
// halfway toward MaxGrade, a partial answer leaves it unchanged. Results are
// rounded to 2 decimal places to bound floating point drift across repeated
// updates; the partial branch still re-applies rounding on purpose.
//
// Grades are never clamped to [0, MaxGrade]: out-of-range input grades
// propagate through the formula untouched. For negative grades the rounding
// differs from JavaScript clients at exact halves: math.Round rounds half
// away from zero, Math.round rounds half toward positive infinity, so an old
// grade of -0.01 halves to -0.01 here and to -0 there.
func CalcNewGrade(oldGrade float64, outcome TestOutcome) (float64, error) {
	switch outcome {
	case OutcomeUnknown:
		return round2(oldGrade * 0.5), nil
	case OutcomePartial:
		return round2(oldGrade), nil
	case OutcomeKnown:
		return round2((MaxGrade-oldGrade)*0.5 + oldGrade), nil
	}
	return 0, fmt.Errorf("test outcome must be -1, 0, or 1, got %d", outcome)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
