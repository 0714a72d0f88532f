package domain

import (
	"fmt"
	"strings"
)

// ReviewGrade is the reviewer's self-reported recall quality for one item.
// The zero value is not a grade, so an unset field can never be mistaken
// for Again.
type ReviewGrade int

// Possible review grade values
const (
	ReviewGradeAgain ReviewGrade = iota + 1
	ReviewGradeHard
	ReviewGradeGood
	ReviewGradeEasy
)

// Legacy numeric wire codes used by the flashcard client and older rows.
// They only exist at the boundary; see ReviewGradeFromCode and Code.
const (
	gradeCodeAgain = 1
	gradeCodeHard  = 2
	gradeCodeGood  = 4
	gradeCodeEasy  = 5
)

var gradeLabels = map[ReviewGrade]string{
	ReviewGradeAgain: "again",
	ReviewGradeHard:  "hard",
	ReviewGradeGood:  "good",
	ReviewGradeEasy:  "easy",
}

// AllReviewGrades returns the four grades in ascending recall quality.
func AllReviewGrades() []ReviewGrade {
	return []ReviewGrade{ReviewGradeAgain, ReviewGradeHard, ReviewGradeGood, ReviewGradeEasy}
}

// Valid reports whether g is one of the four defined grades.
func (g ReviewGrade) Valid() bool {
	switch g {
	case ReviewGradeAgain, ReviewGradeHard, ReviewGradeGood, ReviewGradeEasy:
		return true
	default:
		return false
	}
}

// Passed reports whether the grade counts as a successful recall.
func (g ReviewGrade) Passed() bool {
	return g == ReviewGradeHard || g == ReviewGradeGood || g == ReviewGradeEasy
}

// String returns the lowercase label shown on the grade buttons.
func (g ReviewGrade) String() string {
	if label, ok := gradeLabels[g]; ok {
		return label
	}
	return fmt.Sprintf("ReviewGrade(%d)", int(g))
}

// Code returns the legacy numeric wire code for g, or 0 for an invalid grade.
func (g ReviewGrade) Code() int {
	switch g {
	case ReviewGradeAgain:
		return gradeCodeAgain
	case ReviewGradeHard:
		return gradeCodeHard
	case ReviewGradeGood:
		return gradeCodeGood
	case ReviewGradeEasy:
		return gradeCodeEasy
	default:
		return 0
	}
}

// MarshalText encodes the grade as its label, which also makes JSON use the label.
func (g ReviewGrade) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidReviewGrade, int(g))
	}
	return []byte(g.String()), nil
}

// UnmarshalText decodes a grade label.
func (g *ReviewGrade) UnmarshalText(text []byte) error {
	parsed, err := ParseReviewGrade(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// ParseReviewGrade translates a grade label ("again", "hard", "good", "easy",
// any case) into a ReviewGrade.
func ParseReviewGrade(label string) (ReviewGrade, error) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	for grade, l := range gradeLabels {
		if l == normalized {
			return grade, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidReviewGrade, label)
}

// ReviewGradeFromCode translates a legacy numeric wire code (1, 2, 4, 5)
// into a ReviewGrade. Any other value is rejected.
func ReviewGradeFromCode(code int) (ReviewGrade, error) {
	switch code {
	case gradeCodeAgain:
		return ReviewGradeAgain, nil
	case gradeCodeHard:
		return ReviewGradeHard, nil
	case gradeCodeGood:
		return ReviewGradeGood, nil
	case gradeCodeEasy:
		return ReviewGradeEasy, nil
	default:
		return 0, fmt.Errorf("%w: code %d", ErrInvalidReviewGrade, code)
	}
}
