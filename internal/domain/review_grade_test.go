package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestReviewGradeZeroValueIsInvalid(t *testing.T) {
	var g ReviewGrade
	if g.Valid() {
		t.Fatal("Expected zero ReviewGrade to be invalid")
	}
	if g.Code() != 0 {
		t.Errorf("Expected code 0 for invalid grade, got %d", g.Code())
	}
}

func TestReviewGradeCodes(t *testing.T) {
	tests := []struct {
		grade ReviewGrade
		label string
		code  int
	}{
		{ReviewGradeAgain, "again", 1},
		{ReviewGradeHard, "hard", 2},
		{ReviewGradeGood, "good", 4},
		{ReviewGradeEasy, "easy", 5},
	}

	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			if tc.grade.String() != tc.label {
				t.Errorf("Expected label %q, got %q", tc.label, tc.grade.String())
			}
			if tc.grade.Code() != tc.code {
				t.Errorf("Expected code %d, got %d", tc.code, tc.grade.Code())
			}

			fromCode, err := ReviewGradeFromCode(tc.code)
			if err != nil || fromCode != tc.grade {
				t.Errorf("ReviewGradeFromCode(%d) = %v, %v", tc.code, fromCode, err)
			}

			parsed, err := ParseReviewGrade(tc.label)
			if err != nil || parsed != tc.grade {
				t.Errorf("ParseReviewGrade(%q) = %v, %v", tc.label, parsed, err)
			}
		})
	}
}

func TestReviewGradeRejectsUnknownValues(t *testing.T) {
	for _, code := range []int{0, 3, 6, -1} {
		if _, err := ReviewGradeFromCode(code); !errors.Is(err, ErrInvalidReviewGrade) {
			t.Errorf("Expected ErrInvalidReviewGrade for code %d, got %v", code, err)
		}
	}

	for _, label := range []string{"", "perfect", "4"} {
		if _, err := ParseReviewGrade(label); !errors.Is(err, ErrInvalidReviewGrade) {
			t.Errorf("Expected ErrInvalidReviewGrade for label %q, got %v", label, err)
		}
	}

	if ReviewGrade(7).Valid() {
		t.Error("Expected out-of-range grade to be invalid")
	}
}

func TestParseReviewGradeIsCaseInsensitive(t *testing.T) {
	g, err := ParseReviewGrade("  Good ")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if g != ReviewGradeGood {
		t.Errorf("Expected Good, got %v", g)
	}
}

func TestReviewGradeJSON(t *testing.T) {
	payload := struct {
		Grade ReviewGrade `json:"grade"`
	}{Grade: ReviewGradeEasy}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(data) != `{"grade":"easy"}` {
		t.Errorf("Unexpected JSON %s", data)
	}

	var decoded struct {
		Grade ReviewGrade `json:"grade"`
	}
	if err := json.Unmarshal([]byte(`{"grade":"banana"}`), &decoded); err == nil {
		t.Error("Expected error decoding unknown grade label")
	}

	if _, err := json.Marshal(struct{ G ReviewGrade }{G: ReviewGrade(9)}); err == nil {
		t.Error("Expected error encoding invalid grade")
	}
}

func TestReviewGradePassed(t *testing.T) {
	if ReviewGradeAgain.Passed() {
		t.Error("Again must not count as a pass")
	}
	for _, g := range []ReviewGrade{ReviewGradeHard, ReviewGradeGood, ReviewGradeEasy} {
		if !g.Passed() {
			t.Errorf("%v should count as a pass", g)
		}
	}
	if len(AllReviewGrades()) != 4 {
		t.Errorf("Expected four grades, got %d", len(AllReviewGrades()))
	}
}
