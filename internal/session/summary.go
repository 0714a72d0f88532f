package session

import (
	"github.com/lexiquest/review-api/internal/domain"
)

// gradeWeights score grades for the rewards system only.
var gradeWeights = map[domain.ReviewGrade]int{
	domain.ReviewGradeAgain: 0,
	domain.ReviewGradeHard:  1,
	domain.ReviewGradeGood:  2,
	domain.ReviewGradeEasy:  3,
}

// Summary is the session-level statistic set handed to rewards.
type Summary struct {
	Count              int                        `json:"count"`
	AverageGradeWeight float64                    `json:"average_grade_weight"`
	PerfectCount       int                        `json:"perfect_count"`
	GradeCounts        map[domain.ReviewGrade]int `json:"grade_counts,omitempty"`
}

// GradeWeight returns the scoring weight of grade, 0 for invalid grades.
func GradeWeight(grade domain.ReviewGrade) int {
	return gradeWeights[grade]
}

// Summarize reduces outcomes to a Summary. An empty input yields the
// zero Summary.
func Summarize(outcomes []Outcome) Summary {
	if len(outcomes) == 0 {
		return Summary{}
	}

	summary := Summary{
		Count:       len(outcomes),
		GradeCounts: make(map[domain.ReviewGrade]int, len(gradeWeights)),
	}

	total := 0
	for _, o := range outcomes {
		total += GradeWeight(o.Grade)
		summary.GradeCounts[o.Grade]++
		if o.Grade == domain.ReviewGradeEasy {
			summary.PerfectCount++
		}
	}
	summary.AverageGradeWeight = float64(total) / float64(len(outcomes))

	return summary
}
