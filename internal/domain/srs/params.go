package srs

import (
	"github.com/lexiquest/review-api/internal/domain"
)

// DefaultMaximumInterval caps intervals at roughly a hundred years.
const DefaultMaximumInterval = 36500

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Floor for the ease factor
	MinEase float64

	// Adjustments for different review grades
	EaseAdjustment   map[domain.ReviewGrade]float64
	IntervalModifier map[domain.ReviewGrade]float64

	// Interval used on the first success after a reset
	FirstSuccessIntervals map[domain.ReviewGrade]int

	// Upper bound for IntervalDays. Growth saturates here.
	MaximumInterval int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the default.
type ParamsConfig struct {
	MinEase float64

	// Ease adjustments. Good defaults to 0 and is therefore not overridable here.
	AgainEaseAdjustment float64
	HardEaseAdjustment  float64
	EasyEaseAdjustment  float64

	// Interval modifiers
	HardIntervalModifier float64
	GoodIntervalModifier float64
	EasyIntervalModifier float64

	// First success intervals in days
	FirstHardInterval int
	FirstGoodInterval int
	FirstEasyInterval int

	MaximumInterval int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinEase: domain.MinEase,

		EaseAdjustment: map[domain.ReviewGrade]float64{
			domain.ReviewGradeAgain: -0.20,
			domain.ReviewGradeHard:  -0.15,
			domain.ReviewGradeGood:  0.0,
			domain.ReviewGradeEasy:  0.15,
		},

		// Hard grows by a fixed factor; Good and Easy scale the current ease.
		IntervalModifier: map[domain.ReviewGrade]float64{
			domain.ReviewGradeHard: 1.2,
			domain.ReviewGradeGood: 1.0,
			domain.ReviewGradeEasy: 1.3,
		},

		// These three are shown on the grade buttons and must not drift.
		FirstSuccessIntervals: map[domain.ReviewGrade]int{
			domain.ReviewGradeHard: 2,
			domain.ReviewGradeGood: 5,
			domain.ReviewGradeEasy: 8,
		},

		MaximumInterval: DefaultMaximumInterval,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEase > 0 {
		params.MinEase = config.MinEase
	}

	if config.AgainEaseAdjustment != 0 {
		params.EaseAdjustment[domain.ReviewGradeAgain] = config.AgainEaseAdjustment
	}
	if config.HardEaseAdjustment != 0 {
		params.EaseAdjustment[domain.ReviewGradeHard] = config.HardEaseAdjustment
	}
	if config.EasyEaseAdjustment != 0 {
		params.EaseAdjustment[domain.ReviewGradeEasy] = config.EasyEaseAdjustment
	}

	if config.HardIntervalModifier > 0 {
		params.IntervalModifier[domain.ReviewGradeHard] = config.HardIntervalModifier
	}
	if config.GoodIntervalModifier > 0 {
		params.IntervalModifier[domain.ReviewGradeGood] = config.GoodIntervalModifier
	}
	if config.EasyIntervalModifier > 0 {
		params.IntervalModifier[domain.ReviewGradeEasy] = config.EasyIntervalModifier
	}

	if config.FirstHardInterval > 0 {
		params.FirstSuccessIntervals[domain.ReviewGradeHard] = config.FirstHardInterval
	}
	if config.FirstGoodInterval > 0 {
		params.FirstSuccessIntervals[domain.ReviewGradeGood] = config.FirstGoodInterval
	}
	if config.FirstEasyInterval > 0 {
		params.FirstSuccessIntervals[domain.ReviewGradeEasy] = config.FirstEasyInterval
	}

	if config.MaximumInterval > 0 {
		params.MaximumInterval = config.MaximumInterval
	}

	return params
}

// growth returns the multiplier applied to the previous interval for a
// successful grade, given the ease before this review's adjustment.
func (p *Params) growth(grade domain.ReviewGrade, ease float64) float64 {
	modifier := p.IntervalModifier[grade]
	if grade == domain.ReviewGradeHard {
		return modifier
	}
	return ease * modifier
}

// maxInterval returns MaximumInterval, or the default when it is unset.
func (p *Params) maxInterval() int {
	if p.MaximumInterval <= 0 {
		return DefaultMaximumInterval
	}
	return p.MaximumInterval
}
