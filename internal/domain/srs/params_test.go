package srs

import (
	"testing"

	"github.com/lexiquest/review-api/internal/domain"
)

func TestNewDefaultParams(t *testing.T) {
	params := NewDefaultParams()

	if params.MinEase != domain.MinEase {
		t.Errorf("Expected MinEase %f, got %f", domain.MinEase, params.MinEase)
	}

	for _, grade := range domain.AllReviewGrades() {
		if _, exists := params.EaseAdjustment[grade]; !exists {
			t.Errorf("EaseAdjustment missing for grade %s", grade)
		}
		if grade == domain.ReviewGradeAgain {
			continue
		}
		if _, exists := params.IntervalModifier[grade]; !exists {
			t.Errorf("IntervalModifier missing for grade %s", grade)
		}
		if _, exists := params.FirstSuccessIntervals[grade]; !exists {
			t.Errorf("FirstSuccessIntervals missing for grade %s", grade)
		}
	}

	expectedFirst := map[domain.ReviewGrade]int{
		domain.ReviewGradeHard: 2,
		domain.ReviewGradeGood: 5,
		domain.ReviewGradeEasy: 8,
	}
	for grade, days := range expectedFirst {
		if params.FirstSuccessIntervals[grade] != days {
			t.Errorf("Expected first %s interval %d, got %d", grade, days, params.FirstSuccessIntervals[grade])
		}
	}

	if params.MaximumInterval != DefaultMaximumInterval {
		t.Errorf("Expected MaximumInterval %d, got %d", DefaultMaximumInterval, params.MaximumInterval)
	}
}

func TestNewDefaultParams_Independent(t *testing.T) {
	a := NewDefaultParams()
	b := NewDefaultParams()

	a.FirstSuccessIntervals[domain.ReviewGradeGood] = 99

	if b.FirstSuccessIntervals[domain.ReviewGradeGood] != 5 {
		t.Error("Default params instances share state")
	}
}

func TestNewParams(t *testing.T) {
	config := ParamsConfig{
		MinEase:              1.4,
		AgainEaseAdjustment:  -0.3,
		HardEaseAdjustment:   -0.1,
		EasyEaseAdjustment:   0.2,
		HardIntervalModifier: 1.1,
		GoodIntervalModifier: 0.9,
		EasyIntervalModifier: 1.5,
		FirstHardInterval:    1,
		FirstGoodInterval:    4,
		FirstEasyInterval:    10,
		MaximumInterval:      3650,
	}

	params := NewParams(config)

	if params.MinEase != 1.4 {
		t.Errorf("MinEase not set, got %f", params.MinEase)
	}
	if params.EaseAdjustment[domain.ReviewGradeAgain] != -0.3 {
		t.Errorf("Again ease adjustment not set, got %f", params.EaseAdjustment[domain.ReviewGradeAgain])
	}
	if params.EaseAdjustment[domain.ReviewGradeGood] != 0 {
		t.Errorf("Good ease adjustment should stay 0, got %f", params.EaseAdjustment[domain.ReviewGradeGood])
	}
	if params.IntervalModifier[domain.ReviewGradeEasy] != 1.5 {
		t.Errorf("Easy modifier not set, got %f", params.IntervalModifier[domain.ReviewGradeEasy])
	}
	if params.FirstSuccessIntervals[domain.ReviewGradeEasy] != 10 {
		t.Errorf("First Easy interval not set, got %d", params.FirstSuccessIntervals[domain.ReviewGradeEasy])
	}
	if params.MaximumInterval != 3650 {
		t.Errorf("MaximumInterval not set, got %d", params.MaximumInterval)
	}
}

func TestNewParams_ZeroConfigKeepsDefaults(t *testing.T) {
	params := NewParams(ParamsConfig{})
	defaults := NewDefaultParams()

	if params.MinEase != defaults.MinEase {
		t.Errorf("Expected default MinEase, got %f", params.MinEase)
	}
	for _, grade := range domain.AllReviewGrades() {
		if params.EaseAdjustment[grade] != defaults.EaseAdjustment[grade] {
			t.Errorf("Ease adjustment for %s changed", grade)
		}
		if params.FirstSuccessIntervals[grade] != defaults.FirstSuccessIntervals[grade] {
			t.Errorf("First interval for %s changed", grade)
		}
	}
}
