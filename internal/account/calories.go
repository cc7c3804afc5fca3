package account

import (
	"fmt"
	"math"
)

// Intent is what the user wants to do with their weight.
type Intent string

const (
	IntentLose Intent = "lose"
	IntentKeep Intent = "keep"
	IntentGain Intent = "gain"
)

// Profile is the body data a calorie target is computed from.
type Profile struct {
	WeightKg     float64 `json:"weight"`
	HeightCm     float64 `json:"height"`
	Age          int     `json:"age"`
	Male         bool    `json:"male"`
	ActivityRate float64 `json:"rate"`
	Intent       Intent  `json:"intend"`
}

// Validate checks that every field is in a plausible range.
func (p Profile) Validate() error {
	switch {
	case p.WeightKg <= 0 || p.WeightKg > 500:
		return fmt.Errorf("%w: weight out of range", ErrInvalidProfile)
	case p.HeightCm <= 0 || p.HeightCm > 300:
		return fmt.Errorf("%w: height out of range", ErrInvalidProfile)
	case p.Age <= 0 || p.Age > 150:
		return fmt.Errorf("%w: age out of range", ErrInvalidProfile)
	case p.ActivityRate < 1.2 || p.ActivityRate > 1.9:
		return fmt.Errorf("%w: activity rate must be between 1.2 and 1.9", ErrInvalidProfile)
	}
	switch p.Intent {
	case IntentLose, IntentKeep, IntentGain:
		return nil
	default:
		return fmt.Errorf("%w: unknown intent %q", ErrInvalidProfile, p.Intent)
	}
}

// BMR is the Mifflin-St Jeor basal metabolic rate in kcal per day.
func (p Profile) BMR() float64 {
	bmr := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	if p.Male {
		return bmr + 5
	}
	return bmr - 161
}

// RecommendCalories returns the daily calorie target for a profile.
func RecommendCalories(p Profile) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	target := p.BMR() * p.ActivityRate
	switch p.Intent {
	case IntentLose:
		target -= 500
	case IntentGain:
		target += 500
	}
	return math.Round(target), nil
}

// DayStatus classifies a day's intake against its target.
type DayStatus string

const (
	StatusUnder    DayStatus = "under"
	StatusOnTarget DayStatus = "on_target"
	StatusOver     DayStatus = "over"
)

// Comparison is a day's planned intake measured against a target.
type Comparison struct {
	Target     float64   `json:"target"`
	Actual     float64   `json:"actual"`
	Difference float64   `json:"difference"`
	Status     DayStatus `json:"status"`
}

// CompareDay compares planned calories with the target. Within 5% of the
// target counts as on target.
func CompareDay(target, actual float64) Comparison {
	diff := math.Round(actual - target)
	status := StatusOnTarget
	switch tolerance := target * 0.05; {
	case actual < target-tolerance:
		status = StatusUnder
	case actual > target+tolerance:
		status = StatusOver
	}
	return Comparison{Target: target, Actual: math.Round(actual), Difference: diff, Status: status}
}
