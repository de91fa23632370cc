package plan

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// CycleDays is the length of the repeating training plan
const CycleDays = 28

var ErrInvalidPlan = errors.New("invalid training plan")

// DefaultStartDate is the first day of the plan when none is configured
var DefaultStartDate = time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

// PlanDay is one entry of the 28-day schedule
type PlanDay struct {
	Day     int       `json:"day"` // 1-based
	Session SessionID `json:"session"`
}

// Plan is the read-only training schedule, ordered by day
type Plan struct {
	Days []PlanDay `json:"plan"`
}

//go:embed data/training_plan.json
var defaultPlanJSON []byte

// ParsePlan decodes and validates a plan document.
// A valid plan has exactly CycleDays entries numbered 1..CycleDays in order.
func ParsePlan(raw []byte) (Plan, error) {
	var p Plan
	if err := json.Unmarshal(raw, &p); err != nil {
		return Plan{}, fmt.Errorf("parse plan: %w", err)
	}
	if len(p.Days) != CycleDays {
		return Plan{}, fmt.Errorf("%w: expected %d days, got %d", ErrInvalidPlan, CycleDays, len(p.Days))
	}
	for i, d := range p.Days {
		if d.Day != i+1 {
			return Plan{}, fmt.Errorf("%w: entry %d has day %d", ErrInvalidPlan, i, d.Day)
		}
	}
	return p, nil
}

// DefaultPlan returns the built-in 28-day plan
func DefaultPlan() Plan {
	p, err := ParsePlan(defaultPlanJSON)
	if err != nil {
		panic("plan: embedded plan is invalid: " + err.Error())
	}
	return p
}

// LoadPlan reads a plan file
func LoadPlan(path string) (Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("read plan %s: %w", path, err)
	}
	return ParsePlan(raw)
}

// Day returns the entry with the given day number
func (p Plan) Day(day int) (PlanDay, bool) {
	for _, d := range p.Days {
		if d.Day == day {
			return d, true
		}
	}
	return PlanDay{}, false
}

// first returns day 1, or a rest day 1 for an empty plan
func (p Plan) first() PlanDay {
	if len(p.Days) == 0 {
		return PlanDay{Day: 1, Session: SessionRest}
	}
	return p.Days[0]
}
