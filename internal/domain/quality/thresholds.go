package quality

import (
	"fmt"

	"github.com/patlytics/patscope/pkg/errors"
)

// Breakpoint awards Points when the counted value is at least Min.
type Breakpoint struct {
	Min    int64 `mapstructure:"min" json:"min" yaml:"min"`
	Points int   `mapstructure:"points" json:"points" yaml:"points"`
}

// Ladder is a descending sequence of breakpoints with an upper cap.  The
// first breakpoint whose Min the value reaches determines the points; a value
// below every breakpoint scores zero.
type Ladder struct {
	Cap         int          `mapstructure:"cap" json:"cap" yaml:"cap"`
	Breakpoints []Breakpoint `mapstructure:"breakpoints" json:"breakpoints" yaml:"breakpoints"`
}

// Points returns the points awarded for value v.  Values at or below zero
// always score zero regardless of the ladder.
func (l Ladder) Points(v int64) int {
	if v <= 0 {
		return 0
	}
	for _, bp := range l.Breakpoints {
		if v >= bp.Min {
			if bp.Points > l.Cap {
				return l.Cap
			}
			return bp.Points
		}
	}
	return 0
}

// Validate checks that the ladder is well formed: a positive cap, strictly
// descending positive Min values, and points that never exceed the cap and
// never increase as Min decreases.  The ordering constraints are what make
// Points monotone non-decreasing in its input.
func (l Ladder) Validate() error {
	if l.Cap <= 0 {
		return errors.New(errors.CodeScoreInvalidThresholds,
			fmt.Sprintf("ladder cap must be positive, got %d", l.Cap))
	}
	if len(l.Breakpoints) == 0 {
		return errors.New(errors.CodeScoreInvalidThresholds, "ladder has no breakpoints")
	}
	prevMin := int64(-1)
	prevPoints := -1
	for i, bp := range l.Breakpoints {
		if bp.Min <= 0 {
			return errors.New(errors.CodeScoreInvalidThresholds,
				fmt.Sprintf("breakpoint %d: min must be positive, got %d", i, bp.Min))
		}
		if bp.Points <= 0 || bp.Points > l.Cap {
			return errors.New(errors.CodeScoreInvalidThresholds,
				fmt.Sprintf("breakpoint %d: points %d out of range (0, %d]", i, bp.Points, l.Cap))
		}
		if i > 0 {
			if bp.Min >= prevMin {
				return errors.New(errors.CodeScoreInvalidThresholds,
					fmt.Sprintf("breakpoint %d: min %d not strictly below previous %d", i, bp.Min, prevMin))
			}
			if bp.Points > prevPoints {
				return errors.New(errors.CodeScoreInvalidThresholds,
					fmt.Sprintf("breakpoint %d: points %d exceed previous %d", i, bp.Points, prevPoints))
			}
		}
		prevMin = bp.Min
		prevPoints = bp.Points
	}
	return nil
}

// Thresholds holds one Ladder per scored dimension.
type Thresholds struct {
	Applications Ladder `mapstructure:"applications" json:"applications" yaml:"applications"`
	Citations    Ladder `mapstructure:"citations" json:"citations" yaml:"citations"`
	Countries    Ladder `mapstructure:"countries" json:"countries" yaml:"countries"`
	Families     Ladder `mapstructure:"families" json:"families" yaml:"families"`
}

// Validate checks every ladder and requires the caps to sum to MaxScore so
// that a maximal dataset scores exactly 100.
func (t Thresholds) Validate() error {
	for _, l := range []struct {
		name   string
		ladder Ladder
	}{
		{"applications", t.Applications},
		{"citations", t.Citations},
		{"countries", t.Countries},
		{"families", t.Families},
	} {
		if err := l.ladder.Validate(); err != nil {
			return errors.Wrap(err, errors.CodeScoreInvalidThresholds,
				fmt.Sprintf("ladder %q invalid", l.name))
		}
	}
	capSum := t.Applications.Cap + t.Citations.Cap + t.Countries.Cap + t.Families.Cap
	if capSum != MaxScore {
		return errors.New(errors.CodeScoreInvalidThresholds,
			fmt.Sprintf("ladder caps must sum to %d, got %d", MaxScore, capSum))
	}
	return nil
}

// IsZero reports whether t carries no configuration at all, so callers can
// fall back to DefaultThresholds.
func (t Thresholds) IsZero() bool {
	return len(t.Applications.Breakpoints) == 0 &&
		len(t.Citations.Breakpoints) == 0 &&
		len(t.Countries.Breakpoints) == 0 &&
		len(t.Families.Breakpoints) == 0
}

// DefaultThresholds returns the ladder configuration calibrated against the
// recorded demonstration run (1,977 applications, 1,900 families, 4,000
// citations, 47 countries scores exactly 100).
func DefaultThresholds() Thresholds {
	return Thresholds{
		Applications: Ladder{
			Cap: 30,
			Breakpoints: []Breakpoint{
				{Min: 1000, Points: 30},
				{Min: 500, Points: 22},
				{Min: 100, Points: 14},
				{Min: 10, Points: 7},
				{Min: 1, Points: 3},
			},
		},
		Citations: Ladder{
			Cap: 30,
			Breakpoints: []Breakpoint{
				{Min: 2000, Points: 30},
				{Min: 1000, Points: 22},
				{Min: 200, Points: 14},
				{Min: 20, Points: 7},
				{Min: 1, Points: 3},
			},
		},
		Countries: Ladder{
			Cap: 20,
			Breakpoints: []Breakpoint{
				{Min: 40, Points: 20},
				{Min: 20, Points: 15},
				{Min: 10, Points: 10},
				{Min: 3, Points: 5},
				{Min: 1, Points: 2},
			},
		},
		Families: Ladder{
			Cap: 20,
			Breakpoints: []Breakpoint{
				{Min: 1000, Points: 20},
				{Min: 500, Points: 15},
				{Min: 100, Points: 10},
				{Min: 10, Points: 5},
				{Min: 1, Points: 2},
			},
		},
	}
}
