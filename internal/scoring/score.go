// Package scoring implements the quiz score, result bands, impact projections
// and the streak/badge rules. Everything here is pure: no I/O, no shared state.
package scoring

import (
	"fmt"

	"github.com/ecostep/ecostep/internal/errs"
)

// Category is one of the fixed quiz questions.
type Category string

// Quiz categories in questionnaire order.
const (
	Transport   Category = "transport"
	Bottles     Category = "bottles"
	Food        Category = "food"
	Electricity Category = "electricity"
	Recycle     Category = "recycle"
)

// Categories lists every category in questionnaire order.
var Categories = []Category{Transport, Bottles, Food, Electricity, Recycle}

const (
	// MaxPerCategory is the worst (highest) value a single answer can take.
	MaxPerCategory = 3
	// MaxScore is the maximum attainable quiz total.
	MaxScore = MaxPerCategory * 5
)

// Answers maps each category to its chosen value. A missing key is unanswered.
type Answers map[Category]int

// ComputeScore sums the five category values. Keys outside Categories are ignored.
func ComputeScore(a Answers) (int, error) {
	total := 0
	for _, c := range Categories {
		v, ok := a[c]
		if !ok {
			return 0, fmt.Errorf("%w: %s", errs.ErrIncompleteAnswer, c)
		}
		if v < 0 || v > MaxPerCategory {
			return 0, fmt.Errorf("%w: %s=%d", errs.ErrAnswerOutOfRange, c, v)
		}
		total += v
	}
	return total, nil
}

// Breakdown returns the per-category sub-scores keyed by category name, the
// form stored on a Result.
func (a Answers) Breakdown() map[string]int {
	out := make(map[string]int, len(Categories))
	for _, c := range Categories {
		if v, ok := a[c]; ok {
			out[string(c)] = v
		}
	}
	return out
}

// ParseCategory maps a name to a known category.
func ParseCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

// scaled maps a reference threshold defined at MaxScore onto outOf.
func scaled(ref, outOf int) int {
	if outOf <= 0 {
		outOf = MaxScore
	}
	return ref * outOf / MaxScore
}
