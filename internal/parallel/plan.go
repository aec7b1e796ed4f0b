// Package parallel splits an image into row bands and runs band tasks on a
// work-stealing goroutine pool.
//
// The planner keeps the work per band near a fixed pixel budget
// (PixelsPerBand) and caps the band count at MaxBands.
package parallel

import (
	"errors"
	"fmt"
)

const (
	// PixelsPerBand is the target pixel budget of one band.
	PixelsPerBand = 500000

	// MaxBands is the default upper bound on bands per render.
	MaxBands = 16
)

// ErrBadPartition is returned by Validate when spans do not tile the image.
var ErrBadPartition = errors.New("parallel: spans do not partition the image")

// LeftoverMode selects which band absorbs the rows left over after the
// even split.
type LeftoverMode uint8

const (
	// LeftoverSecondToLast gives the leftover rows to the second-to-last
	// band. This is the historical behaviour and the default.
	LeftoverSecondToLast LeftoverMode = iota

	// LeftoverLast gives the leftover rows to the last band.
	LeftoverLast
)

// String returns the mode name.
func (m LeftoverMode) String() string {
	switch m {
	case LeftoverSecondToLast:
		return "second-to-last"
	case LeftoverLast:
		return "last"
	default:
		return fmt.Sprintf("LeftoverMode(%d)", m)
	}
}

// ParseLeftoverMode accepts the names returned by String.
func ParseLeftoverMode(s string) (LeftoverMode, error) {
	switch s {
	case "", "second-to-last":
		return LeftoverSecondToLast, nil
	case "last":
		return LeftoverLast, nil
	}
	return 0, fmt.Errorf("parallel: unknown leftover mode %q", s)
}

// Span is a contiguous range of image rows assigned to one band.
type Span struct {
	Offset int
	Rows   int
}

// End returns the first row after the span.
func (s Span) End() int {
	return s.Offset + s.Rows
}

// BandCount returns how many bands a width x height image is split into:
// ceil(width*height / budget), capped at maxBands and at height so no band
// is empty. A non-positive maxBands means MaxBands and a non-positive
// budget means PixelsPerBand. It returns 0 for an empty image.
//
// The height cap departs from the plain ceil/min rule on very wide, short
// images: 2000000x1 gets one band rather than four bands of which three
// have no rows.
func BandCount(width, height, maxBands, budget int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	if maxBands <= 0 {
		maxBands = MaxBands
	}
	if budget <= 0 {
		budget = PixelsPerBand
	}

	pixels := width * height
	count := (pixels + budget - 1) / budget
	return min(count, maxBands, height)
}

// Plan splits [0, height) into ordered, contiguous spans using the
// default pixel budget.
func Plan(width, height, maxBands int, mode LeftoverMode) []Span {
	return PlanBudget(width, height, maxBands, PixelsPerBand, mode)
}

// PlanBudget is Plan with an explicit pixel budget per band.
//
// Every band gets floor(height/count) rows; the remainder goes to the band
// selected by mode. Offsets are cumulative, so the spans never overlap.
func PlanBudget(width, height, maxBands, budget int, mode LeftoverMode) []Span {
	count := BandCount(width, height, maxBands, budget)
	if count == 0 {
		return nil
	}

	base := height / count
	rest := height - base*count

	extra := count - 1
	if mode == LeftoverSecondToLast && count > 1 {
		extra = count - 2
	}

	spans := make([]Span, count)
	offset := 0
	for i := range spans {
		rows := base
		if i == extra {
			rows += rest
		}
		spans[i] = Span{Offset: offset, Rows: rows}
		offset += rows
	}
	return spans
}

// Validate checks that spans cover [0, height) exactly, in order, with no
// gaps, overlaps or empty spans.
func Validate(spans []Span, height int) error {
	next := 0
	for i, s := range spans {
		if s.Rows <= 0 {
			return fmt.Errorf("%w: span %d is empty", ErrBadPartition, i)
		}
		if s.Offset != next {
			return fmt.Errorf("%w: span %d starts at %d, want %d", ErrBadPartition, i, s.Offset, next)
		}
		next = s.End()
	}
	if next != height {
		return fmt.Errorf("%w: spans end at %d, want %d", ErrBadPartition, next, height)
	}
	return nil
}
