package parallel

import (
	"math/bits"
	"sync/atomic"
)

// DirtyRows tracks which image rows changed since a reader last looked,
// using an atomic bitmap with one bit per row.
//
// All methods are safe for concurrent use without external synchronization.
type DirtyRows struct {
	// words is the bitmap; row y is bit y%64 of word y/64.
	words  []atomic.Uint64
	height int
}

// NewDirtyRows creates a tracker for height rows, all clean.
// Returns nil if height is zero or negative.
func NewDirtyRows(height int) *DirtyRows {
	if height <= 0 {
		return nil
	}
	return &DirtyRows{
		words:  make([]atomic.Uint64, (height+63)/64),
		height: height,
	}
}

// Mark marks every row of s that lies inside the image as dirty.
func (d *DirtyRows) Mark(s Span) {
	lo := max(s.Offset, 0)
	hi := min(s.End(), d.height)
	for y := lo; y < hi; {
		w := y / 64
		first := y & 63
		last := min(hi-w*64, 64) // exclusive, within word
		var mask uint64
		if last-first == 64 {
			mask = ^uint64(0)
		} else {
			mask = ((uint64(1) << (last - first)) - 1) << first
		}
		d.words[w].Or(mask)
		y = w*64 + last
	}
}

// MarkAll marks all rows as dirty.
func (d *DirtyRows) MarkAll() {
	d.Mark(Span{Offset: 0, Rows: d.height})
}

// IsEmpty reports whether no row is dirty.
func (d *DirtyRows) IsEmpty() bool {
	for i := range d.words {
		if d.words[i].Load() != 0 {
			return false
		}
	}
	return true
}

// Take atomically clears the bitmap and returns the dirty rows as
// maximal runs in ascending order.
func (d *DirtyRows) Take() []Span {
	var spans []Span
	for wi := range d.words {
		word := d.words[wi].Swap(0)
		for word != 0 {
			start := bits.TrailingZeros64(word)
			run := bits.TrailingZeros64(^(word >> start))
			y := wi*64 + start

			if n := len(spans); n > 0 && spans[n-1].End() == y {
				spans[n-1].Rows += run
			} else {
				spans = append(spans, Span{Offset: y, Rows: run})
			}

			if start+run == 64 {
				break
			}
			word &^= ((uint64(1) << run) - 1) << start
		}
	}
	return spans
}
