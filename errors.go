package fractal

import (
	"github.com/gogpu/fractal/internal/kernel"
	"github.com/gogpu/fractal/internal/palette"
)

// Errors returned by fractal. Both are matched with errors.Is.
var (
	// ErrInvalidConfiguration reports a view that cannot be rendered:
	// non-positive dimensions, scale or iteration limit, or an unknown
	// variant or palette. Render fails with it before dispatching anything.
	ErrInvalidConfiguration = kernel.ErrInvalidConfiguration

	// ErrUnknownPalette is wrapped together with ErrInvalidConfiguration
	// when a view names a palette that does not exist.
	ErrUnknownPalette = palette.ErrUnknownPalette
)
