// Package palette provides the named 256-entry colour ramps used to map
// normalised iteration counts to RGB.
//
// Every family is defined by a formula over x = index/255. The raw channel
// values are clamped to [0,1], scaled by 255 and rounded to the nearest
// integer. All tables are built once in init and never modified afterwards,
// so a *Palette returned by Lookup may be shared freely between goroutines.
package palette

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/cases"
)

// Size is the number of entries in every palette.
const Size = 256

// depth is the largest palette index.
const depth = Size - 1

// ErrUnknownPalette is returned for a family name that is not in the table.
var ErrUnknownPalette = errors.New("palette: unknown palette")

// RGB is a single palette entry.
type RGB [3]uint8

// Palette is an immutable named colour ramp.
type Palette struct {
	Name   string
	Colors [Size]RGB
}

// At returns the colour for intensity v.
func (p *Palette) At(v uint8) RGB {
	return p.Colors[v]
}

// names is the ordered list of families. The position of a name is
// significant: Newton root k is highlighted with names[k], so red2..purple2
// must stay at indices 1..5.
var names = []string{
	"gray",
	"red2",
	"green2",
	"blue2",
	"yellow2",
	"purple2",
	"red",
	"green",
	"blue",
	"yellow",
	"purple",
	"orange",
	"cyan",
	"brown",
	"magic",
	"pink",
	"jet",
	"hot",
	"hsv",
}

// table holds the shared instances, keyed by name.
var table map[string]*Palette

// folder normalises user supplied names ("Gray", "GRAY" -> "gray").
var folder = cases.Fold()

func init() {
	table = make(map[string]*Palette, len(names))
	for _, name := range names {
		p, err := Build(name)
		if err != nil {
			panic(err)
		}
		table[name] = p
	}
}

// Names returns the ordered family names.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Normalize folds case and trims surrounding space.
func Normalize(name string) string {
	return folder.String(strings.TrimSpace(name))
}

// Lookup returns the shared palette for name.
func Lookup(name string) (*Palette, error) {
	p, ok := table[Normalize(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPalette, name)
	}
	return p, nil
}

// ForRoot returns the palette that highlights Newton root k (1-based).
// It returns nil for k outside the table.
func ForRoot(k uint8) *Palette {
	if k == 0 || int(k) >= len(names) {
		return nil
	}
	return table[names[k]]
}

// Build computes the table for name. It is deterministic and does not
// consult the shared table, so two calls yield identical palettes.
func Build(name string) (*Palette, error) {
	name = Normalize(name)
	ramp, ok := ramps[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPalette, name)
	}

	p := &Palette{Name: name}
	for i := 0; i < Size; i++ {
		r, g, b := ramp(float64(i) / depth)
		p.Colors[i] = RGB{constrain(r), constrain(g), constrain(b)}
	}
	return p, nil
}

// constrain clamps v to [0,1] and scales it to a byte.
func constrain(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return depth
	}
	return uint8(math.Round(v * depth))
}

// ramp maps x in [0,1] to raw, unclamped channel values.
type ramp func(x float64) (r, g, b float64)

var ramps = map[string]ramp{
	"gray": func(x float64) (float64, float64, float64) {
		return x, x, x
	},
	"red2": func(x float64) (float64, float64, float64) {
		return (1 - x) * 1.5, (0.4 - x) * 1.8, (0.4 - x) * 1.2
	},
	"green2": func(x float64) (float64, float64, float64) {
		return (0.3 - x) * 2.5, 1 - x, (0.2 - x) * 3
	},
	"blue2": func(x float64) (float64, float64, float64) {
		return 0.4 - x, (0.5 - x) * 2, (1 - x) * 2
	},
	"yellow2": func(x float64) (float64, float64, float64) {
		return (1 - x) * 2, 1 - x, (0.2 - x) * 4
	},
	"purple2": func(x float64) (float64, float64, float64) {
		return (0.9 - x) * 1.4, (0.3 - x) * 2.5, (1 - x) * 1.4
	},
	"red": func(x float64) (float64, float64, float64) {
		return x * 3, (x - 0.25) * 2, (x - 0.5) * 2
	},
	"green": func(x float64) (float64, float64, float64) {
		return (x - 0.25) * 2, x * 2.2, (x - 0.5) * 2
	},
	"blue": func(x float64) (float64, float64, float64) {
		return (x - 0.5) * 2, (x - 0.12) * 2, x * 3
	},
	"yellow": func(x float64) (float64, float64, float64) {
		return x * 2.5, x * 2, (x - 0.5) * 2
	},
	"purple": func(x float64) (float64, float64, float64) {
		return x * 2, (x - 0.25) * 2, x * 2
	},
	"orange": func(x float64) (float64, float64, float64) {
		return x * 3, x * 1.5, (x - 0.5) * 2
	},
	"cyan": func(x float64) (float64, float64, float64) {
		return (x - 0.25) * 2, x * 2.3, x * 2.3
	},
	"brown": func(x float64) (float64, float64, float64) {
		return x * 2, x, (x - 0.25) * 1.4
	},
	"magic": func(x float64) (float64, float64, float64) {
		return x * 3, (x - 0.25) * 3, x
	},
	"pink": pink,
	"jet": func(x float64) (float64, float64, float64) {
		return 1.1 * math.Sin((x-96)/60), 1.1 * math.Sin((x-32)/60), 1.1 * math.Sin((x+32)/60)
	},
	"hot": func(x float64) (float64, float64, float64) {
		return x / 26, (x - 0.12) / 26, (x - 0.2) / 13
	},
	"hsv": func(x float64) (float64, float64, float64) {
		// Hue stops short of 360 so the top of the ramp does not wrap to red.
		c := colorful.Hsv(330*x, 0.85, x)
		return c.R, c.G, c.B
	},
}

// pink selects between square-root ramps piecewise.
func pink(x float64) (r, g, b float64) {
	s := math.Sqrt(x)
	c1 := s / 6.4
	c2 := s / 9.7
	c3 := s/11 + 0.28
	c4 := s/5 - 0.46
	c5 := s/3.5 - 1.265

	r = min(c1, c3)

	switch {
	case c2 > c4:
		g = c2
	case c4 < c3:
		g = c4
	default:
		g = c3
	}

	b = max(c2, c5)
	return r, g, b
}
