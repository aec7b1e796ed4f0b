// Package config loads the settings of the fractal commands.
//
// Settings come from a JSON file and are overridden by FRACTAL_*
// environment variables. The same file stores named view bookmarks:
//
//	{
//	  "view": {
//	    "variant": "mandelbrot",
//	    "center": {"re": -0.75, "im": 0},
//	    "scale": 1.3,
//	    "c": {"re": -0.7588, "im": 0.079},
//	    "maxIter": 100,
//	    "palette": "gray",
//	    "width": 500,
//	    "height": 500
//	  },
//	  "renderer": {"workers": 0, "maxBands": 16, "leftover": "second-to-last"},
//	  "logging": {"level": "info"},
//	  "bookmarks": {"seahorse": {"variant": "mandelbrot", ...}}
//	}
//
// Missing keys keep their defaults.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"math"
	"os"

	"github.com/tidwall/gjson"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/internal/parallel"
)

// ViewSettings is the JSON form of a fractal.ViewState.
type ViewSettings struct {
	Variant  string
	CenterRe float64
	CenterIm float64
	Scale    float64
	CRe, CIm float64
	MaxIter  int
	Palette  string
	Width    int
	Height   int
}

// Config holds the command settings.
type Config struct {
	View     ViewSettings
	Workers  int    // 0 means GOMAXPROCS
	MaxBands int    // 1..16
	Leftover string // "second-to-last" or "last"
	LogLevel string // debug, info, warn or error
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		View:     FromViewState(fractal.DefaultView()),
		MaxBands: parallel.MaxBands,
		Leftover: parallel.LeftoverSecondToLast.String(),
		LogLevel: "info",
	}
}

// FromViewState converts a view into its settings form.
func FromViewState(v fractal.ViewState) ViewSettings {
	return ViewSettings{
		Variant:  v.Variant.String(),
		CenterRe: v.CenterRe,
		CenterIm: v.CenterIm,
		Scale:    v.Scale,
		CRe:      real(v.C),
		CIm:      imag(v.C),
		MaxIter:  v.MaxIter,
		Palette:  v.Palette,
		Width:    v.Width,
		Height:   v.Height,
	}
}

// Load reads the file at path and applies environment overrides.
// An empty path loads the defaults plus overrides.
func Load(path string) (Config, error) {
	doc := []byte("{}")
	if path != "" {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, &ParseError{Path: path, Message: "no such file", Err: ErrFileNotFound}
		}
		if err != nil {
			return Config{}, err
		}
		doc = data
	}
	if !gjson.ValidBytes(doc) {
		return Config{}, &ParseError{Path: path, Message: "invalid JSON", Err: ErrInvalidValue}
	}

	doc, err := applyEnv(doc)
	if err != nil {
		return Config{}, err
	}
	return decode(doc)
}

// Parse decodes settings from JSON data without environment overrides.
func Parse(data []byte) (Config, error) {
	if !gjson.ValidBytes(data) {
		return Config{}, &ParseError{Message: "invalid JSON", Err: ErrInvalidValue}
	}
	return decode(data)
}

func decode(doc []byte) (Config, error) {
	root := gjson.ParseBytes(doc)
	c := Default()

	view, err := decodeView(root.Get("view"))
	if err != nil {
		return Config{}, err
	}
	c.View = view

	r := root.Get("renderer")
	if err := getInt(r, "workers", "renderer.workers", &c.Workers); err != nil {
		return Config{}, err
	}
	if err := getInt(r, "maxBands", "renderer.maxBands", &c.MaxBands); err != nil {
		return Config{}, err
	}
	if err := getString(r, "leftover", "renderer.leftover", &c.Leftover); err != nil {
		return Config{}, err
	}
	if err := getString(root, "logging.level", "logging.level", &c.LogLevel); err != nil {
		return Config{}, err
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// decodeView reads a view object. Unset fields take the defaults of the
// object's variant, so {"variant": "julia"} yields the Julia explorer view.
func decodeView(obj gjson.Result) (ViewSettings, error) {
	base := fractal.DefaultView()

	var name string
	if err := getString(obj, "variant", "view.variant", &name); err != nil {
		return ViewSettings{}, err
	}
	if name != "" {
		variant, err := fractal.ParseVariant(name)
		if err != nil {
			return ViewSettings{}, invalid("view.variant", "%q", name)
		}
		if variant == fractal.Julia {
			base = fractal.DefaultJuliaView()
		}
		base.Variant = variant
	}

	v := FromViewState(base)
	fields := []error{
		getFloat(obj, "center.re", "view.center.re", &v.CenterRe),
		getFloat(obj, "center.im", "view.center.im", &v.CenterIm),
		getFloat(obj, "scale", "view.scale", &v.Scale),
		getFloat(obj, "c.re", "view.c.re", &v.CRe),
		getFloat(obj, "c.im", "view.c.im", &v.CIm),
		getInt(obj, "maxIter", "view.maxIter", &v.MaxIter),
		getString(obj, "palette", "view.palette", &v.Palette),
		getInt(obj, "width", "view.width", &v.Width),
		getInt(obj, "height", "view.height", &v.Height),
	}
	if err := errors.Join(fields...); err != nil {
		return ViewSettings{}, err
	}
	return v, nil
}

func getString(obj gjson.Result, key, path string, dst *string) error {
	r := obj.Get(key)
	if !r.Exists() {
		return nil
	}
	if r.Type != gjson.String {
		return invalid(path, "want a string, got %s", r.Type)
	}
	*dst = r.Str
	return nil
}

func getFloat(obj gjson.Result, key, path string, dst *float64) error {
	r := obj.Get(key)
	if !r.Exists() {
		return nil
	}
	if r.Type != gjson.Number {
		return invalid(path, "want a number, got %s", r.Type)
	}
	*dst = r.Num
	return nil
}

func getInt(obj gjson.Result, key, path string, dst *int) error {
	r := obj.Get(key)
	if !r.Exists() {
		return nil
	}
	if r.Type != gjson.Number || r.Num != math.Trunc(r.Num) {
		return invalid(path, "want an integer, got %s", r.Raw)
	}
	*dst = int(r.Int())
	return nil
}

// Validate checks the renderer and logging settings. The view is checked
// by ViewState.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return invalid("renderer.workers", "%d is negative", c.Workers)
	}
	if c.MaxBands < 1 || c.MaxBands > parallel.MaxBands {
		return invalid("renderer.maxBands", "%d is outside 1..%d", c.MaxBands, parallel.MaxBands)
	}
	if _, err := parallel.ParseLeftoverMode(c.Leftover); err != nil {
		return invalid("renderer.leftover", "%q", c.Leftover)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// ViewState returns the configured view, validated.
func (c Config) ViewState() (fractal.ViewState, error) {
	return c.View.ViewState()
}

// ViewState converts the settings into a validated view.
func (s ViewSettings) ViewState() (fractal.ViewState, error) {
	variant, err := fractal.ParseVariant(s.Variant)
	if err != nil {
		return fractal.ViewState{}, err
	}
	v := fractal.ViewState{
		Variant:  variant,
		CenterRe: s.CenterRe,
		CenterIm: s.CenterIm,
		Scale:    s.Scale,
		C:        complex(s.CRe, s.CIm),
		MaxIter:  s.MaxIter,
		Palette:  s.Palette,
		Width:    s.Width,
		Height:   s.Height,
	}
	if err := v.Validate(); err != nil {
		return fractal.ViewState{}, err
	}
	return v, nil
}

// RendererOptions returns the renderer options for the settings.
func (c Config) RendererOptions() ([]fractal.Option, error) {
	mode, err := parallel.ParseLeftoverMode(c.Leftover)
	if err != nil {
		return nil, invalid("renderer.leftover", "%q", c.Leftover)
	}
	return []fractal.Option{
		fractal.WithWorkers(c.Workers),
		fractal.WithMaxBands(c.MaxBands),
		fractal.WithLeftoverMode(mode),
	}, nil
}

// SlogLevel parses the log level. An empty level means info.
func (c Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, invalid("logging.level", "%q", c.LogLevel)
	}
	return l, nil
}
