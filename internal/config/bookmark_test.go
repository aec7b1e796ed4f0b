package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/gogpu/fractal"
)

func TestBookmark_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.json")

	view := fractal.ViewState{
		Variant:  fractal.Julia,
		CenterRe: -0.123456789012345,
		CenterIm: 0.987654321,
		Scale:    1e-7,
		C:        complex(-0.8, 0.156),
		MaxIter:  900,
		Palette:  "magic",
		Width:    640,
		Height:   480,
	}
	if err := SaveBookmark(path, "spiral", view); err != nil {
		t.Fatal(err)
	}

	got, err := LoadBookmark(path, "spiral")
	if err != nil {
		t.Fatal(err)
	}
	if got != view {
		t.Errorf("LoadBookmark() = %+v, want %+v", got, view)
	}
}

func TestBookmark_KeepsOtherContent(t *testing.T) {
	path := writeFile(t, `{"view": {"palette": "hot"}, "bookmarks": {"home": {"variant": "newton3"}}}`)

	if err := SaveBookmark(path, "deep", fractal.DefaultView()); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.View.Palette != "hot" {
		t.Errorf("view.palette = %q, want hot", c.View.Palette)
	}

	names, err := Bookmarks(path)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(names, []string{"deep", "home"}) {
		t.Errorf("Bookmarks() = %v", names)
	}

	home, err := LoadBookmark(path, "home")
	if err != nil {
		t.Fatal(err)
	}
	if home.Variant != fractal.Newton3 {
		t.Errorf("home variant = %v", home.Variant)
	}
}

func TestBookmark_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.json")
	first := fractal.DefaultView()
	second := fractal.DefaultView()
	second.Scale = 0.01

	if err := SaveBookmark(path, "x", first); err != nil {
		t.Fatal(err)
	}
	if err := SaveBookmark(path, "x", second); err != nil {
		t.Fatal(err)
	}
	got, err := LoadBookmark(path, "x")
	if err != nil {
		t.Fatal(err)
	}
	if got != second {
		t.Errorf("LoadBookmark() = %+v, want %+v", got, second)
	}
}

func TestBookmark_Errors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "b.json")

	if err := SaveBookmark(path, "a.b", fractal.DefaultView()); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("dotted name error = %v", err)
	}
	if err := SaveBookmark(path, "", fractal.DefaultView()); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("empty name error = %v", err)
	}

	bad := fractal.DefaultView()
	bad.MaxIter = 0
	if err := SaveBookmark(path, "bad", bad); !errors.Is(err, fractal.ErrInvalidConfiguration) {
		t.Errorf("invalid view error = %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("failed saves created the file")
	}

	if _, err := LoadBookmark(path, "x"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}

	if err := SaveBookmark(path, "one", fractal.DefaultView()); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadBookmark(path, "two"); !errors.Is(err, ErrBookmarkNotFound) {
		t.Errorf("missing bookmark error = %v", err)
	}

	corrupt := writeFile(t, `{"bookmarks": `)
	if err := SaveBookmark(corrupt, "x", fractal.DefaultView()); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("corrupt file error = %v", err)
	}
}
