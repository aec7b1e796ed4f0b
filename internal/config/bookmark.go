package config

import (
	"errors"
	"io/fs"
	"os"
	"slices"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/gogpu/fractal"
)

// validBookmarkName reports whether name can be used as a single gjson
// path component.
func validBookmarkName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// SaveBookmark stores view under bookmarks.<name> in the JSON file at
// path, creating the file if needed. Other content of the file is kept.
func SaveBookmark(path, name string, view fractal.ViewState) error {
	if !validBookmarkName(name) {
		return invalid("bookmarks", "bad name %q", name)
	}
	if err := view.Validate(); err != nil {
		return err
	}

	doc, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		doc = []byte("{}")
	case err != nil:
		return err
	case !gjson.ValidBytes(doc):
		return &ParseError{Path: path, Message: "invalid JSON", Err: ErrInvalidValue}
	}

	s := FromViewState(view)
	prefix := "bookmarks." + name + "."
	fields := []struct {
		key string
		val any
	}{
		{"variant", s.Variant},
		{"center.re", s.CenterRe},
		{"center.im", s.CenterIm},
		{"scale", s.Scale},
		{"c.re", s.CRe},
		{"c.im", s.CIm},
		{"maxIter", s.MaxIter},
		{"palette", s.Palette},
		{"width", s.Width},
		{"height", s.Height},
	}
	for _, f := range fields {
		doc, err = sjson.SetBytes(doc, prefix+f.key, f.val)
		if err != nil {
			return err
		}
	}

	return os.WriteFile(path, pretty.Pretty(doc), 0o644)
}

// LoadBookmark reads the bookmark called name from the JSON file at path.
func LoadBookmark(path, name string) (fractal.ViewState, error) {
	doc, err := readDoc(path)
	if err != nil {
		return fractal.ViewState{}, err
	}
	if !validBookmarkName(name) {
		return fractal.ViewState{}, invalid("bookmarks", "bad name %q", name)
	}

	obj := gjson.GetBytes(doc, "bookmarks."+name)
	if !obj.Exists() {
		return fractal.ViewState{}, &ParseError{Path: path, Message: "no bookmark " + name, Err: ErrBookmarkNotFound}
	}
	s, err := decodeView(obj)
	if err != nil {
		return fractal.ViewState{}, err
	}
	return s.ViewState()
}

// Bookmarks returns the sorted bookmark names in the file at path.
func Bookmarks(path string) ([]string, error) {
	doc, err := readDoc(path)
	if err != nil {
		return nil, err
	}
	var names []string
	gjson.GetBytes(doc, "bookmarks").ForEach(func(key, _ gjson.Result) bool {
		names = append(names, key.String())
		return true
	})
	slices.Sort(names)
	return names, nil
}

func readDoc(path string) ([]byte, error) {
	doc, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &ParseError{Path: path, Message: "no such file", Err: ErrFileNotFound}
	}
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(doc) {
		return nil, &ParseError{Path: path, Message: "invalid JSON", Err: ErrInvalidValue}
	}
	return doc, nil
}
