// Package fonts finds HUD font files by family name under the assets tree.
package fonts

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Exts are the font file extensions raylib can load.
var Exts = []string{".ttf", ".otf"}

// ErrNotFound is returned when no font file matches.
var ErrNotFound = errors.New("fonts: no matching font")

// Dirs returns the directories searched for assetsDir, in order.
func Dirs(assetsDir string) []string {
	if assetsDir == "" {
		assetsDir = "assets"
	}
	return []string{filepath.Join(assetsDir, "fonts"), filepath.Join("..", "..", assetsDir, "fonts")}
}

// ScanDir returns relative paths of all font files under dir (e.g. "Inter/Inter-Regular.ttf"),
// sorted, with forward slashes. A missing dir yields no paths and no error.
func ScanDir(dir string) ([]string, error) {
	var out []string
	dir = filepath.Clean(dir)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || !isFont(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(out)
	return out, err
}

func isFont(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Exts {
		if ext == e {
			return true
		}
	}
	return false
}

// normalize lowercases and removes spaces, dashes, and underscores for fuzzy matching.
func normalize(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(s))
}

// Find returns the first file under dirs whose relative path contains the family name, ignoring
// case, spaces, dashes and underscores. A "Regular" cut wins over other matches. An existing file
// path is returned as is.
func Find(family string, dirs []string) (string, error) {
	if st, err := os.Stat(family); err == nil && !st.IsDir() && isFont(family) {
		return family, nil
	}
	norm := normalize(strings.TrimSuffix(family, filepath.Ext(family)))
	if norm == "" {
		return "", ErrNotFound
	}
	var matches []string
	for _, dir := range dirs {
		list, err := ScanDir(dir)
		if err != nil {
			continue
		}
		for _, rel := range list {
			if strings.Contains(normalize(rel), norm) {
				matches = append(matches, filepath.Join(dir, filepath.FromSlash(rel)))
			}
		}
	}
	if len(matches) == 0 {
		return "", ErrNotFound
	}
	for _, m := range matches {
		if strings.Contains(strings.ToLower(filepath.Base(m)), "regular") {
			return m, nil
		}
	}
	return matches[0], nil
}
