package walker

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PagePattern selects the files rendered as pages.
const PagePattern = "**/*.html"

// Directories that never hold publishable site files. Dot directories are
// skipped too, except .well-known which hosts verification files.
var ignoredDirs = []string{"node_modules", ".sitecms", "dist"}

// Editor and OS leftovers that must not reach a build.
var ignoredFiles = []string{"*~", "*.swp", "*.tmp", "Thumbs.db"}

// filter decides which files of a templates directory belong to the site.
type filter struct {
	include []string
	exclude []string
}

func newFilter(include, exclude []string) (filter, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return filter{}, fmt.Errorf("walker: invalid pattern %q", p)
		}
	}
	return filter{include: include, exclude: exclude}, nil
}

func (f filter) skipDir(name string) bool {
	if name == ".well-known" {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, d := range ignoredDirs {
		if strings.EqualFold(name, d) {
			return true
		}
	}
	return false
}

// keep reports whether the slash-separated rel belongs in the build.
func (f filter) keep(rel string) bool {
	base := path.Base(rel)
	if strings.HasPrefix(base, ".") {
		return false
	}
	for _, p := range ignoredFiles {
		if ok, _ := doublestar.Match(p, base); ok {
			return false
		}
	}
	if len(f.include) > 0 && !matchesAny(rel, f.include) {
		return false
	}
	return !matchesAny(rel, f.exclude)
}

// Classify reports whether rel is a page to render or an asset to copy.
func Classify(rel string) Kind {
	if ok, err := doublestar.Match(PagePattern, rel); err == nil && ok {
		return KindPage
	}
	return KindAsset
}

// matchesAny matches rel, or its base name for patterns without a slash.
func matchesAny(rel string, patterns []string) bool {
	for _, p := range patterns {
		target := rel
		if !strings.Contains(p, "/") {
			target = path.Base(rel)
		}
		if ok, _ := doublestar.Match(p, target); ok {
			return true
		}
	}
	return false
}
