// Package matcher decides which configured commands apply to a file path.
//
// Rules are compiled once, when configuration is resolved, so an invalid glob
// is reported at load time and per-file matching never parses patterns.
//
// A rule set matches a path when any of these hold:
//
//   - the lower-cased basename ends with "." + one of the extensions
//     (multi-part extensions such as "d.ts" work)
//   - the basename equals one of the file names
//   - the path satisfies one of the association globs
//
// Globs use doublestar syntax ("**" spans directories) and are tested both
// against the path relative to the rule set's base directory and against the
// absolute path.
package matcher

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/arthur-debert/execfmt/pkg/errors"
	"github.com/bmatcuk/doublestar/v4"
)

// Options describes the raw rules to compile.
type Options struct {
	Exts         []string
	FileNames    []string
	Associations []string
	// BaseDir anchors relative paths and relative glob matching.
	BaseDir string
	// CaseInsensitive folds case for file names and globs. Defaults to true
	// on Windows via DefaultCaseInsensitive.
	CaseInsensitive bool
}

// DefaultCaseInsensitive reports the platform default for case folding.
func DefaultCaseInsensitive() bool {
	return runtime.GOOS == "windows"
}

// Rules is a compiled, immutable rule set.
type Rules struct {
	exts            []string
	fileNames       []string
	globs           []string
	baseDir         string
	caseInsensitive bool
}

// Compile validates and normalizes the given rules.
func Compile(opts Options) (*Rules, error) {
	r := &Rules{
		baseDir:         opts.BaseDir,
		caseInsensitive: opts.CaseInsensitive,
	}

	for _, ext := range opts.Exts {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		if ext != "" {
			r.exts = append(r.exts, ext)
		}
	}

	for _, name := range opts.FileNames {
		if name == "" {
			continue
		}
		if r.caseInsensitive {
			name = strings.ToLower(name)
		}
		r.fileNames = append(r.fileNames, name)
	}

	for i, pattern := range opts.Associations {
		if pattern == "" {
			continue
		}
		normalized := filepath.ToSlash(pattern)
		if r.caseInsensitive {
			normalized = strings.ToLower(normalized)
		}
		if !doublestar.ValidatePattern(normalized) {
			return nil, errors.Newf(errors.ErrConfigInvalidPattern, "invalid glob pattern %q", pattern).
				WithDetail("pattern", pattern).
				WithDetail("index", i)
		}
		r.globs = append(r.globs, normalized)
	}

	return r, nil
}

// Empty reports whether the rule set can never match.
func (r *Rules) Empty() bool {
	return len(r.exts) == 0 && len(r.fileNames) == 0 && len(r.globs) == 0
}

// Matches reports whether path satisfies any rule.
func (r *Rules) Matches(path string) bool {
	if path == "" {
		return false
	}

	name := filepath.Base(path)
	lower := strings.ToLower(name)
	for _, ext := range r.exts {
		if strings.HasSuffix(lower, "."+ext) {
			return true
		}
	}

	if r.caseInsensitive {
		name = lower
	}
	for _, fileName := range r.fileNames {
		if name == fileName {
			return true
		}
	}

	if len(r.globs) == 0 {
		return false
	}
	for _, candidate := range r.globCandidates(path) {
		for _, pattern := range r.globs {
			if ok, _ := doublestar.Match(pattern, candidate); ok {
				return true
			}
		}
	}
	return false
}

// globCandidates returns the slash-separated forms of path tested against
// association globs: relative to the base dir when below it, then absolute.
func (r *Rules) globCandidates(path string) []string {
	abs := path
	if !filepath.IsAbs(abs) && r.baseDir != "" {
		abs = filepath.Join(r.baseDir, abs)
	}
	abs = filepath.Clean(abs)

	var candidates []string
	if r.baseDir != "" {
		if rel, err := filepath.Rel(r.baseDir, abs); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			candidates = append(candidates, filepath.ToSlash(rel))
		}
	} else if !filepath.IsAbs(path) {
		candidates = append(candidates, filepath.ToSlash(filepath.Clean(path)))
	}

	slashAbs := filepath.ToSlash(abs)
	candidates = append(candidates, slashAbs)
	if trimmed := strings.TrimPrefix(slashAbs, "/"); trimmed != slashAbs {
		candidates = append(candidates, trimmed)
	}

	if r.caseInsensitive {
		for i := range candidates {
			candidates[i] = strings.ToLower(candidates[i])
		}
	}
	return candidates
}

// Matchable is implemented by anything carrying compiled rules.
type Matchable interface {
	MatchRules() *Rules
}

// Match returns every spec whose rules match path, in the order given.
// There is no first-match-wins short-circuit: several matching specs form a
// chain. A nil result means nothing applies.
func Match[T Matchable](path string, specs []T) []T {
	var matched []T
	for _, spec := range specs {
		rules := spec.MatchRules()
		if rules != nil && rules.Matches(path) {
			matched = append(matched, spec)
		}
	}
	return matched
}
