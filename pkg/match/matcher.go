// Package match decides which file names and object keys count as photos.
package match

import (
	"errors"
	"path"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPhotoPatterns select JPEG files by exact, case-sensitive suffix.
var DefaultPhotoPatterns = []string{"*.jpg", "*.jpeg"}

// Matcher evaluates glob patterns against the base name of a key or file.
// A name matches when it satisfies at least one include pattern.
//
// The Matcher is safe for concurrent use after creation.
type Matcher struct {
	includes []string
}

// Config configures a Matcher.
type Config struct {
	// Includes are glob patterns that names must match (at least one).
	Includes []string
}

// Errors returned by Matcher operations.
var (
	// ErrNoIncludes is returned when no include patterns are provided.
	ErrNoIncludes = errors.New("at least one include pattern is required")

	// ErrInvalidPattern is returned when a pattern cannot be compiled.
	ErrInvalidPattern = errors.New("invalid glob pattern")
)

// PatternError wraps pattern-related errors with context.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// New creates a new Matcher from the given configuration.
func New(cfg Config) (*Matcher, error) {
	if len(cfg.Includes) == 0 {
		return nil, ErrNoIncludes
	}
	for _, p := range cfg.Includes {
		if !doublestar.ValidatePattern(p) {
			return nil, &PatternError{Pattern: p, Err: ErrInvalidPattern}
		}
	}
	return &Matcher{includes: append([]string(nil), cfg.Includes...)}, nil
}

// Photos returns the matcher for DefaultPhotoPatterns.
func Photos() *Matcher {
	m, err := New(Config{Includes: DefaultPhotoPatterns})
	if err != nil {
		panic(err)
	}
	return m
}

// Match reports whether the base name of key (everything after the last "/")
// satisfies an include pattern. Matching is case-sensitive.
func (m *Matcher) Match(key string) bool {
	name := path.Base(key)
	if name == "." || name == "/" || key == "" || key[len(key)-1] == '/' {
		return false
	}

	for _, inc := range m.includes {
		if matchPattern(inc, name) {
			return true
		}
	}
	return false
}

// matchPattern matches a name against a doublestar pattern.
func matchPattern(pattern, name string) bool {
	matched, err := doublestar.Match(pattern, name)
	if err != nil {
		// Pattern was validated at construction time, so this shouldn't happen
		return false
	}
	return matched
}
