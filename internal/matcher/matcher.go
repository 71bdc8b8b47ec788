// Package matcher matches object names against glob and regex patterns.
package matcher

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []). '*' does not cross '/'.
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Auto detects the pattern type.
	Auto
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Matcher reports whether an input matches one compiled pattern.
type Matcher struct {
	pattern     string
	patternType PatternType
	compiled    *regexp.Regexp
}

// New compiles pattern. Auto treats patterns containing regex-only
// metacharacters as regex and everything else as glob.
func New(patternType PatternType, pattern string) (*Matcher, error) {
	if patternType == Auto {
		patternType = detectPatternType(pattern)
	}

	m := &Matcher{pattern: pattern, patternType: patternType}
	switch patternType {
	case Glob:
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
	case Regex:
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		m.compiled = compiled
	default:
		return nil, fmt.Errorf("unsupported pattern type: %v", patternType)
	}
	return m, nil
}

// Match checks if the input matches the pattern.
func (m *Matcher) Match(input string) bool {
	if m.patternType == Regex {
		return m.compiled.MatchString(input)
	}
	matched, _ := path.Match(m.pattern, input)
	return matched
}

// Pattern returns the original pattern string.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// Type returns the pattern type being used.
func (m *Matcher) Type() PatternType {
	return m.patternType
}

// detectPatternType attempts to detect if a pattern is glob or regex.
func detectPatternType(pattern string) PatternType {
	for _, indicator := range []string{
		"^", "$", "\\d", "\\w", "\\s", "(?", "{", "}", "+", "|", "(", ")",
	} {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}

// Filter selects names by include and exclude patterns. A name is selected
// when it matches at least one include pattern (or there are none) and no
// exclude pattern.
type Filter struct {
	include []*Matcher
	exclude []*Matcher
}

// NewFilter compiles include and exclude patterns with Auto detection.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	var err error
	if f.include, err = compileAll(include); err != nil {
		return nil, err
	}
	if f.exclude, err = compileAll(exclude); err != nil {
		return nil, err
	}
	return f, nil
}

func compileAll(patterns []string) ([]*Matcher, error) {
	matchers := make([]*Matcher, 0, len(patterns))
	for _, p := range patterns {
		m, err := New(Auto, p)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}

// Empty reports whether the filter selects every name.
func (f *Filter) Empty() bool {
	return f == nil || (len(f.include) == 0 && len(f.exclude) == 0)
}

// Match reports whether name is selected.
func (f *Filter) Match(name string) bool {
	if f.Empty() {
		return true
	}
	for _, m := range f.exclude {
		if m.Match(name) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, m := range f.include {
		if m.Match(name) {
			return true
		}
	}
	return false
}
