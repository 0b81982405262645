package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// Options captures the record filtering configuration.
type Options struct {
	IncludeSender []string
	IncludeText   []string
	ExcludeSender []string
	ExcludeText   []string
}

// Filter holds compiled regex patterns applied to assembled records before
// they reach the store.
type Filter struct {
	includeMode   bool
	excludeMode   bool
	includeSender []*regexp.Regexp
	includeText   []*regexp.Regexp
	excludeSender []*regexp.Regexp
	excludeText   []*regexp.Regexp
}

// New creates a new Filter from the provided options.
func New(opts Options) (*Filter, error) {
	includeSender, err := compilePatterns(opts.IncludeSender)
	if err != nil {
		return nil, fmt.Errorf("compile include-sender pattern: %w", err)
	}
	includeText, err := compilePatterns(opts.IncludeText)
	if err != nil {
		return nil, fmt.Errorf("compile include-text pattern: %w", err)
	}
	excludeSender, err := compilePatterns(opts.ExcludeSender)
	if err != nil {
		return nil, fmt.Errorf("compile exclude-sender pattern: %w", err)
	}
	excludeText, err := compilePatterns(opts.ExcludeText)
	if err != nil {
		return nil, fmt.Errorf("compile exclude-text pattern: %w", err)
	}

	includeActive := len(includeSender) > 0 || len(includeText) > 0
	excludeActive := len(excludeSender) > 0 || len(excludeText) > 0
	if includeActive && excludeActive {
		return nil, fmt.Errorf("include and exclude filters are mutually exclusive")
	}

	return &Filter{
		includeMode:   includeActive,
		excludeMode:   excludeActive,
		includeSender: includeSender,
		includeText:   includeText,
		excludeSender: excludeSender,
		excludeText:   excludeText,
	}, nil
}

// Allows returns true if the record passes the filter criteria.
func (f *Filter) Allows(sender, text string) bool {
	if f.includeMode {
		return matchAny(f.includeSender, sender) || matchAny(f.includeText, text)
	}

	if f.excludeMode {
		if matchAny(f.excludeSender, sender) || matchAny(f.excludeText, text) {
			return false
		}
	}

	return true
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	if len(patterns) == 0 {
		return false
	}
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
