// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import (
	"fmt"

	"github.com/woozymasta/pathrules"
)

// selectMatcher holds compiled include/exclude rules for extraction.
// A nil matcher selects everything: no rules means restore all.
type selectMatcher struct {
	matcher *pathrules.Matcher
}

// newSelectMatcher compiles extraction path rules.
func newSelectMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*selectMatcher, error) {
	rules = normalizeSelectRules(rules)
	if len(rules) == 0 {
		return nil, nil
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidSelectRules, err)
	}

	return &selectMatcher{matcher: matcher}, nil
}

// normalizeSelectRules normalizes rule patterns and drops empty patterns.
func normalizeSelectRules(rules []pathrules.Rule) []pathrules.Rule {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := normalizePathForMatching(rule.Pattern)
		if pattern == "" {
			continue
		}

		normalized = append(normalized, pathrules.Rule{
			Action:  rule.Action,
			Pattern: pattern,
		})
	}

	return normalized
}

// Match reports whether one full path is selected.
func (m *selectMatcher) Match(path string) bool {
	if m == nil || m.matcher == nil {
		return true
	}

	candidate := NormalizePath(path)
	if candidate == "" {
		return false
	}

	return m.matcher.Included(candidate, false)
}

// selectEntries narrows the file entry set by the DOS wildcard on final
// name segments and the rule matcher on full paths. Directories are
// never selected; their creation is driven by the files under them.
func selectEntries(entries []*Entry, opts *ExtractOptions) ([]*Entry, error) {
	var w *Wildcard
	if opts.Pattern != "" {
		compiled, err := CompileWildcard(opts.Pattern)
		if err != nil {
			return nil, err
		}
		w = compiled
	}

	matcher, err := newSelectMatcher(opts.Select, opts.SelectMatcherOptions)
	if err != nil {
		return nil, err
	}

	out := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if w != nil && !w.Match(e.Name) {
			continue
		}
		if !matcher.Match(e.Path) {
			continue
		}

		out = append(out, e)
	}

	return out, nil
}
