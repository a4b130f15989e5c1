package selector

import (
	"fmt"
	"strings"

	"github.com/woozymasta/pathrules"
	"go.uber.org/zap"
)

// Policy decides how a list of patterns combines into one membership decision.
type Policy string

const (
	// PolicyOverride prepends an implicit select-all pattern; every matching
	// pattern then sets (include) or clears (exclude) the file's flag, so the
	// last matching pattern wins.
	PolicyOverride Policy = "override"
	// PolicyIntersection keeps a file only when every pattern is satisfied:
	// plain patterns by a match, negated patterns by a non-match.
	PolicyIntersection Policy = "intersection"
)

// SelectAll is the implicit first pattern of the override policy.
const SelectAll = "**/*"

// ParsePolicy converts a configuration value into a Policy.
// The empty string selects PolicyOverride.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyOverride:
		return PolicyOverride, nil
	case PolicyIntersection:
		return PolicyIntersection, nil
	default:
		return "", fmt.Errorf("unknown selector policy %q", s)
	}
}

// Selector resolves an ordered pattern list against relative paths.
type Selector struct {
	patterns []*Pattern
	policy   Policy
	matchAll bool
	logger   *zap.Logger

	// Last-match-wins lists are evaluated by one matcher; owner maps its
	// rule indexes back to patterns. matcher is nil when a pattern needs
	// the regexp fallback.
	matcher *pathrules.Matcher
	owner   []int
}

// New compiles patterns under the given policy. With PolicyOverride the
// implicit SelectAll pattern is placed first, so an empty list selects every
// file.
func New(patterns []string, policy Policy, logger *zap.Logger) (*Selector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == "" {
		policy = PolicyOverride
	}
	if policy != PolicyOverride && policy != PolicyIntersection {
		return nil, fmt.Errorf("unknown selector policy %q", policy)
	}

	lines := patterns
	if policy == PolicyOverride {
		lines = append([]string{SelectAll}, patterns...)
	}

	compiled, err := compileAll(lines, logger)
	if err != nil {
		return nil, err
	}
	s := &Selector{patterns: compiled, policy: policy, logger: logger}
	if policy == PolicyOverride {
		if err := s.buildMatcher(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewFilter compiles a last-match-wins pattern list without the implicit
// select-all: a path is selected only if the last pattern matching it is an
// inclusion. An empty list selects everything.
func NewFilter(patterns []string, logger *zap.Logger) (*Selector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	compiled, err := compileAll(patterns, logger)
	if err != nil {
		return nil, err
	}
	s := &Selector{
		patterns: compiled,
		policy:   PolicyOverride,
		matchAll: len(compiled) == 0,
		logger:   logger,
	}
	if err := s.buildMatcher(); err != nil {
		return nil, err
	}
	return s, nil
}

// buildMatcher merges the patterns into one ordered pathrules list:
// plain patterns include, negated ones exclude, unmatched paths are excluded.
func (s *Selector) buildMatcher() error {
	var rules []pathrules.Rule
	var owner []int
	for i, p := range s.patterns {
		if p.re != nil {
			s.logger.Debug("Selector falls back to per-pattern matching", zap.String("pattern", p.Line))
			return nil
		}
		action := pathrules.ActionInclude
		if p.Negate {
			action = pathrules.ActionExclude
		}
		for _, r := range p.rules {
			rules = append(rules, pathrules.Rule{Pattern: r.Pattern, Action: action})
			owner = append(owner, i)
		}
	}

	m, err := pathrules.NewMatcher(rules, pathrules.MatcherOptions{DefaultAction: pathrules.ActionExclude})
	if err != nil {
		return fmt.Errorf("failed to build selector: %w", err)
	}
	s.matcher = m
	s.owner = owner
	return nil
}

func compileAll(lines []string, logger *zap.Logger) ([]*Pattern, error) {
	compiled := make([]*Pattern, 0, len(lines))
	for i, line := range lines {
		p, err := Compile(line)
		if err != nil {
			return nil, err
		}
		p.Index = i
		compiled = append(compiled, p)
		logger.Debug("Compiled selector pattern",
			zap.Int("index", i),
			zap.String("pattern", line),
			zap.Bool("negate", p.Negate))
	}
	return compiled, nil
}

// Policy returns the policy the selector was built with.
func (s *Selector) Policy() Policy { return s.policy }

// Patterns returns the compiled patterns in evaluation order.
func (s *Selector) Patterns() []*Pattern { return s.patterns }

// Select evaluates every path and returns one flag per path.
func (s *Selector) Select(relPaths []string) []bool {
	flags := make([]bool, len(relPaths))
	if s.matchAll {
		for i := range flags {
			flags[i] = true
		}
		return flags
	}

	if s.policy == PolicyIntersection {
		for i := range flags {
			flags[i] = true
		}
		for _, p := range s.patterns {
			for i, rel := range relPaths {
				if flags[i] && p.Match(rel) == p.Negate {
					flags[i] = false
				}
			}
		}
		return flags
	}

	if s.matcher != nil {
		for i, rel := range relPaths {
			flags[i] = s.matcher.Included(rel, false)
		}
		return flags
	}

	for _, p := range s.patterns {
		for i, rel := range relPaths {
			if p.Match(rel) {
				flags[i] = !p.Negate
			}
		}
	}
	return flags
}

// Filter returns the selected paths, preserving input order.
func (s *Selector) Filter(relPaths []string) []string {
	flags := s.Select(relPaths)
	selected := make([]string, 0, len(relPaths))
	for i, rel := range relPaths {
		if flags[i] {
			selected = append(selected, rel)
		} else {
			s.logger.Debug("Path not selected", zap.String("path", rel))
		}
	}
	return selected
}

// Included reports whether a single path is selected.
func (s *Selector) Included(relPath string) bool {
	return s.Select([]string{relPath})[0]
}

// Decide is like Included but also returns the pattern that made the
// decision under the override policy, or nil when none matched.
func (s *Selector) Decide(relPath string) (bool, *Pattern) {
	if s.matchAll {
		return true, nil
	}
	if s.policy == PolicyIntersection {
		for _, p := range s.patterns {
			if p.Match(relPath) == p.Negate {
				return false, p
			}
		}
		return true, nil
	}

	if s.matcher != nil {
		res := s.matcher.Decide(relPath, false)
		if !res.Matched {
			return false, nil
		}
		return res.Included, s.patterns[s.owner[res.RuleIndex]]
	}

	var matched *Pattern
	for _, p := range s.patterns {
		if p.Match(relPath) {
			matched = p
		}
	}
	if matched == nil {
		return false, nil
	}
	return !matched.Negate, matched
}
