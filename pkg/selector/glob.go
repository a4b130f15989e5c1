package selector

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/woozymasta/pathrules"
)

// Pattern is one compiled selector entry.
type Pattern struct {
	Glob   string // Glob without the negation marker.
	Negate bool   // Pattern started with '!'.
	Line   string // Original pattern as configured.
	Index  int    // Position in the configured list (0-based).

	rules   []pathrules.Rule   // Brace-expanded alternatives, nil when re is used.
	matcher *pathrules.Matcher // Matches any alternative.
	re      *regexp.Regexp     // Escaped globs only.
	base    bool               // re is matched against base names.
}

// Compile parses a glob with an optional leading '!' into a Pattern.
//
// Supported syntax: '*' (any run within a segment), '**' (zero or more
// segments), '?', character classes '[...]' and '[!...]', brace alternation
// '{a,b}' and '\' escapes. A glob without '/' is matched against the base
// name of a path anywhere in the tree; a glob with '/' is anchored at the
// build root. A trailing '/' selects everything below a directory.
func Compile(line string) (*Pattern, error) {
	glob := strings.TrimSpace(line)
	negate := false
	if strings.HasPrefix(glob, "!") {
		negate = true
		glob = strings.TrimPrefix(glob, "!")
	}
	glob = strings.TrimPrefix(glob, "./")
	anchored := strings.HasPrefix(glob, "/")
	glob = strings.TrimPrefix(glob, "/")
	if strings.Trim(glob, "/") == "" {
		return nil, fmt.Errorf("empty pattern %q", line)
	}

	p := &Pattern{Glob: glob, Negate: negate, Line: line}

	// pathrules reads '\' as a path separator, escapes go through regexp.
	if strings.Contains(glob, `\`) {
		expr, err := globToRegex(strings.TrimSuffix(glob, "/"))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", line, err)
		}
		if p.re, err = regexp.Compile(expr); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", line, err)
		}
		p.base = !anchored && !strings.Contains(strings.TrimSuffix(glob, "/"), "/")
		return p, nil
	}

	for _, alt := range expandBraces(glob) {
		if anchored || strings.Contains(strings.TrimSuffix(alt, "/"), "/") {
			alt = "/" + alt
		}
		p.rules = append(p.rules, pathrules.Rule{Pattern: alt, Action: pathrules.ActionInclude})
	}
	m, err := pathrules.NewMatcher(p.rules, pathrules.MatcherOptions{DefaultAction: pathrules.ActionExclude})
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", line, err)
	}
	p.matcher = m
	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(line string) *Pattern {
	p, err := Compile(line)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether the glob matches a slash-separated relative path.
// Negation is not applied here; callers decide what a match means.
func (p *Pattern) Match(relPath string) bool {
	target := strings.TrimPrefix(relPath, "./")
	if p.re == nil {
		return p.matcher.Included(target, false)
	}
	if p.base {
		target = path.Base(target)
	}
	return p.re.MatchString(target)
}

// String returns the pattern as configured.
func (p *Pattern) String() string {
	return p.Line
}

// expandBraces turns "a.{js,css}" into "a.js" and "a.css". Unbalanced braces
// are kept literally.
func expandBraces(glob string) []string {
	open := strings.IndexByte(glob, '{')
	if open < 0 {
		return []string{glob}
	}
	depth := 0
	closing := -1
	for i := open; i < len(glob) && closing < 0; i++ {
		switch glob[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				closing = i
			}
		}
	}
	if closing < 0 {
		return []string{glob}
	}

	prefix, body, suffix := glob[:open], glob[open+1:closing], glob[closing+1:]
	var out []string
	for _, alt := range splitTopLevel(body) {
		out = append(out, expandBraces(prefix+alt+suffix)...)
	}
	return out
}

// splitTopLevel splits on commas that are not inside nested braces.
func splitTopLevel(body string) []string {
	var parts []string
	depth, last := 0, 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, body[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, body[last:])
}

// globToRegex converts a slash-separated glob containing '\' escapes into
// an anchored expression.
func globToRegex(glob string) (string, error) {
	segments := strings.Split(glob, "/")

	var b strings.Builder
	b.WriteString("^")
	for i, seg := range segments {
		last := i == len(segments)-1
		if seg == "**" {
			if last {
				b.WriteString(".*")
			} else {
				b.WriteString("(?:[^/]*/)*")
			}
			continue
		}
		expr, err := segmentToRegex(seg)
		if err != nil {
			return "", err
		}
		b.WriteString(expr)
		if !last {
			b.WriteString("/")
		}
	}
	b.WriteString("$")
	return b.String(), nil
}

// segmentToRegex converts the wildcards of a single path segment.
func segmentToRegex(seg string) (string, error) {
	var b strings.Builder
	runes := []rune(seg)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '*':
			for i+1 < len(runes) && runes[i+1] == '*' {
				i++
			}
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		case '\\':
			if i+1 < len(runes) {
				i++
				b.WriteString(regexp.QuoteMeta(string(runes[i])))
			} else {
				b.WriteString(`\\`)
			}
		case '[':
			end := closingIndex(runes, i, ']')
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			class := string(runes[i+1 : end])
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + class + "]")
			i = end
		case '{':
			end := closingIndex(runes, i, '}')
			if end < 0 {
				b.WriteString(`\{`)
				continue
			}
			alts := strings.Split(string(runes[i+1:end]), ",")
			parts := make([]string, 0, len(alts))
			for _, alt := range alts {
				expr, err := segmentToRegex(alt)
				if err != nil {
					return "", err
				}
				parts = append(parts, expr)
			}
			b.WriteString("(?:" + strings.Join(parts, "|") + ")")
			i = end
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String(), nil
}

func closingIndex(runes []rune, open int, closing rune) int {
	for j := open + 1; j < len(runes); j++ {
		if runes[j] == closing {
			return j
		}
	}
	return -1
}
