// SPDX-License-Identifier: GPL-3.0-or-later

package transcript

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/osmocom/python-osmo-python-tests/pkg/matcher"
)

const (
	// WildcardAny matches any number of response lines.
	WildcardAny = "..."
	// WildcardExcept prefixes a regular expression that none of the lines
	// matched by the wildcard may contain.
	WildcardExcept = "... !"
)

// Mismatch describes why a response did not match the expected lines.
type Mismatch struct {
	Detail string
}

func (m *Mismatch) String() string { return m.Detail }

func mismatchf(format string, a ...any) *Mismatch {
	return &Mismatch{Detail: fmt.Sprintf(format, a...)}
}

// IsWildcard reports whether an expected line is a wildcard.
func IsWildcard(line string) bool {
	return line == WildcardAny || strings.HasPrefix(line, WildcardExcept)
}

// MatchLines compares the expected lines of a step with a response. It returns
// nil on match.
//
// A wildcard skips response lines up to the first occurrence of the next
// expected line, or to the end of the response if it is the last expected
// line. The choice is never revisited.
func MatchLines(expected, got []string) *Mismatch {
	e, g := 0, 0

	for e < len(expected) {
		if wildcard := expected[e]; IsWildcard(wildcard) {
			e++
			end := g

			if e >= len(expected) {
				end = len(got)
			}
			for end < len(got) && expected[e] != got[end] {
				end++
			}

			if wildcard == WildcardAny {
				g = end
				continue
			}

			forbidden, err := forbiddenMatcher(wildcard[len(WildcardExcept):])
			if err != nil {
				return mismatchf("Invalid regex for wildcard %s: %v", quote(wildcard), err)
			}
			for ; g < end; g++ {
				if forbidden.MatchString(got[g]) {
					return mismatchf("Got forbidden line for wildcard %s: did not expect %s in line %d of response",
						quote(wildcard), quote(got[g]), g)
				}
			}
			continue
		}

		if g >= len(got) {
			return mismatchf("Cannot find line %s", quote(expected[e]))
		}
		if expected[e] != got[g] {
			return mismatchf("Mismatch:\nExpect:\n%s\nGot:\n%s", quote(expected[e]), quote(got[g]))
		}

		e++
		g++
	}

	if g < len(got) {
		return mismatchf("Did not expect line %s", quote(got[g]))
	}

	return nil
}

var forbiddenMatchers sync.Map

func forbiddenMatcher(expr string) (matcher.Matcher, error) {
	if v, ok := forbiddenMatchers.Load(expr); ok {
		return v.(matcher.Matcher), nil
	}
	m, err := matcher.NewRegExpMatcher(expr)
	if err != nil {
		return nil, err
	}
	v, _ := forbiddenMatchers.LoadOrStore(expr, m)
	return v.(matcher.Matcher), nil
}

// quote renders s as a quoted literal,
// single quoted unless s holds a single quote and no double quote.
func quote(s string) string {
	q := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var sb strings.Builder
	sb.WriteRune(q)
	for _, r := range s {
		switch {
		case r == '\\' || r == q:
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x100 && !unicode.IsPrint(r):
			fmt.Fprintf(&sb, `\x%02x`, r)
		case !unicode.IsPrint(r):
			fmt.Fprintf(&sb, `\u%04x`, r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteRune(q)

	return sb.String()
}
