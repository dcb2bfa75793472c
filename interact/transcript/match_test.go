// SPDX-License-Identifier: GPL-3.0-or-later

package transcript

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchLines(t *testing.T) {
	tests := map[string]struct {
		expected   []string
		got        []string
		wantDetail string
	}{
		"both empty": {},
		"equal": {
			expected: []string{"a", "b"},
			got:      []string{"a", "b"},
		},
		"wildcard consumes lines before the next expected line": {
			expected: []string{"...", "X"},
			got:      []string{"A", "B", "X"},
		},
		"wildcard without the next expected line": {
			expected:   []string{"...", "X"},
			got:        []string{"A", "B"},
			wantDetail: "Cannot find line 'X'",
		},
		"trailing wildcard consumes everything": {
			expected: []string{"a", "..."},
			got:      []string{"a", "b", "c"},
		},
		"wildcard consumes nothing": {
			expected: []string{"...", "a"},
			got:      []string{"a"},
		},
		"wildcard matching an empty response": {
			expected: []string{"..."},
		},
		"wildcard is greedy on the first occurrence": {
			expected:   []string{"...", "X", "Y"},
			got:        []string{"X", "Z", "X", "Y"},
			wantDetail: "Mismatch:\nExpect:\n'Y'\nGot:\n'Z'",
		},
		"forbidden line inside wildcard": {
			expected:   []string{"... !ERROR", "OK"},
			got:        []string{"foo", "ERROR: bad", "OK"},
			wantDetail: "Got forbidden line for wildcard '... !ERROR': did not expect 'ERROR: bad' in line 1 of response",
		},
		"no forbidden line inside wildcard": {
			expected: []string{"... !ERROR", "OK"},
			got:      []string{"foo", "bar", "OK"},
		},
		"forbidden regex with meta characters": {
			expected:   []string{"... !^% \\w+"},
			got:        []string{"ok", "% Unknown command."},
			wantDetail: "Got forbidden line for wildcard '... !^% \\\\w+': did not expect '% Unknown command.' in line 1 of response",
		},
		"forbidden regex is not checked after the wildcard": {
			expected: []string{"... !ERROR", "OK", "ERROR"},
			got:      []string{"OK", "ERROR"},
		},
		"invalid forbidden regex": {
			expected:   []string{"... ![", "OK"},
			got:        []string{"x", "OK"},
			wantDetail: "Invalid regex for wildcard",
		},
		"missing line": {
			expected:   []string{"a", "b"},
			got:        []string{"a"},
			wantDetail: "Cannot find line 'b'",
		},
		"different line": {
			expected:   []string{"a"},
			got:        []string{"b"},
			wantDetail: "Mismatch:\nExpect:\n'a'\nGot:\n'b'",
		},
		"unexpected trailing line": {
			expected:   []string{"a"},
			got:        []string{"a", "b"},
			wantDetail: "Did not expect line 'b'",
		},
		"line with single quote": {
			expected:   []string{"a"},
			got:        []string{"a", "% No subscriber for imsi = '1'"},
			wantDetail: `Did not expect line "% No subscriber for imsi = '1'"`,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			m := MatchLines(test.expected, test.got)

			if test.wantDetail == "" {
				assert.Nil(t, m)
				return
			}
			require.NotNil(t, m)
			assert.Contains(t, m.Detail, test.wantDetail)
		})
	}
}

func TestForbiddenMatcher(t *testing.T) {
	const expr = `[0-9]+ (errors|failures)`

	m1, err := forbiddenMatcher(expr)
	require.NoError(t, err)
	m2, err := forbiddenMatcher(expr)
	require.NoError(t, err)

	// compiled once, and lines are matched by the plain regexp without a result cache
	require.IsType(t, &regexp.Regexp{}, m1)
	assert.Same(t, m1, m2)

	assert.True(t, m1.MatchString("3 errors"))
	assert.False(t, m1.MatchString("no errors"))

	_, err = forbiddenMatcher(`(`)
	assert.Error(t, err)
}

func TestQuote(t *testing.T) {
	tests := map[string]struct {
		s    string
		want string
	}{
		"plain":         {s: "abc", want: "'abc'"},
		"single quote":  {s: "it's", want: `"it's"`},
		"both quotes":   {s: `it's "x"`, want: `'it\'s "x"'`},
		"backslash":     {s: `a\b`, want: `'a\\b'`},
		"control bytes": {s: "a\tb\x01", want: `'a\tb\x01'`},
		"empty":         {s: "", want: "''"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.want, quote(test.s))
		})
	}
}
