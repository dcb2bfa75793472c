// SPDX-License-Identifier: GPL-3.0-or-later

package matcher

import "regexp"

// NewRegExpMatcher returns a matcher for expr with search semantics.
// Plain literals, optionally anchored, are turned into string matchers.
func NewRegExpMatcher(expr string) (Matcher, error) {
	switch expr {
	case "", "^", "$":
		return TRUE(), nil
	case "^$", "$^":
		return NewStringMatcher("", true, true)
	}

	chars := []rune(expr)
	startIdx, endIdx := 0, len(chars)-1

	var startWith, endWith bool
	if chars[startIdx] == '^' {
		startWith = true
		startIdx = 1
	}
	if chars[endIdx] == '$' && (endIdx == 0 || chars[endIdx-1] != '\\') {
		endWith = true
		endIdx--
	}

	literal := make([]rune, 0, len(chars))
	for i := startIdx; i <= endIdx; i++ {
		ch := chars[i]
		switch {
		case ch == '\\':
			if i == endIdx {
				return regexp.Compile(expr)
			}
			next := chars[i+1]
			if !isRegExpMeta(next) {
				// \d, \s, \b ...
				return regexp.Compile(expr)
			}
			literal = append(literal, next)
			i++
		case isRegExpMeta(ch):
			return regexp.Compile(expr)
		default:
			literal = append(literal, ch)
		}
	}

	return NewStringMatcher(string(literal), startWith, endWith)
}

// isRegExpMeta reports whether byte b needs to be escaped by QuoteMeta.
func isRegExpMeta(b rune) bool {
	switch b {
	case '\\', '.', '+', '*', '?', '(', ')', '|', '[', ']', '{', '}', '^', '$':
		return true
	default:
		return false
	}
}
