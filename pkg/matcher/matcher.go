// SPDX-License-Identifier: GPL-3.0-or-later

// Package matcher implements the string and regexp matchers used for
// forbidden-line patterns in transcripts.
//
// A pattern without regexp meta characters is matched with strings.Contains,
// strings.HasPrefix, strings.HasSuffix or == depending on its '^' and '$'
// anchors. Anything else is compiled with the regexp package and matched
// unanchored, so "ERROR" matches "% ERROR: bad" just like a regexp search would.
package matcher

// Matcher reports whether a line matches.
type Matcher interface {
	Match(b []byte) bool
	MatchString(line string) bool
}

type (
	trueMatcher  struct{}
	falseMatcher struct{}
)

var (
	matcherT trueMatcher
	matcherF falseMatcher
)

// TRUE returns a matcher which always returns true
func TRUE() Matcher {
	return matcherT
}

// FALSE returns a matcher which always returns false
func FALSE() Matcher {
	return matcherF
}

func (trueMatcher) Match(_ []byte) bool        { return true }
func (trueMatcher) MatchString(_ string) bool  { return true }
func (falseMatcher) Match(_ []byte) bool       { return false }
func (falseMatcher) MatchString(_ string) bool { return false }

// Must panics if err is not nil.
func Must(m Matcher, err error) Matcher {
	if err != nil {
		panic(err)
	}
	return m
}
