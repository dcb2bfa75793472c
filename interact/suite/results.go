// SPDX-License-Identifier: GPL-3.0-or-later

package suite

import (
	"fmt"
	"io"
	"strings"
)

// Result is the outcome of one transcript.
type Result struct {
	File string
	Err  error
}

func (r Result) Passed() bool { return r.Err == nil }

type Results []Result

// Passed reports whether every transcript passed.
func (rs Results) Passed() bool {
	for _, r := range rs {
		if !r.Passed() {
			return false
		}
	}
	return true
}

// Failed returns the number of failed transcripts.
func (rs Results) Failed() int {
	var n int
	for _, r := range rs {
		if !r.Passed() {
			n++
		}
	}
	return n
}

// WriteSummary writes one pass or FAIL line per transcript.
func (rs Results) WriteSummary(w io.Writer) error {
	var sb strings.Builder

	sb.WriteString("\nRESULTS:\n")
	for _, r := range rs {
		status := "pass"
		if !r.Passed() {
			status = "FAIL"
		}
		fmt.Fprintf(&sb, "%s: %s\n", status, r.File)
	}
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
