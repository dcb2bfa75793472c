// SPDX-License-Identifier: GPL-3.0-or-later

package transcript

import "strings"

// Recognizer tells apart the lines starting a new step from response lines.
type Recognizer interface {
	// ParseStep returns the step started by line, if it starts one.
	// Expected, LeadingBlanks and Line are filled in by Parse.
	ParseStep(line string) (Step, bool)
}

// Parse splits text into steps.
//
// Blank lines directly above a step line are counted into the step's
// LeadingBlanks, blank lines between response lines are kept as empty
// expected lines. Lines before the first step are collected in Ignored.
func Parse(text string, rec Recognizer) *Transcript {
	t := &Transcript{}

	var cur *Step
	blanks := 0

	for _, line := range splitLines(text) {
		if line == "" {
			blanks++
			continue
		}

		if step, ok := rec.ParseStep(line); ok {
			if cur != nil {
				t.Steps = append(t.Steps, *cur)
			}
			step.Line = line
			step.Expected = nil
			step.LeadingBlanks = blanks
			blanks = 0
			cur = &step
			continue
		}

		if cur == nil {
			t.Ignored = append(t.Ignored, line)
			continue
		}

		for ; blanks > 0; blanks-- {
			cur.Expected = append(cur.Expected, "")
		}
		cur.Expected = append(cur.Expected, line)
	}

	if cur != nil {
		t.Steps = append(t.Steps, *cur)
	}
	t.TrailingBlanks = blanks

	return t
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
