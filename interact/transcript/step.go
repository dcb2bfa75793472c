// SPDX-License-Identifier: GPL-3.0-or-later

package transcript

import "strings"

// Kind holds the protocol specific part of a Step. It is either Vty or Ctrl.
type Kind interface {
	isKind()
}

// Vty is the Kind of a step recorded from a VTY session.
type Vty struct {
	// Node is the VTY node shown in the prompt, empty for the top level.
	Node string
	// PromptChar is '>' or '#'.
	PromptChar byte
}

// Ctrl is the Kind of a step recorded from a CTRL session.
type Ctrl struct{}

func (Vty) isKind()  {}
func (Ctrl) isKind() {}

// Step is one command of a transcript together with its expected response.
type Step struct {
	// Line is the command line as it appears in the transcript,
	// including the VTY prompt.
	Line string
	// Command is the text sent to the target.
	Command string
	// Expected never holds the command echo or the prompt line.
	Expected []string
	// LeadingBlanks is the number of blank lines directly above Line.
	LeadingBlanks int
	Kind          Kind
}

// String renders the step the way it appears in the transcript.
func (s Step) String() string {
	return strings.Join(append([]string{s.Line}, s.Expected...), "\n")
}

// Transcript is a parsed transcript file.
type Transcript struct {
	Steps []Step
	// TrailingBlanks is the number of blank lines after the last step.
	TrailingBlanks int
	// Ignored holds non-blank lines found before the first step.
	// They are not written back.
	Ignored []string
}

// String serializes the transcript. Every line, the last one included,
// ends in a newline.
func (t *Transcript) String() string {
	var sb strings.Builder

	for _, step := range t.Steps {
		writeBlanks(&sb, step.LeadingBlanks)
		sb.WriteString(step.Line)
		sb.WriteByte('\n')
		for _, line := range step.Expected {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	writeBlanks(&sb, t.TrailingBlanks)

	return sb.String()
}

func writeBlanks(sb *strings.Builder, n int) {
	for i := 0; i < n; i++ {
		sb.WriteByte('\n')
	}
}
