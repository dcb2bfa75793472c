// SPDX-License-Identifier: GPL-3.0-or-later

package transcript

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConnection means the target could not be reached.
	ErrConnection = errors.New("could not connect to target")
	// ErrUnresponsive means no complete response arrived in time.
	ErrUnresponsive = errors.New("failed to read data (did the app crash?)")
	// ErrStateMismatch means the VTY node or prompt character differs from the transcript.
	ErrStateMismatch = errors.New("session state mismatch")
	// ErrLineMismatch means a response did not match the expected lines.
	ErrLineMismatch = errors.New("result mismatch")
	// ErrPromptDetection means the VTY application name could not be derived from the banner.
	ErrPromptDetection = errors.New("could not find application name; needed to decode prompts")
	// ErrMalformedTranscript is reported for lines before the first step. They
	// are ignored, so it is only ever logged.
	ErrMalformedTranscript = errors.New("malformed transcript")
)

// StepError is the failure of a single transcript step.
type StepError struct {
	// Number is 1-based.
	Number int
	Step   Step
	// Got is the response, if one was received.
	Got      []string
	Mismatch *Mismatch
	Err      error
}

func (e *StepError) Error() string {
	if e.Mismatch == nil {
		return fmt.Sprintf("transcript step %d %q: %v", e.Number, e.Step.Line, e.Err)
	}
	return fmt.Sprintf("transcript step %d: %s", e.Number, e.Report())
}

func (e *StepError) Unwrap() error { return e.Err }

// Report renders the mismatch with the expected and the received block.
func (e *StepError) Report() string {
	detail := e.Err.Error()
	if e.Mismatch != nil {
		detail = e.Mismatch.Detail
	}
	return fmt.Sprintf("Result mismatch:\n%s\n\nExpected:\n[\n%s\n]\n\nGot:\n[\n%s\n%s\n]",
		detail, e.Step, e.Step.Line, strings.Join(e.Got, "\n"))
}
