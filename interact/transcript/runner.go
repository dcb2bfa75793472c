// SPDX-License-Identifier: GPL-3.0-or-later

package transcript

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/osmocom/python-osmo-python-tests/logger"
)

// Exchange is the outcome of sending one step's command.
type Exchange struct {
	// Line is the command line to write into an updated transcript.
	Line string
	// Lines is the response, without echo and prompt.
	Lines []string
}

// Session is a connected target that transcripts are verified against.
type Session interface {
	Recognizer
	// CheckState verifies that the session is in the state the step was
	// recorded in. It fails with ErrStateMismatch.
	CheckState(step Step) error
	// Exec sends the step's command and waits for the complete response.
	Exec(ctx context.Context, step Step) (Exchange, error)
}

// Runner drives transcripts through a Session.
type Runner struct {
	*logger.Logger

	Session Session
	// Update makes the runner rewrite mismatching steps instead of failing.
	Update bool
	// Verbose, if set, receives every command line and response.
	Verbose io.Writer
}

func NewRunner(sess Session, update bool) *Runner {
	return &Runner{
		Logger:  logger.New().With(slog.String("component", "transcript runner")),
		Session: sess,
		Update:  update,
	}
}

// Run executes every step of t in order. In verify mode the first failing step
// aborts the run with a *StepError. In update mode mismatching steps take the
// received response, matching steps keep their expected lines, and the updated
// transcript is returned. Faults abort the run in both modes.
func (r *Runner) Run(ctx context.Context, t *Transcript) (*Transcript, error) {
	out := &Transcript{
		Steps:          make([]Step, 0, len(t.Steps)),
		TrailingBlanks: t.TrailingBlanks,
	}

	for i, step := range t.Steps {
		num := i + 1

		r.printVerbose(strings.Repeat("\n", step.LeadingBlanks) + step.Line)

		if !r.Update {
			if err := r.Session.CheckState(step); err != nil {
				return nil, &StepError{Number: num, Step: step, Err: err}
			}
		}

		ex, err := r.Session.Exec(ctx, step)
		if err != nil {
			return nil, &StepError{Number: num, Step: step, Err: err}
		}

		r.printVerbose(strings.Join(ex.Lines, "\n"))

		mismatch := MatchLines(step.Expected, ex.Lines)

		if !r.Update {
			if mismatch != nil {
				return nil, &StepError{Number: num, Step: step, Got: ex.Lines, Mismatch: mismatch, Err: ErrLineMismatch}
			}
			out.Steps = append(out.Steps, step)
			continue
		}

		updated := step
		updated.Line = ex.Line
		if mismatch != nil {
			r.Debugf("step %d %q updated: %s", num, step.Line, mismatch)
			updated.Expected = ex.Lines
		}
		out.Steps = append(out.Steps, updated)
	}

	return out, nil
}

// RunText parses text with the session's recognizer and runs it.
func (r *Runner) RunText(ctx context.Context, text string) (*Transcript, error) {
	t := Parse(text, r.Session)
	if len(t.Ignored) > 0 {
		r.Warningf("%v: ignoring %d line(s) before the first command, starting with %s",
			ErrMalformedTranscript, len(t.Ignored), quote(t.Ignored[0]))
	}
	return r.Run(ctx, t)
}

func (r *Runner) printVerbose(s string) {
	if r.Verbose == nil {
		return
	}
	if _, err := fmt.Fprintln(r.Verbose, s); err != nil {
		r.Debugf("verbose output: %v", err)
	}
}
