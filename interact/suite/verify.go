// SPDX-License-Identifier: GPL-3.0-or-later

package suite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/osmocom/python-osmo-python-tests/interact/transcript"
	"github.com/osmocom/python-osmo-python-tests/logger"
)

// Verify runs the transcript files one after the other, each against a
// freshly launched target and a new session. A failing transcript does not
// stop the batch.
func (s *Suite) Verify(ctx context.Context, t Target, files []string) Results {
	results := make(Results, 0, len(files))

	for _, file := range files {
		err := s.VerifyFile(ctx, t, file)
		results = append(results, Result{File: file, Err: err})
	}

	return results
}

// VerifyFile verifies, or in update mode rewrites, a single transcript. The
// session is closed and the target stopped whatever the outcome.
func (s *Suite) VerifyFile(ctx context.Context, t Target, file string) error {
	log := s.With(slog.String("transcript", file), slog.String("run_id", uuid.NewString()))

	if err := ctx.Err(); err != nil {
		return err
	}

	proc, err := s.launch(t, !s.Verbose)
	if err != nil {
		log.Error(err)
		return err
	}
	defer s.stop(proc)

	err = s.verifySession(ctx, log, t.NewSession(), file)
	if err != nil {
		s.reportFailure(log, err)
	}
	return err
}

func (s *Suite) verifySession(ctx context.Context, log *logger.Logger, sess Session, file string) error {
	if err := sess.Connect(ctx); err != nil {
		return err
	}
	defer s.close(sess)

	r := transcript.NewRunner(sess, s.Update)
	r.Logger = log
	if s.Verbose {
		r.Verbose = s.Out
	}

	return r.VerifyFile(ctx, file)
}

func (s *Suite) reportFailure(log *logger.Logger, err error) {
	var se *transcript.StepError
	if errors.As(err, &se) && se.Mismatch != nil {
		if _, werr := fmt.Fprintln(s.Out, se.Report()); werr != nil {
			log.Debugf("report: %v", werr)
		}
		log.Errorf("step %d %q failed", se.Number, se.Step.Line)
		return
	}
	log.Error(err)
}
