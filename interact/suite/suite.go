// SPDX-License-Identifier: GPL-3.0-or-later

// Package suite runs transcripts, ad-hoc commands and test programs against
// launched network elements and reports the outcome.
package suite

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/osmocom/python-osmo-python-tests/interact/process"
	"github.com/osmocom/python-osmo-python-tests/interact/transcript"
	"github.com/osmocom/python-osmo-python-tests/logger"
)

// Interactor is a connection commands can be sent over.
type Interactor interface {
	Connect(ctx context.Context) error
	Close() error
	Command(ctx context.Context, command string) ([]string, error)
}

// Session is an Interactor transcripts can be verified against.
type Session interface {
	transcript.Session
	Interactor
}

// Target is a network element and the way to reach it.
type Target struct {
	Name string
	// Run is the command line launching the target. Empty means it is
	// already running.
	Run         string
	StopTimeout time.Duration
	// NewSession returns a new unconnected session.
	NewSession func() Session
}

// Suite holds the options shared by all modes.
type Suite struct {
	*logger.Logger

	// Out receives the user facing report.
	Out     io.Writer
	Update  bool
	Verbose bool
}

func New() *Suite {
	return &Suite{
		Logger: logger.New().With(slog.String("component", "suite")),
		Out:    os.Stdout,
	}
}

// launch starts the target process, if any. A nil process is safe to stop.
func (s *Suite) launch(t Target, purge bool) (*process.Process, error) {
	if t.Run == "" {
		return nil, nil
	}

	proc, err := process.New(t.Run)
	if err != nil {
		return nil, err
	}
	proc.Purge = purge
	proc.Output = s.Out
	if t.StopTimeout > 0 {
		proc.StopTimeout = t.StopTimeout
	}

	if err := proc.Start(); err != nil {
		return nil, err
	}
	return proc, nil
}

func (s *Suite) stop(proc *process.Process) {
	if err := proc.Stop(); err != nil {
		s.Warning(err)
	}
}

func (s *Suite) close(c io.Closer) {
	if err := c.Close(); err != nil {
		s.Debugf("close: %v", err)
	}
}
