// SPDX-License-Identifier: GPL-3.0-or-later

// Package process launches the network element under test and tears it down.
package process

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/shlex"
	"github.com/sourcegraph/conc"

	"github.com/osmocom/python-osmo-python-tests/logger"
)

// DefaultStopTimeout is how long Stop waits after SIGTERM before killing.
const DefaultStopTimeout = 5 * time.Second

// pipeDrainTimeout bounds the wait for the output pipes to hit EOF once the
// process is gone. Descendants may keep them open.
var pipeDrainTimeout = time.Second

// Process is a launched target. Readiness is not tracked here: callers find
// out by connecting with retries.
type Process struct {
	*logger.Logger

	// Purge discards the process output, otherwise it is copied line by line to Output.
	Purge       bool
	Output      io.Writer
	StopTimeout time.Duration

	argv []string

	cmd      *exec.Cmd
	pipes    []io.Closer
	done     chan struct{}
	waitErr  error
	stopOnce sync.Once
	stopErr  error
}

// New splits commandLine into words the way a POSIX shell would, without
// running a shell.
func New(commandLine string) (*Process, error) {
	argv, err := shlex.Split(commandLine)
	if err != nil {
		return nil, fmt.Errorf("parse command line %q: %w", commandLine, err)
	}
	if len(argv) == 0 {
		return nil, errors.New("empty command line")
	}

	return &Process{
		Logger:      logger.New().With(slog.String("component", "process"), slog.String("name", argv[0])),
		Purge:       true,
		Output:      os.Stdout,
		StopTimeout: DefaultStopTimeout,
		argv:        argv,
	}, nil
}

// Args returns the command line words.
func (p *Process) Args() []string { return p.argv }

// Start launches the process and returns without waiting for it to be ready.
func (p *Process) Start() error {
	if p.cmd != nil {
		return errors.New("process already started")
	}

	cmd := exec.Command(p.argv[0], p.argv[1:]...)

	var forward []io.ReadCloser
	if !p.Purge {
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return err
		}
		stderr, err := cmd.StderrPipe()
		if err != nil {
			return err
		}
		forward = append(forward, stdout, stderr)
	}

	if wd, err := os.Getwd(); err == nil {
		p.Infof("launching: cd %q; %s", wd, strings.Join(p.argv, " "))
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.argv[0], err)
	}

	p.cmd = cmd
	p.done = make(chan struct{})
	for _, r := range forward {
		p.pipes = append(p.pipes, r)
	}

	var wg conc.WaitGroup
	out := &syncWriter{w: p.Output}
	for _, r := range forward {
		r := r
		wg.Go(func() { p.copyLines(out, r) })
	}

	go func() {
		defer close(p.done)
		// pipes must be drained before Wait closes them
		wg.Wait()
		p.waitErr = cmd.Wait()
	}()

	return nil
}

// Exited reports whether the process has terminated.
func (p *Process) Exited() bool {
	if p == nil || p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Stop terminates the process: SIGTERM first, polled with a backoff relaxing
// from 1ms towards 1s, then SIGKILL once StopTimeout is used up. It always
// reaps the process. Calling Stop on a nil, never started or already stopped
// process is a no-op.
func (p *Process) Stop() error {
	if p == nil || p.cmd == nil {
		return nil
	}
	p.stopOnce.Do(func() { p.stopErr = p.stop() })
	return p.stopErr
}

func (p *Process) stop() error {
	if p.Exited() {
		p.Infof("process has already terminated: %v", p.exitStatus())
		return nil
	}

	if err := terminate(p.cmd.Process); err != nil {
		p.Debugf("terminate: %v", err)
	}

	var (
		waited time.Duration
		step   = time.Millisecond
		budget = p.StopTimeout
	)
	if budget <= 0 {
		budget = DefaultStopTimeout
	}

	exited := false
	for !exited {
		waited += step
		step = (time.Second + 5*step) / 6
		if waited >= budget {
			break
		}
		select {
		case <-p.done:
			exited = true
		case <-time.After(step):
		}
	}

	switch {
	case !exited && !p.Exited():
		if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("kill %s: %w", p.argv[0], err)
		}
		p.Info("killed child process")
	case waited > 2*time.Millisecond:
		p.Infof("terminating took %.3fs", waited.Seconds())
	}

	select {
	case <-p.done:
	case <-time.After(pipeDrainTimeout):
		p.Warning("output is still held open after the process ended, closing it")
		for _, c := range p.pipes {
			_ = c.Close()
		}
		<-p.done
	}

	return nil
}

func (p *Process) exitStatus() string {
	if p.cmd.ProcessState != nil {
		return p.cmd.ProcessState.String()
	}
	if p.waitErr != nil {
		return p.waitErr.Error()
	}
	return "unknown"
}

func (p *Process) copyLines(w io.Writer, r io.Reader) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if _, err := fmt.Fprintln(w, sc.Text()); err != nil {
			p.Debugf("forward output: %v", err)
		}
	}
	// keep reading so the process never blocks on a full pipe
	_, _ = io.Copy(io.Discard, r)
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return len(b), nil
	}
	return s.w.Write(b)
}
