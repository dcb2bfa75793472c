// SPDX-License-Identifier: GPL-3.0-or-later

package suite

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Commands is where run mode takes its commands from.
type Commands struct {
	// Inline holds ';' separated commands. They are sent first.
	Inline string
	// Files hold one command per line.
	Files []string
	// Stdin is read when neither Inline nor Files is set. Every line may
	// hold several ';' separated commands.
	Stdin io.Reader
}

// Run sends the commands over ia and writes every response, followed by a
// newline, to outPath ("" or "-" is Out). The first failing command stops
// the run. The output is closed, the session closed and the target stopped
// whatever happened.
func (s *Suite) Run(ctx context.Context, t Target, ia Interactor, cmds Commands, outPath string) (err error) {
	out, closeOut, err := s.openOutput(outPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	proc, err := s.launch(t, !s.Verbose)
	if err != nil {
		return err
	}
	defer s.stop(proc)

	if err := ia.Connect(ctx); err != nil {
		return err
	}
	defer s.close(ia)

	if err := s.feedAll(ctx, ia, out, cmds); err != nil {
		s.Error(err)
		return err
	}
	return nil
}

func (s *Suite) feedAll(ctx context.Context, ia Interactor, out io.Writer, cmds Commands) error {
	if cmds.Inline != "" {
		if err := feed(ctx, ia, out, strings.Split(cmds.Inline, ";")); err != nil {
			return err
		}
	}

	for _, path := range cmds.Files {
		bs, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read commands: %w", err)
		}
		if err := feed(ctx, ia, out, splitLines(string(bs))); err != nil {
			return err
		}
	}

	if cmds.Inline != "" || len(cmds.Files) > 0 || cmds.Stdin == nil {
		return nil
	}

	sc := bufio.NewScanner(cmds.Stdin)
	for sc.Scan() {
		if err := feed(ctx, ia, out, strings.Split(sc.Text(), ";")); err != nil {
			return err
		}
	}
	return sc.Err()
}

func feed(ctx context.Context, ia Interactor, out io.Writer, chunks []string) error {
	for _, chunk := range chunks {
		for _, command := range splitLines(chunk) {
			res, err := ia.Command(ctx, command)
			if err != nil {
				return fmt.Errorf("command %q: %w", command, err)
			}
			if _, err := io.WriteString(out, strings.Join(res, "\n")+"\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Suite) openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return s.Out, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open output: %w", err)
	}
	return f, f.Close, nil
}

// splitLines splits on line breaks. A trailing line break does not produce
// an empty last line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
