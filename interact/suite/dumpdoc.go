// SPDX-License-Identifier: GPL-3.0-or-later

package suite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const onlineHelpCommand = "show online-help"

// DocFileName is the VTY reference file of a target inside the doc directory.
func DocFileName(dir, name string) string {
	return filepath.Join(dir, name+"_vty_reference.xml")
}

// DumpDoc starts every target in turn, asks its VTY for the online help and
// writes it to the doc directory. Targets that fail are skipped and counted.
func (s *Suite) DumpDoc(ctx context.Context, targets []Target, dir string) (failures, successes int, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, 0, fmt.Errorf("create doc dir: %w", err)
	}

	for _, t := range targets {
		if ctx.Err() != nil {
			return failures, successes, ctx.Err()
		}

		s.printf("Starting app for %s\n", t.Name)

		if err := s.dumpDoc(ctx, t, DocFileName(dir, t.Name)); err != nil {
			s.Warningf("%s: %v, skipping", t.Name, err)
			failures++
			continue
		}
		successes++
	}

	return failures, successes, nil
}

func (s *Suite) dumpDoc(ctx context.Context, t Target, path string) error {
	proc, err := s.launch(t, !s.Verbose)
	if err != nil {
		return err
	}
	defer s.stop(proc)

	sess := t.NewSession()
	if err := sess.Connect(ctx); err != nil {
		return err
	}
	defer s.close(sess)

	lines, err := sess.Command(ctx, onlineHelpCommand)
	if err != nil {
		return err
	}

	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}

func (s *Suite) printf(format string, a ...any) {
	if _, err := fmt.Fprintf(s.Out, format, a...); err != nil {
		s.Debugf("print: %v", err)
	}
}
