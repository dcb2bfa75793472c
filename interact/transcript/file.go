// SPDX-License-Identifier: GPL-3.0-or-later

package transcript

import (
	"context"
	"fmt"
	"os"

	"github.com/osmocom/python-osmo-python-tests/pkg/filelock"
)

// Bytes returns the serialized transcript.
func (t *Transcript) Bytes() ([]byte, error) {
	return []byte(t.String()), nil
}

// VerifyFile reads the transcript at path and runs it. In update mode the
// file is locked for the duration of the run and, on success, overwritten as
// a whole with the updated transcript. Verify mode never writes.
func (r *Runner) VerifyFile(ctx context.Context, path string) error {
	if r.Update {
		// locking creates missing files
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("read transcript: %w", err)
		}
		release, err := fileLocker.Acquire(path)
		if err != nil {
			return err
		}
		defer release()
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	updated, err := r.RunText(ctx, string(content))
	if err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}

	if !r.Update {
		return nil
	}

	return save(path, updated)
}

var fileLocker = filelock.New()

func save(path string, data interface{ Bytes() ([]byte, error) }) error {
	bs, err := data.Bytes()
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}

	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	if err := os.WriteFile(path, bs, mode); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}

	return nil
}
