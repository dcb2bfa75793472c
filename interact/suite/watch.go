// SPDX-License-Identifier: GPL-3.0-or-later

package suite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 300 * time.Millisecond

// Watch verifies the files once and then again whenever one of them is
// written, until ctx is done. Every round ends with a summary of the files it
// verified. Update mode is refused: it would trigger on its own writes.
func (s *Suite) Watch(ctx context.Context, t Target, files []string) error {
	if s.Update {
		return errors.New("watch mode cannot be combined with update mode")
	}
	if len(files) == 0 {
		return errors.New("no transcripts to watch")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	watched := make(map[string]string, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		watched[abs] = f
	}
	// editors replace files on save, so the directories are watched
	for abs := range watched {
		dir := filepath.Dir(abs)
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	s.round(ctx, t, files)

	tk := time.NewTicker(watchDebounce / 3)
	defer tk.Stop()

	pending := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if f, ok := watched[filepath.Clean(ev.Name)]; ok {
				s.Debugf("%s changed", f)
				pending[f] = time.Now()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.Warningf("watcher: %v", err)
		case now := <-tk.C:
			var due []string
			for f, seen := range pending {
				if now.Sub(seen) >= watchDebounce {
					due = append(due, f)
					delete(pending, f)
				}
			}
			if len(due) > 0 {
				slices.Sort(due)
				s.round(ctx, t, due)
			}
		}
	}
}

func (s *Suite) round(ctx context.Context, t Target, files []string) {
	rs := s.Verify(ctx, t, files)
	if err := rs.WriteSummary(s.Out); err != nil {
		s.Warning(err)
	}
}
