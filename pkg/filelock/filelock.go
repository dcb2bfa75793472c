// SPDX-License-Identifier: GPL-3.0-or-later

package filelock

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// ErrLocked is returned by Acquire when another process holds the lock.
var ErrLocked = errors.New("file is locked by another process")

// New returns a Locker that takes advisory locks on the named files
// themselves. Locking a missing file creates it.
func New() *Locker {
	return &Locker{locks: make(map[string]*flock.Flock)}
}

type Locker struct {
	mu    sync.Mutex
	locks map[string]*flock.Flock
}

// Lock tries to lock name without blocking. It reports false if another
// process holds the lock. Locking a name twice is a no-op.
func (l *Locker) Lock(name string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	filename := l.filename(name)

	if _, ok := l.locks[filename]; ok {
		return true, nil
	}

	locker := flock.New(filename)

	ok, err := locker.TryLock()
	if ok {
		l.locks[filename] = locker
	} else {
		_ = locker.Close()
	}

	return ok, err
}

// Acquire locks name and returns the func releasing it.
func (l *Locker) Acquire(name string) (func(), error) {
	ok, err := l.Lock(name)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", name, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s: %w", name, ErrLocked)
	}
	return func() { l.Unlock(name) }, nil
}

func (l *Locker) Unlock(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	filename := l.filename(name)

	locker, ok := l.locks[filename]
	if !ok {
		return
	}

	delete(l.locks, filename)

	_ = locker.Close()
}

func (l *Locker) filename(name string) string {
	return filepath.Clean(name)
}
