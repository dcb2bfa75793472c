//go:build !windows

// SPDX-License-Identifier: GPL-3.0-or-later

package process

import (
	"os"
	"syscall"
)

func terminate(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}
