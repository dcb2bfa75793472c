//go:build windows

// SPDX-License-Identifier: GPL-3.0-or-later

package process

import "os"

func terminate(p *os.Process) error {
	return p.Kill()
}
