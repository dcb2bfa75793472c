// SPDX-License-Identifier: GPL-3.0-or-later

package ctrl

import (
	"time"

	"github.com/osmocom/python-osmo-python-tests/pkg/confopt"
)

// DefaultTimeout bounds the wait for a reply.
const DefaultTimeout = 10 * time.Second

type Config struct {
	// Address is host:port of the CTRL interface.
	Address string `yaml:"address" json:"address"`
	// KeepIDs sends the command ids recorded in a transcript unchanged.
	// Otherwise ids are renumbered from 1 on every connection.
	KeepIDs bool             `yaml:"keep_ids,omitempty" json:"keep_ids"`
	Timeout confopt.Duration `yaml:"timeout,omitempty" json:"timeout"`
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout.Duration()
}
