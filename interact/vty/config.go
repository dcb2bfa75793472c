// SPDX-License-Identifier: GPL-3.0-or-later

package vty

import (
	"time"

	"github.com/osmocom/python-osmo-python-tests/pkg/confopt"
)

// DefaultTimeout bounds the wait for a command's prompt.
const DefaultTimeout = 10 * time.Second

type Config struct {
	// Address is host:port of the VTY.
	Address string `yaml:"address" json:"address"`
	// PromptName is the application name shown in the prompt, e.g. "OsmoBSC".
	// Detected from the banner if empty.
	PromptName string           `yaml:"prompt_name,omitempty" json:"prompt_name"`
	Timeout    confopt.Duration `yaml:"timeout,omitempty" json:"timeout"`
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout.Duration()
}
