// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/osmocom/python-osmo-python-tests/interact/ctrl"
	"github.com/osmocom/python-osmo-python-tests/interact/suite"
	"github.com/osmocom/python-osmo-python-tests/interact/vty"
	"github.com/osmocom/python-osmo-python-tests/pkg/confopt"
	"github.com/osmocom/python-osmo-python-tests/pkg/socket"
)

const (
	protocolVTY  = "vty"
	protocolCTRL = "ctrl"
)

// endpointOptions select the application under test and how to reach it.
type endpointOptions struct {
	Run        string           `short:"r" long:"run" value-name:"COMMAND" description:"command line launching the application to test; nothing is launched if omitted"`
	Host       string           `short:"H" long:"host" default:"localhost" description:"host to reach the application at"`
	Port       int              `short:"p" long:"port" description:"port to reach the application at"`
	Protocol   string           `short:"P" long:"protocol" choice:"vty" choice:"ctrl" default:"vty" description:"interface to talk to"`
	PromptName string           `short:"n" long:"prompt-name" description:"VTY only: application name in the prompt, detected from the banner if omitted"`
	Timeout    confopt.Duration `short:"t" long:"timeout" default:"10s" description:"time to wait for a response"`
}

func (o *endpointOptions) validate() error {
	if o.Port <= 0 || o.Port > 65535 {
		return errors.New("a valid port is required (-p)")
	}
	if o.PromptName != "" && o.Protocol != protocolVTY {
		return fmt.Errorf("--prompt-name does not apply to %s", o.Protocol)
	}
	return nil
}

func (o *endpointOptions) address() string {
	return socket.HostPort(o.Host, o.Port)
}

// target describes the endpoint. keepIDs only applies to CTRL.
func (o *endpointOptions) target(keepIDs bool) suite.Target {
	t := suite.Target{Name: o.Protocol, Run: o.Run}

	switch o.Protocol {
	case protocolCTRL:
		cfg := ctrl.Config{Address: o.address(), KeepIDs: keepIDs, Timeout: o.Timeout}
		t.NewSession = func() suite.Session { return ctrl.New(cfg) }
	default:
		cfg := vty.Config{Address: o.address(), PromptName: o.PromptName, Timeout: o.Timeout}
		t.NewSession = func() suite.Session { return vty.New(cfg) }
	}

	return t
}

func (a *App) newSuite(update, verbose bool) *suite.Suite {
	s := suite.New()
	s.Out = a.stdout
	s.Update = update
	s.Verbose = verbose
	return s
}
