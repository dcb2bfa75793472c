// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/osmocom/python-osmo-python-tests/interact/ctrl"
	"github.com/osmocom/python-osmo-python-tests/pkg/confopt"
	"github.com/osmocom/python-osmo-python-tests/pkg/ipa"
	"github.com/osmocom/python-osmo-python-tests/pkg/socket"
)

type ctrlOptions struct {
	Host    string           `short:"H" long:"host" default:"localhost" description:"host of the CTRL interface"`
	Port    int              `short:"p" long:"port" default:"4249" description:"port of the CTRL interface"`
	Timeout confopt.Duration `short:"t" long:"timeout" default:"10s" description:"time to wait for a reply"`
}

func (o *ctrlOptions) client() *ctrl.Client {
	return ctrl.NewClient(ctrl.Config{Address: socket.HostPort(o.Host, o.Port), Timeout: o.Timeout})
}

const ctrlLong = `Send a single GET or SET with a random id, or print every message the
application sends. TRAPs received meanwhile are printed as well.

Example:
  osmo-interact ctrl -p 4249 get bts.0.oml-connection-state
  osmo-interact ctrl set mnc 42`

type ctrlCommand struct {
	ctrlOptions

	Get     ctrlGetCommand     `command:"get" description:"GET a variable"`
	Set     ctrlSetCommand     `command:"set" description:"SET a variable"`
	Monitor ctrlMonitorCommand `command:"monitor" description:"print incoming messages until the connection is closed"`
}

func newCtrlCommand(a *App) *ctrlCommand {
	c := &ctrlCommand{}
	c.Get.app, c.Get.opts = a, &c.ctrlOptions
	c.Set.app, c.Set.opts = a, &c.ctrlOptions
	c.Monitor.app, c.Monitor.opts = a, &c.ctrlOptions
	return c
}

type ctrlGetCommand struct {
	app  *App
	opts *ctrlOptions

	Args struct {
		Var string `positional-arg-name:"VAR" required:"yes"`
	} `positional-args:"yes"`
}

func (c *ctrlGetCommand) Execute([]string) error {
	return c.app.ctrlRequest(c.opts, func(cl *ctrl.Client) (ipa.CtrlMessage, error) {
		return cl.Get(c.app.ctx, c.Args.Var)
	})
}

type ctrlSetCommand struct {
	app  *App
	opts *ctrlOptions

	Args struct {
		Var   string   `positional-arg-name:"VAR" required:"yes"`
		Value []string `positional-arg-name:"VALUE" required:"1"`
	} `positional-args:"yes"`
}

func (c *ctrlSetCommand) Execute([]string) error {
	return c.app.ctrlRequest(c.opts, func(cl *ctrl.Client) (ipa.CtrlMessage, error) {
		return cl.Set(c.app.ctx, c.Args.Var, strings.Join(c.Args.Value, " "))
	})
}

func (a *App) ctrlRequest(opts *ctrlOptions, do func(*ctrl.Client) (ipa.CtrlMessage, error)) error {
	cl := opts.client()
	cl.OnMessage = a.printMessage

	if err := cl.Connect(a.ctx); err != nil {
		return err
	}
	defer func() { _ = cl.Close() }()

	reply, err := do(cl)
	if reply.Verb != "" {
		a.printMessage(reply.String())
	}
	return err
}

type ctrlMonitorCommand struct {
	app  *App
	opts *ctrlOptions
}

func (c *ctrlMonitorCommand) Execute([]string) error {
	cl := c.opts.client()
	if err := cl.Connect(c.app.ctx); err != nil {
		return err
	}
	defer func() { _ = cl.Close() }()

	err := cl.Monitor(c.app.ctx, func(m ipa.CtrlMessage) { c.app.printMessage(m.String()) })
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(c.app.stdout, "Connection is gone.")
	return err
}

func (a *App) printMessage(payload string) {
	if _, err := fmt.Fprintf(a.stdout, "Got message: %s\n", payload); err != nil {
		a.Debugf("print: %v", err)
	}
}

const ratectrLong = `Read every rate counter group over CTRL and print one CSV row per counter:
group, counter, absolute, second, minute, hour, day.

Example:
  osmo-interact ratectr -p 4249 --header -o counters.csv`

type ratectrCommand struct {
	app *App

	Host    string           `short:"H" long:"host" default:"localhost" description:"host of the CTRL interface"`
	Port    int              `short:"p" long:"port" default:"4249" description:"port of the CTRL interface"`
	Timeout confopt.Duration `short:"t" long:"timeout" default:"10s" description:"time to wait for a reply"`
	Header  bool             `long:"header" description:"prepend the column header"`
	Output  string           `short:"o" long:"output" value-name:"FILE" description:"output file, defaults to stdout"`
}

func (c *ratectrCommand) Execute([]string) (err error) {
	opts := ctrlOptions{Host: c.Host, Port: c.Port, Timeout: c.Timeout}
	cl := opts.client()
	if err := cl.Connect(c.app.ctx); err != nil {
		return err
	}
	defer func() { _ = cl.Close() }()

	counters, err := cl.RateCounters(c.app.ctx)
	if err != nil {
		return err
	}

	var w io.Writer = c.app.stdout
	if c.Output != "" && c.Output != "-" {
		f, ferr := os.Create(c.Output)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	c.app.Infof("writing %d rate counters", len(counters))

	return ctrl.WriteRateCountersCSV(w, counters, c.Header)
}
