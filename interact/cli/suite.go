// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/osmocom/python-osmo-python-tests/interact/config"
	"github.com/osmocom/python-osmo-python-tests/interact/suite"
)

const defaultDocDir = "doc"

const dumpdocLong = `Start every application of the suite file that has a VTY, one after the
other, and write its 'show online-help' output to
<doc dir>/<name>_vty_reference.xml. The exit code is the number of
applications that were skipped.`

type dumpdocCommand struct {
	app *App

	Config  string `short:"C" long:"config" required:"yes" value-name:"FILE" description:"suite file (YAML, or INI if it ends in .ini or .conf)"`
	DocDir  string `short:"o" long:"doc-dir" value-name:"DIR" description:"output directory, defaults to doc_dir of the suite file or 'doc'"`
	Verbose bool   `short:"v" long:"verbose" description:"print the launched applications' output"`
}

func (c *dumpdocCommand) Execute([]string) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}

	dir, err := c.docDir(cfg)
	if err != nil {
		return err
	}

	targets := suite.DocTargets(cfg)
	if len(targets) == 0 {
		return errors.New("no target has a vty")
	}

	failures, successes, err := c.app.newSuite(false, c.Verbose).DumpDoc(c.app.ctx, targets, dir)
	if err != nil {
		return err
	}

	if failures == 0 {
		return nil
	}
	msg := fmt.Sprintf("Warning: Skipped %d apps", failures)
	if successes == 0 {
		msg += "; nothing run, wrong working dir?"
	}
	return &exitError{code: failures, msg: msg}
}

func (c *dumpdocCommand) docDir(cfg *config.Suite) (string, error) {
	switch {
	case c.DocDir != "":
		return c.DocDir, nil
	case cfg.DocDir != "":
		return cfg.Resolve(cfg.DocDir)
	default:
		return cfg.Resolve(defaultDocDir)
	}
}

const suiteLong = `Verify, or with --update rewrite, every transcript of every application in
the suite file. Every transcript gets a freshly launched application and
one summary covers them all.

Example suite file:
  host: localhost
  targets:
    - name: osmo-bsc
      run: osmo-bsc -c osmo-bsc.cfg
      vty:
        port: 4242
        transcripts: ["tests/*.vty"]
      ctrl:
        port: 4249
        transcripts: ["tests/*.ctrl"]`

type suiteCommand struct {
	app *App

	Config  string `short:"C" long:"config" required:"yes" value-name:"FILE" description:"suite file (YAML, or INI if it ends in .ini or .conf)"`
	Update  bool   `short:"u" long:"update" description:"do not verify, but OVERWRITE transcripts based on the applications' current behavior"`
	Verbose bool   `short:"v" long:"verbose" description:"print commands and application output"`
}

func (c *suiteCommand) Execute([]string) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	c.app.Debugf("suite: %s", cfg)

	jobs, err := suite.Jobs(cfg, c.Update)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return errors.New("no transcripts configured")
	}

	return c.app.summarize(c.app.newSuite(c.Update, c.Verbose).VerifyJobs(c.app.ctx, jobs))
}
