// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/osmocom/python-osmo-python-tests/interact/config"
	"github.com/osmocom/python-osmo-python-tests/interact/suite"
	"github.com/osmocom/python-osmo-python-tests/pkg/socket"
)

const onlineHelpCommand = "show online-help"

const runLong = `Connect to the application, optionally launching it first, send commands
and print every response. Commands come from -c, then from command files,
or else from stdin, one or more ';' separated commands per line.

Example:
  osmo-interact run -p 4242 -c 'enable;show running-config'
  osmo-interact run -P ctrl -p 4249 -c 'GET 1 bts.0.oml-connection-state'`

type runCommand struct {
	app *App
	endpointOptions

	Output    string `short:"O" long:"output" value-name:"FILE" description:"write command results to FILE instead of stdout ('-' is stdout)"`
	Command   string `short:"c" long:"command" description:"run these ';' separated commands before reading command files, if any"`
	GenXMLRef bool   `short:"X" long:"gen-xml-ref" description:"VTY only: same as -c 'show online-help'"`
	Verbose   bool   `short:"v" long:"verbose" description:"print the launched application's output"`
	Args      struct {
		CmdFiles []string `positional-arg-name:"CMD_FILE" description:"file with one command per line"`
	} `positional-args:"yes"`
}

func (c *runCommand) Execute([]string) error {
	if err := c.validate(); err != nil {
		return err
	}

	cmds := suite.Commands{Inline: c.Command, Files: c.Args.CmdFiles, Stdin: c.app.stdin}

	if c.GenXMLRef {
		if c.Protocol != protocolVTY {
			return errors.New("-X applies to the VTY only")
		}
		if c.Command != "" {
			return errors.New("-X and -c are mutually exclusive")
		}
		cmds.Inline = onlineHelpCommand
	}

	t := c.target(true)
	return c.app.newSuite(false, c.Verbose).Run(c.app.ctx, t, t.NewSession(), cmds, c.Output)
}

const verifyLong = `Run transcripts against the application and compare every response with
the recorded one. With --update, rewrite the transcripts to the current
behavior instead. A fresh application is launched for every transcript.

Example:
  osmo-interact verify -r 'osmo-bsc -c bsc.cfg' -p 4242 tests/*.vty`

type verifyCommand struct {
	app *App
	endpointOptions

	Update  bool `short:"u" long:"update" description:"do not verify, but OVERWRITE transcripts based on the application's current behavior"`
	Verbose bool `short:"v" long:"verbose" description:"print commands and application output"`
	KeepIDs bool `short:"i" long:"keep-ids" description:"CTRL only: with --update, keep the ids recorded in the transcripts"`
	Watch   bool `short:"w" long:"watch" description:"keep running and verify transcripts again when they change"`
	Args    struct {
		Transcripts []string `positional-arg-name:"TRANSCRIPT" required:"1" description:"transcript files or globs"`
	} `positional-args:"yes"`
}

func (c *verifyCommand) Execute([]string) error {
	if err := c.validate(); err != nil {
		return err
	}
	if c.KeepIDs && c.Protocol != protocolCTRL {
		return errors.New("--keep-ids applies to CTRL only")
	}
	if c.Watch && c.Update {
		return errors.New("--watch and --update are mutually exclusive")
	}

	files, err := config.ExpandGlobs(c.Args.Transcripts)
	if err != nil {
		return err
	}

	s := c.app.newSuite(c.Update, c.Verbose)
	// recorded ids are only replaced when rewriting
	t := c.target(c.KeepIDs || !c.Update)

	if c.Watch {
		return s.Watch(c.app.ctx, t, files)
	}

	return c.app.summarize(s.Verify(c.app.ctx, t, files))
}

func (a *App) summarize(results suite.Results) error {
	if err := results.WriteSummary(a.stdout); err != nil {
		return err
	}
	if !results.Passed() {
		return &exitError{code: 1, msg: fmt.Sprintf("%d of %d transcript(s) failed", results.Failed(), len(results))}
	}
	return nil
}

const execLong = `Launch the application, wait until it accepts connections on the port and
run test programs against it. Programs take no arguments; several are
separated by ';'. The first failing program fails the run.

Example:
  osmo-interact exec -r 'osmo-hlr -c hlr.cfg' -p 4222 -c tests/gsup_client_session_test`

type execCommand struct {
	app *App

	Run     string `short:"r" long:"run" value-name:"COMMAND" required:"yes" description:"command line launching the application to test"`
	Host    string `short:"H" long:"host" default:"localhost" description:"host to reach the application at"`
	Port    int    `short:"p" long:"port" required:"yes" description:"port the application listens on once it is ready"`
	Command string `short:"c" long:"command" required:"yes" description:"';' separated programs to run"`
	Output  string `short:"O" long:"output" value-name:"FILE" description:"write the program results to FILE instead of stdout ('-' is stdout)"`
	Verbose bool   `short:"v" long:"verbose" description:"print the launched application's output"`
}

func (c *execCommand) Execute([]string) error {
	e := suite.NewExec(socket.HostPort(c.Host, c.Port))
	e.Out = c.app.stdout

	t := suite.Target{Name: "exec", Run: c.Run}
	return c.app.newSuite(false, c.Verbose).Run(c.app.ctx, t, e, suite.Commands{Inline: c.Command}, c.Output)
}
