// SPDX-License-Identifier: GPL-3.0-or-later

// Package cli defines the osmo-interact command line and runs its commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jessevdk/go-flags"

	"github.com/osmocom/python-osmo-python-tests/logger"
	"github.com/osmocom/python-osmo-python-tests/pkg/buildinfo"
	"github.com/osmocom/python-osmo-python-tests/pkg/executable"
)

// Option defines the command line options shared by all commands.
type Option struct {
	Debug   bool `short:"d" long:"debug" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"display the version and exit"`
}

// App parses the command line and runs the selected command.
type App struct {
	*logger.Logger

	opt    Option
	ctx    context.Context
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	parser *flags.Parser
}

func New(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) *App {
	a := &App{
		Logger: logger.New().With(slog.String("component", "cli")),
		ctx:    ctx,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	p := flags.NewParser(&a.opt, flags.HelpFlag|flags.PassDoubleDash)
	p.Name = executable.Name
	p.SubcommandsOptional = true
	p.CommandHandler = a.handle

	a.parser = p
	a.addCommands()

	return a
}

// Run parses args, runs the command and returns the process exit code.
func (a *App) Run(args []string) int {
	_, err := a.parser.ParseArgs(args)
	if err == nil {
		return 0
	}

	var ferr *flags.Error
	if errors.As(err, &ferr) {
		if ferr.Type == flags.ErrHelp {
			_, _ = fmt.Fprintln(a.stdout, ferr.Message)
			return 0
		}
		_, _ = fmt.Fprintln(a.stderr, ferr.Message)
		return 2
	}

	var eerr *exitError
	if errors.As(err, &eerr) {
		if eerr.msg != "" {
			a.Error(eerr.msg)
		}
		return eerr.code
	}

	a.Error(err)
	return 1
}

func IsHelp(err error) bool {
	return flags.WroteHelp(err)
}

func (a *App) handle(cmd flags.Commander, args []string) error {
	if a.opt.Debug {
		logger.Level.Set(slog.LevelDebug)
	}

	if a.opt.Version {
		_, err := fmt.Fprintln(a.stdout, buildinfo.Info(executable.Name))
		return err
	}

	if cmd == nil {
		return &flags.Error{Type: flags.ErrCommandRequired, Message: "Please specify a command, see --help"}
	}

	return cmd.Execute(args)
}

func (a *App) addCommands() {
	commands := []struct {
		name, short, long string
		data              any
	}{
		{"run", "Send commands to a running or launched application", runLong, &runCommand{app: a}},
		{"verify", "Verify or update transcripts", verifyLong, &verifyCommand{app: a}},
		{"exec", "Run test programs against a launched application", execLong, &execCommand{app: a}},
		{"ctrl", "Get, set or monitor CTRL variables", ctrlLong, newCtrlCommand(a)},
		{"ratectr", "Dump all rate counters as CSV", ratectrLong, &ratectrCommand{app: a}},
		{"dumpdoc", "Write the VTY reference of every configured application", dumpdocLong, &dumpdocCommand{app: a}},
		{"suite", "Verify all transcripts of a suite file", suiteLong, &suiteCommand{app: a}},
	}

	for _, c := range commands {
		if _, err := a.parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			panic(fmt.Sprintf("cli: add command '%s': %v", c.name, err))
		}
	}
}

// exitError ends the program with a specific exit code. Its message, if any,
// is logged; the report was already printed.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
