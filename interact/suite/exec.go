// SPDX-License-Identifier: GPL-3.0-or-later

package suite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/osmocom/python-osmo-python-tests/interact/process"
	"github.com/osmocom/python-osmo-python-tests/interact/transcript"
	"github.com/osmocom/python-osmo-python-tests/logger"
	"github.com/osmocom/python-osmo-python-tests/pkg/socket"
)

// Exec is an Interactor that runs test programs once the target accepts
// connections. Every command is the path of a program, without arguments.
type Exec struct {
	*logger.Logger

	Address string
	// Out receives the program output as it is run.
	Out io.Writer

	newClient func(socket.Config) socket.Client
}

func NewExec(address string) *Exec {
	return &Exec{
		Logger:    logger.New().With(slog.String("component", "exec"), slog.String("address", address)),
		Address:   address,
		Out:       os.Stdout,
		newClient: func(c socket.Config) socket.Client { return socket.New(c) },
	}
}

// Connect waits until the target listens on Address.
func (e *Exec) Connect(ctx context.Context) error {
	client := e.newClient(socket.Config{Address: e.Address})
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("%w: %w", transcript.ErrConnection, err)
	}
	return client.Disconnect()
}

func (e *Exec) Close() error { return nil }

// Command runs the program and returns "$ <program>" followed by its output
// lines. A program exiting non-zero is an error.
func (e *Exec) Command(ctx context.Context, program string) ([]string, error) {
	program = strings.TrimSpace(program)

	e.printf("Launching: %s\n", program)

	out, err := process.RunProgram(ctx, e.Logger, program)
	if err != nil {
		e.printf("%s\n---\n", out)
		return nil, err
	}
	e.printf("%s\n", out)

	return strings.Split("$ "+program+"\n"+string(out), "\n"), nil
}

func (e *Exec) printf(format string, a ...any) {
	if _, err := fmt.Fprintf(e.Out, format, a...); err != nil {
		e.Debugf("print: %v", err)
	}
}
