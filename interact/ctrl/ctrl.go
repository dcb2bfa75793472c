// SPDX-License-Identifier: GPL-3.0-or-later

// Package ctrl drives the CTRL interface of Osmocom network elements: IPA
// framed "GET/SET <id> <variable> [<value>]" requests and their replies.
package ctrl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/osmocom/python-osmo-python-tests/interact/transcript"
	"github.com/osmocom/python-osmo-python-tests/logger"
	"github.com/osmocom/python-osmo-python-tests/pkg/ipa"
	"github.com/osmocom/python-osmo-python-tests/pkg/socket"
)

var reCommand = regexp.MustCompile(`^(SET|GET) ([^ ]*) (.*)$`)

// Session is a connection to a CTRL interface. It implements transcript.Session.
type Session struct {
	*logger.Logger
	Config

	newClient func(socket.Config) socket.Client
	client    socket.Client

	nextID int
}

func New(cfg Config) *Session {
	return &Session{
		Logger:    logger.New().With(slog.String("component", "ctrl"), slog.String("address", cfg.Address)),
		Config:    cfg,
		newClient: func(c socket.Config) socket.Client { return socket.New(c) },
	}
}

// Connect dials the CTRL interface and restarts id numbering at 1.
func (s *Session) Connect(ctx context.Context) error {
	if s.client != nil {
		return errors.New("ctrl: already connected")
	}

	client := s.newClient(socket.Config{Address: s.Address})
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("%w: %w", transcript.ErrConnection, err)
	}
	s.client = client
	s.nextID = 1

	return nil
}

// Close closes the connection. Safe to call when not connected.
func (s *Session) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect()
	s.client = nil
	return err
}

func (s *Session) ParseStep(line string) (transcript.Step, bool) {
	if !reCommand.MatchString(line) {
		return transcript.Step{}, false
	}
	return transcript.Step{Command: line, Kind: transcript.Ctrl{}}, true
}

// CheckState only checks the step kind, CTRL has no session state to compare.
func (s *Session) CheckState(step transcript.Step) error {
	if _, ok := step.Kind.(transcript.Ctrl); !ok {
		return fmt.Errorf("ctrl: unexpected step kind %T", step.Kind)
	}
	return nil
}

// Exec sends the step's command, with its id replaced by the next local id
// unless KeepIDs is set. The returned line is the command as sent.
func (s *Session) Exec(ctx context.Context, step transcript.Step) (transcript.Exchange, error) {
	command := step.Command
	if !s.KeepIDs {
		command = rewriteID(command, s.nextID)
		s.nextID++
	}

	lines, err := s.Command(ctx, command)
	if err != nil {
		return transcript.Exchange{}, err
	}

	return transcript.Exchange{Line: command, Lines: lines}, nil
}

// Command sends one framed command and returns the lines of every frame
// received in reply.
func (s *Session) Command(ctx context.Context, command string) ([]string, error) {
	if s.client == nil {
		return nil, socket.ErrNotConnected
	}

	frame, err := ipa.CtrlFrame(command)
	if err != nil {
		return nil, err
	}
	if err := s.client.Write(frame); err != nil {
		return nil, fmt.Errorf("%w: write %q: %w", transcript.ErrUnresponsive, command, err)
	}

	var buf []byte
	err = s.client.Poll(ctx, s.timeout(), func(chunk []byte) (bool, error) {
		buf = append(buf, chunk...)
		return ipa.Complete(buf), nil
	})
	if err != nil {
		if errors.Is(err, socket.ErrTimeout) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %q: %w", transcript.ErrUnresponsive, command, err)
		}
		return nil, err
	}

	frames, _ := ipa.Split(buf)

	var lines []string
	for _, f := range frames {
		payload, err := ipa.CtrlPayload(f)
		if err != nil {
			return nil, err
		}
		lines = append(lines, splitLines(strings.ToValidUTF8(payload, "�"))...)
	}

	return lines, nil
}

// rewriteID replaces the id of a "SET|GET <id> <rest>" command.
func rewriteID(command string, id int) string {
	m := reCommand.FindStringSubmatch(command)
	if m == nil {
		return command
	}
	return m[1] + " " + strconv.Itoa(id) + " " + m[3]
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
