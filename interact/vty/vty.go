// SPDX-License-Identifier: GPL-3.0-or-later

// Package vty drives the telnet-style configuration shell of Osmocom
// network elements.
package vty

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/osmocom/python-osmo-python-tests/interact/transcript"
	"github.com/osmocom/python-osmo-python-tests/logger"
	"github.com/osmocom/python-osmo-python-tests/pkg/socket"
)

const (
	cancelCommand = "\x03"
	// initialPromptChar is assumed before the first prompt was seen.
	initialPromptChar = '>'
)

type state struct {
	node       string
	promptChar byte
}

// Session is a connection to a VTY. It implements transcript.Session.
type Session struct {
	*logger.Logger
	Config

	newClient func(socket.Config) socket.Client
	client    socket.Client

	promptName string
	rePrompt   *regexp.Regexp

	cur state
}

func New(cfg Config) *Session {
	return &Session{
		Logger:    logger.New().With(slog.String("component", "vty"), slog.String("address", cfg.Address)),
		Config:    cfg,
		newClient: func(c socket.Config) socket.Client { return socket.New(c) },
	}
}

// Connect dials the VTY, reads the banner and, unless configured, derives the
// application name used in the prompt from it.
func (s *Session) Connect(ctx context.Context) error {
	if s.client != nil {
		return errors.New("vty: already connected")
	}

	client := s.newClient(socket.Config{Address: s.Address})
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("%w: %w", transcript.ErrConnection, err)
	}
	s.client = client
	s.cur = state{promptChar: initialPromptChar}

	banner, err := s.readBanner(ctx)
	if err != nil {
		_ = s.Close()
		return err
	}

	name := s.Config.PromptName
	if name == "" {
		if name, err = detectPromptName(banner); err != nil {
			_ = s.Close()
			return err
		}
		s.Debugf("detected prompt name %q", name)
	}
	s.promptName = name
	s.rePrompt = promptRegexp(name)

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

// PromptName returns the application name in use for prompt recognition.
func (s *Session) PromptName() string { return s.promptName }

// Node returns the node and prompt character of the last received prompt.
func (s *Session) Node() (string, byte) { return s.cur.node, s.cur.promptChar }

// Command sends one command and returns the response lines without echo and
// prompt. A command ending in '?' is followed by a Ctrl-C to discard the
// pending input line.
func (s *Session) Command(ctx context.Context, command string) ([]string, error) {
	if s.client == nil {
		return nil, socket.ErrNotConnected
	}

	command = terminate(command)

	lines, err := s.exchange(ctx, command)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(command, "?") {
		if _, err := s.exchange(ctx, cancelCommand); err != nil {
			return nil, err
		}
	}

	return lines, nil
}

// ParseStep recognizes a prompt line. It only recognizes steps once connected,
// since the prompt name may come from the banner.
func (s *Session) ParseStep(line string) (transcript.Step, bool) {
	if s.rePrompt == nil {
		return transcript.Step{}, false
	}
	m := s.rePrompt.FindStringSubmatch(line)
	if m == nil {
		return transcript.Step{}, false
	}
	return transcript.Step{
		Command: m[3],
		Kind:    transcript.Vty{Node: m[1], PromptChar: m[2][0]},
	}, true
}

// CheckState compares the prompt seen after the previous command with the
// prompt the step was recorded with.
func (s *Session) CheckState(step transcript.Step) error {
	kind, ok := step.Kind.(transcript.Vty)
	if !ok {
		return fmt.Errorf("vty: unexpected step kind %T", step.Kind)
	}
	if s.cur.node != kind.Node {
		return fmt.Errorf("%w: expected VTY node %q in the prompt, got %q",
			transcript.ErrStateMismatch, kind.Node, s.cur.node)
	}
	if s.cur.promptChar != kind.PromptChar {
		return fmt.Errorf("%w: expected VTY prompt character %q, got %q",
			transcript.ErrStateMismatch, kind.PromptChar, s.cur.promptChar)
	}
	return nil
}

// Exec runs the step's command. The returned line carries the prompt that
// preceded the command.
func (s *Session) Exec(ctx context.Context, step transcript.Step) (transcript.Exchange, error) {
	prev := s.cur

	lines, err := s.Command(ctx, step.Command)
	if err != nil {
		return transcript.Exchange{}, err
	}

	return transcript.Exchange{
		Line:  s.render(prev, step.Command),
		Lines: lines,
	}, nil
}

func (s *Session) render(st state, command string) string {
	var sb strings.Builder
	sb.WriteString(s.promptName)
	if st.node != "" {
		sb.WriteString("(" + st.node + ")")
	}
	sb.WriteByte(st.promptChar)
	sb.WriteByte(' ')
	sb.WriteString(command)
	return sb.String()
}

func (s *Session) exchange(ctx context.Context, command string) ([]string, error) {
	if err := s.client.Write([]byte(command)); err != nil {
		return nil, fmt.Errorf("%w: write %q: %w", transcript.ErrUnresponsive, command, err)
	}

	var (
		lines   []string
		partial string
		prompt  []string
	)

	err := s.client.Poll(ctx, s.timeout(), func(chunk []byte) (bool, error) {
		// The target separates log lines with "\n\r", so only '\n' is a line break.
		partial += strings.ReplaceAll(string(chunk), "\r", "")
		parts := strings.Split(partial, "\n")
		lines = append(lines, parts[:len(parts)-1]...)
		partial = parts[len(parts)-1]

		prompt = s.rePrompt.FindStringSubmatch(partial)
		return prompt != nil, nil
	})
	if err != nil {
		if errors.Is(err, socket.ErrTimeout) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %q: %w", transcript.ErrUnresponsive, strings.TrimSpace(command), err)
		}
		return nil, err
	}

	s.cur = state{node: prompt[1], promptChar: prompt[2][0]}

	for i, line := range lines {
		lines[i] = strings.ToValidUTF8(line, "�")
	}

	echo := strings.TrimSuffix(strings.TrimSpace(command), "?")
	if len(lines) > 0 && lines[0] == echo {
		lines = lines[1:]
	}

	return lines, nil
}

func (s *Session) readBanner(ctx context.Context) ([]byte, error) {
	var banner []byte

	err := s.client.Poll(ctx, s.timeout(), func(chunk []byte) (bool, error) {
		banner = append(banner, chunk...)
		last := banner[strings.LastIndexByte(string(banner), '\n')+1:]
		return strings.IndexByte(string(last), '>') > 0, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reading banner: %w", transcript.ErrUnresponsive, err)
	}

	return banner, nil
}

// detectPromptName takes the text up to the first '>' of the banner's last
// line, skipping leading bytes outside 'A'..'z'.
func detectPromptName(banner []byte) (string, error) {
	b := banner[strings.LastIndexByte(string(banner), '\n')+1:]
	for len(b) > 0 && (b[0] < 'A' || b[0] > 'z') {
		b = b[1:]
	}

	if i := strings.IndexByte(string(b), '>'); i > 0 {
		return string(b[:i]), nil
	}

	return "", fmt.Errorf("%w; initial data was: %q", transcript.ErrPromptDetection, banner)
}

func promptRegexp(name string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(name) + `(?:\(([\w-]*)\))?([#>]) (.*)$`)
}

// terminate appends the carriage return submitting a command, unless the
// command ends in '?', '\r' or '\t' already.
func terminate(command string) string {
	if command == "" {
		return "\r"
	}
	switch command[len(command)-1] {
	case '?', '\r', '\t':
		return command
	default:
		return command + "\r"
	}
}
