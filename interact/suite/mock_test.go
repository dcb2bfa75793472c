// SPDX-License-Identifier: GPL-3.0-or-later

package suite

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/osmocom/python-osmo-python-tests/interact/transcript"
)

// mockSession recognizes "> <command>" lines and answers from responses.
type mockSession struct {
	responses   map[string][]string
	failConnect bool
	failCommand string

	connects int
	closes   int
	sent     []string
}

func (m *mockSession) ParseStep(line string) (transcript.Step, bool) {
	cmd, ok := strings.CutPrefix(line, "> ")
	if !ok {
		return transcript.Step{}, false
	}
	return transcript.Step{Command: cmd, Kind: transcript.Ctrl{}}, true
}

func (m *mockSession) CheckState(transcript.Step) error { return nil }

func (m *mockSession) Exec(ctx context.Context, step transcript.Step) (transcript.Exchange, error) {
	lines, err := m.Command(ctx, step.Command)
	if err != nil {
		return transcript.Exchange{}, err
	}
	return transcript.Exchange{Line: step.Line, Lines: lines}, nil
}

func (m *mockSession) Connect(context.Context) error {
	if m.failConnect {
		return transcript.ErrConnection
	}
	m.connects++
	return nil
}

func (m *mockSession) Close() error {
	m.closes++
	return nil
}

func (m *mockSession) Command(_ context.Context, command string) ([]string, error) {
	m.sent = append(m.sent, command)
	if command == m.failCommand {
		return nil, transcript.ErrUnresponsive
	}
	if lines, ok := m.responses[command]; ok {
		return lines, nil
	}
	return []string{"% Unknown command."}, nil
}

func (m *mockSession) target() Target {
	return Target{Name: "mock", NewSession: func() Session { return m }}
}

var errWrite = errors.New("write failed")

// syncBuffer is written by the code under test and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func newTestSuite(out *syncBuffer) *Suite {
	s := New()
	s.Out = out
	return s
}
