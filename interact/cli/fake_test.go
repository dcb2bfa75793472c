// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"net"
	"strconv"
	"sync"
	"testing"

	"github.com/osmocom/python-osmo-python-tests/pkg/ipa"

	"github.com/stretchr/testify/require"
)

// fakeCtrl sends greeting on every connection and then answers GET and SET
// from vars. With hangup it closes the connection after the greeting.
type fakeCtrl struct {
	mu         sync.Mutex
	vars       map[string]string
	greeting   []string
	hangup     bool

	ln net.Listener
}

func newFakeCtrl(t *testing.T, vars map[string]string) *fakeCtrl {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &fakeCtrl{vars: vars, ln: ln}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go srv.serve(conn)
		}
	}()

	return srv
}

func (s *fakeCtrl) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *fakeCtrl) serve(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	s.mu.Lock()
	greeting, hangup := s.greeting, s.hangup
	s.mu.Unlock()

	for _, msg := range greeting {
		if !s.send(conn, msg) {
			return
		}
	}
	if hangup {
		return
	}

	var (
		pending []byte
		buf     = make([]byte, 4096)
	)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		pending = append(pending, buf[:n]...)

		var frames [][]byte
		frames, pending = ipa.Split(pending)
		for _, f := range frames {
			req, err := ipa.ParseCtrlFrame(f)
			if err != nil {
				return
			}
			if !s.send(conn, s.reply(req)) {
				return
			}
		}
	}
}

func (s *fakeCtrl) reply(req ipa.CtrlMessage) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Verb {
	case ipa.VerbSet:
		s.vars[req.Var] = req.Value
		return "SET_REPLY " + req.ID + " " + req.Var + " " + req.Value
	default:
		v, ok := s.vars[req.Var]
		if !ok {
			return "ERROR " + req.ID + " Command not found"
		}
		return "GET_REPLY " + req.ID + " " + req.Var + " " + v
	}
}

func (s *fakeCtrl) send(conn net.Conn, payload string) bool {
	frame, err := ipa.CtrlFrame(payload)
	if err != nil {
		return false
	}
	_, err = conn.Write(frame)
	return err == nil
}

func (s *fakeCtrl) portArg() string {
	return strconv.Itoa(s.port())
}
