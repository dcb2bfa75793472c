// SPDX-License-Identifier: GPL-3.0-or-later

package ctrl

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/osmocom/python-osmo-python-tests/pkg/ipa"
	"github.com/osmocom/python-osmo-python-tests/pkg/socket"

	"github.com/stretchr/testify/require"
)

// fakeCtrl is a CTRL interface answering GET from vars and SET with setReply.
type fakeCtrl struct {
	addr string

	mu       sync.Mutex
	vars     map[string]string
	setReply func(variable, value string) string
	// trapsBefore are sent in the same write, ahead of every reply.
	trapsBefore []string
	// splitWrites sends every reply in two writes.
	splitWrites bool
	// onConnect is sent right after accepting, then the connection is closed
	// if closeAfter is set.
	onConnect  []string
	closeAfter bool
	recv       []string
}

func newFakeCtrl(t *testing.T) *fakeCtrl {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	srv := &fakeCtrl{
		addr:     ln.Addr().String(),
		vars:     make(map[string]string),
		setReply: func(string, string) string { return "OK" },
	}

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

func (f *fakeCtrl) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.recv...)
}

func (f *fakeCtrl) serve(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	f.mu.Lock()
	greet, closeAfter := f.onConnect, f.closeAfter
	f.mu.Unlock()

	for _, payload := range greet {
		if _, err := conn.Write(mustFrame(payload)); err != nil {
			return
		}
	}
	if closeAfter {
		return
	}

	var pending []byte
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		pending = append(pending, buf[:n]...)

		frames, rest := ipa.Split(pending)
		pending = rest

		for _, frame := range frames {
			req, err := ipa.ParseCtrlFrame(frame)
			if err != nil {
				return
			}
			if err := f.reply(conn, req); err != nil {
				return
			}
		}
	}
}

func (f *fakeCtrl) reply(conn net.Conn, req ipa.CtrlMessage) error {
	f.mu.Lock()
	f.recv = append(f.recv, req.String())

	var resp ipa.CtrlMessage
	switch req.Verb {
	case ipa.VerbGet:
		if v, ok := f.vars[req.Var]; ok {
			resp = ipa.CtrlMessage{Verb: ipa.VerbGetReply, ID: req.ID, Var: req.Var, Value: v}
		} else {
			resp = ipa.CtrlMessage{Verb: ipa.VerbError, ID: req.ID, Value: "Command not found"}
		}
	case ipa.VerbSet:
		f.vars[req.Var] = req.Value
		resp = ipa.CtrlMessage{Verb: ipa.VerbSetReply, ID: req.ID, Var: req.Var, Value: f.setReply(req.Var, req.Value)}
	default:
		resp = ipa.CtrlMessage{Verb: ipa.VerbError, ID: req.ID, Value: "Command parser error."}
	}

	var out []byte
	for _, trap := range f.trapsBefore {
		out = append(out, mustFrame(trap)...)
	}
	out = append(out, mustFrame(resp.String())...)
	split := f.splitWrites
	f.mu.Unlock()

	if split {
		half := len(out) / 2
		if _, err := conn.Write(out[:half]); err != nil {
			return err
		}
		time.Sleep(30 * time.Millisecond)
		out = out[half:]
	}
	_, err := conn.Write(out)
	return err
}

func mustFrame(payload string) []byte {
	b, err := ipa.CtrlFrame(payload)
	if err != nil {
		panic(err)
	}
	return b
}

func testSocket(c socket.Config) socket.Client {
	c.ConnectAttempts = 2
	c.RetryInterval = 10 * time.Millisecond
	c.PollInterval = 10 * time.Millisecond
	return socket.New(c)
}
