// SPDX-License-Identifier: GPL-3.0-or-later

package ctrl

import (
	"context"
	"net"
	"testing"

	"github.com/osmocom/python-osmo-python-tests/interact/transcript"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const setGetTranscript = "SET 1 var val\nSET_REPLY 1 var OK\n\nGET 2 var\nGET_REPLY 2 var val\n"

func TestRewriteID(t *testing.T) {
	tests := map[string]struct {
		command string
		id      int
		want    string
	}{
		"set":            {command: "SET 99 a x", id: 1, want: "SET 1 a x"},
		"get":            {command: "GET 5 b", id: 2, want: "GET 2 b"},
		"value w/ space": {command: "SET 7 a x y z", id: 3, want: "SET 3 a x y z"},
		"not a command":  {command: "TRAP 0 a b", id: 4, want: "TRAP 0 a b"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.want, rewriteID(test.command, test.id))
		})
	}
}

func TestSession_ParseStep(t *testing.T) {
	s := New(Config{})

	tests := map[string]struct {
		line   string
		wantOK bool
	}{
		"set":        {line: "SET 1 var val", wantOK: true},
		"get":        {line: "GET 2 var", wantOK: true},
		"reply":      {line: "GET_REPLY 2 var val"},
		"error":      {line: "ERROR 3 Command not found"},
		"get no var": {line: "GET 2"},
		"lower case": {line: "get 2 var"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			step, ok := s.ParseStep(test.line)

			assert.Equal(t, test.wantOK, ok)
			if ok {
				assert.Equal(t, test.line, step.Command)
				assert.Equal(t, transcript.Ctrl{}, step.Kind)
			}
		})
	}
}

func TestSession_IDRewriting(t *testing.T) {
	tests := map[string]struct {
		keepIDs  bool
		wantSent []string
		want     string
	}{
		"ids renumbered from 1": {
			wantSent: []string{"SET 1 a x", "SET 2 b y"},
			want:     "SET 1 a x\nSET_REPLY 1 a OK\nSET 2 b y\nSET_REPLY 2 b OK\n",
		},
		"ids kept": {
			keepIDs:  true,
			wantSent: []string{"SET 99 a x", "SET 5 b y"},
			want:     "SET 99 a x\nSET_REPLY 99 a OK\nSET 5 b y\nSET_REPLY 5 b OK\n",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			srv := newFakeCtrl(t)

			s := New(Config{Address: srv.addr, KeepIDs: test.keepIDs})
			s.newClient = testSocket
			require.NoError(t, s.Connect(context.Background()))
			defer func() { _ = s.Close() }()

			out, err := transcript.NewRunner(s, true).RunText(context.Background(), "SET 99 a x\nSET 5 b y\n")
			require.NoError(t, err)

			assert.Equal(t, test.wantSent, srv.received())
			assert.Equal(t, test.want, out.String())
		})
	}
}

func TestSession_IDsRestartOnConnect(t *testing.T) {
	srv := newFakeCtrl(t)

	s := New(Config{Address: srv.addr})
	s.newClient = testSocket

	for i := 0; i < 2; i++ {
		require.NoError(t, s.Connect(context.Background()))
		_, err := transcript.NewRunner(s, true).RunText(context.Background(), "GET 7 a\n")
		require.NoError(t, err)
		require.NoError(t, s.Close())
	}

	assert.Equal(t, []string{"GET 1 a", "GET 1 a"}, srv.received())
}

func TestSession_Transcript(t *testing.T) {
	tests := map[string]struct {
		text    string
		update  bool
		prepare func(*fakeCtrl)
		wantErr error
		want    string
	}{
		"verify passes": {
			text: setGetTranscript,
		},
		"update keeps the blank line": {
			text:   setGetTranscript,
			update: true,
			want:   setGetTranscript,
		},
		"verify fails on a different reply": {
			text:    setGetTranscript,
			prepare: func(f *fakeCtrl) { f.setReply = func(string, string) string { return "ERR" } },
			wantErr: transcript.ErrLineMismatch,
		},
		"trap is part of the response": {
			text:    "GET 1 var\nTRAP 0 bts.0 up\nGET_REPLY 1 var 5\n",
			prepare: func(f *fakeCtrl) { f.vars["var"] = "5"; f.trapsBefore = []string{"TRAP 0 bts.0 up"} },
		},
		"reply split over two reads": {
			text:    setGetTranscript,
			prepare: func(f *fakeCtrl) { f.splitWrites = true },
		},
		"error reply": {
			text: "GET 1 missing\nERROR 1 Command not found\n",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			srv := newFakeCtrl(t)
			if test.prepare != nil {
				srv.mu.Lock()
				test.prepare(srv)
				srv.mu.Unlock()
			}

			s := New(Config{Address: srv.addr, KeepIDs: !test.update})
			s.newClient = testSocket
			require.NoError(t, s.Connect(context.Background()))
			defer func() { _ = s.Close() }()

			out, err := transcript.NewRunner(s, test.update).RunText(context.Background(), test.text)

			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
				return
			}
			require.NoError(t, err)
			if test.want != "" {
				assert.Equal(t, test.want, out.String())
			}
		})
	}
}

func TestSession_Connect_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s := New(Config{Address: addr})
	s.newClient = testSocket

	assert.ErrorIs(t, s.Connect(context.Background()), transcript.ErrConnection)
}
