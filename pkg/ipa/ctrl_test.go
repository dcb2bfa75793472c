// SPDX-License-Identifier: GPL-3.0-or-later

package ipa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCtrl(t *testing.T) {
	tests := map[string]struct {
		payload string
		want    CtrlMessage
		wantErr bool
	}{
		"get": {
			payload: "GET 12 bts.0.location",
			want:    CtrlMessage{Verb: VerbGet, ID: "12", Var: "bts.0.location"},
		},
		"set with spaces in value": {
			payload: "SET 3 msc.0.name my msc",
			want:    CtrlMessage{Verb: VerbSet, ID: "3", Var: "msc.0.name", Value: "my msc"},
		},
		"reply": {
			payload: "GET_REPLY 12 rate_ctr.* bsc;msc;",
			want:    CtrlMessage{Verb: VerbGetReply, ID: "12", Var: "rate_ctr.*", Value: "bsc;msc;"},
		},
		"error": {
			payload: "ERROR 4 Command not found",
			want:    CtrlMessage{Verb: VerbError, ID: "4", Value: "Command not found"},
		},
		"trap": {
			payload: "TRAP 0 bts.0.location 1,2,3",
			want:    CtrlMessage{Verb: VerbTrap, ID: TrapID, Var: "bts.0.location", Value: "1,2,3"},
		},
		"trailing nul": {
			payload: "GET_REPLY 1 a b\x00",
			want:    CtrlMessage{Verb: VerbGetReply, ID: "1", Var: "a", Value: "b"},
		},
		"verb only": {
			payload: "GET",
			wantErr: true,
		},
		"empty": {
			payload: "",
			wantErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			m, err := ParseCtrl(test.payload)

			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, m)
		})
	}
}

func TestCtrlMessage_String(t *testing.T) {
	assert.Equal(t, "GET 1 a", Get("1", "a").String())
	assert.Equal(t, "SET 2 a b c", Set("2", "a", "b c").String())
	assert.Equal(t, "ERROR 3 oops", CtrlMessage{Verb: VerbError, ID: "3", Value: "oops"}.String())
}

func TestCtrlPayload(t *testing.T) {
	frame, err := CtrlFrame("GET 1 a")
	require.NoError(t, err)

	payload, err := CtrlPayload(frame)
	require.NoError(t, err)
	assert.Equal(t, "GET 1 a", payload)

	oml, err := AddHeader([]byte("x"), ProtoOML)
	require.NoError(t, err)
	_, err = CtrlPayload(oml)
	assert.ErrorIs(t, err, ErrNotCtrl)
}

func TestSkipTraps(t *testing.T) {
	trap1, _ := CtrlFrame("TRAP 0 a 1")
	trap2, _ := CtrlFrame("TRAP 0 b 2")
	reply, _ := CtrlFrame("GET_REPLY 7 c 3")

	tests := map[string]struct {
		data      []byte
		wantFrame []byte
		wantRest  []byte
	}{
		"reply only": {
			data:      reply,
			wantFrame: reply,
			wantRest:  []byte{},
		},
		"traps before reply": {
			data:      concat(trap1, trap2, reply),
			wantFrame: reply,
			wantRest:  []byte{},
		},
		"trap after reply": {
			data:      concat(reply, trap1),
			wantFrame: reply,
			wantRest:  trap1,
		},
		"traps only": {
			data: concat(trap1, trap2),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			frame, rest, err := SkipTraps(test.data)
			require.NoError(t, err)

			assert.Equal(t, test.wantFrame, frame)
			assert.Equal(t, len(test.wantRest), len(rest))
		})
	}
}

func TestVerifyReply(t *testing.T) {
	tests := map[string]struct {
		req     CtrlMessage
		reply   CtrlMessage
		wantErr bool
	}{
		"get ok": {
			req:   Get("5", "a"),
			reply: CtrlMessage{Verb: VerbGetReply, ID: "5", Var: "a", Value: "anything"},
		},
		"set ok": {
			req:   Set("5", "a", "1"),
			reply: CtrlMessage{Verb: VerbSetReply, ID: "5", Var: "a", Value: "1"},
		},
		"set wrong value": {
			req:     Set("5", "a", "1"),
			reply:   CtrlMessage{Verb: VerbSetReply, ID: "5", Var: "a", Value: "2"},
			wantErr: true,
		},
		"wrong id": {
			req:     Get("5", "a"),
			reply:   CtrlMessage{Verb: VerbGetReply, ID: "6", Var: "a"},
			wantErr: true,
		},
		"wrong var": {
			req:     Get("5", "a"),
			reply:   CtrlMessage{Verb: VerbGetReply, ID: "5", Var: "b"},
			wantErr: true,
		},
		"error reply": {
			req:     Get("5", "a"),
			reply:   CtrlMessage{Verb: VerbError, ID: "5", Value: "Command not found"},
			wantErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := VerifyReply(test.req, test.reply)

			if test.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func concat(frames ...[]byte) []byte {
	var b []byte
	for _, f := range frames {
		b = append(b, f...)
	}
	return b
}
