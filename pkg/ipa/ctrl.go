// SPDX-License-Identifier: GPL-3.0-or-later

package ipa

import (
	"errors"
	"fmt"
	"strings"
)

const (
	VerbGet      = "GET"
	VerbSet      = "SET"
	VerbGetReply = "GET_REPLY"
	VerbSetReply = "SET_REPLY"
	VerbError    = "ERROR"
	VerbTrap     = "TRAP"
)

// TrapID is the id the target puts on unsolicited TRAP messages.
const TrapID = "0"

var ErrNotCtrl = errors.New("ipa: not a CTRL frame")

// CtrlMessage is one CTRL protocol message.
// For ERROR messages Var is empty and Value holds the error text.
type CtrlMessage struct {
	Verb  string
	ID    string
	Var   string
	Value string
}

func Get(id, variable string) CtrlMessage {
	return CtrlMessage{Verb: VerbGet, ID: id, Var: variable}
}

func Set(id, variable, value string) CtrlMessage {
	return CtrlMessage{Verb: VerbSet, ID: id, Var: variable, Value: value}
}

func (m CtrlMessage) String() string {
	var sb strings.Builder
	sb.WriteString(m.Verb)
	sb.WriteByte(' ')
	sb.WriteString(m.ID)
	if m.Var != "" {
		sb.WriteByte(' ')
		sb.WriteString(m.Var)
	}
	if m.Value != "" || m.Verb == VerbSet {
		sb.WriteByte(' ')
		sb.WriteString(m.Value)
	}
	return sb.String()
}

func (m CtrlMessage) IsTrap() bool {
	return m.Verb == VerbTrap || m.ID == TrapID
}

// ParseCtrl parses a CTRL payload.
func ParseCtrl(payload string) (CtrlMessage, error) {
	payload = strings.TrimRight(payload, "\x00\r\n")

	parts := strings.SplitN(payload, " ", 3)
	if len(parts) < 2 || parts[0] == "" {
		return CtrlMessage{}, fmt.Errorf("ipa: malformed CTRL message %q", payload)
	}

	m := CtrlMessage{Verb: parts[0], ID: parts[1]}
	if len(parts) == 2 {
		return m, nil
	}
	if m.Verb == VerbError {
		m.Value = parts[2]
		return m, nil
	}

	m.Var, m.Value, _ = strings.Cut(parts[2], " ")

	return m, nil
}

// CtrlFrame frames a CTRL payload.
func CtrlFrame(payload string) ([]byte, error) {
	return AddHeaderExt([]byte(payload), ProtoOSMO, ExtCTRL)
}

// CtrlPayload returns the payload of a single CTRL frame.
func CtrlPayload(frame []byte) (string, error) {
	f, err := Decode(frame)
	if err != nil {
		return "", err
	}
	if f.Proto != ProtoOSMO || f.Ext != ExtCTRL {
		return "", fmt.Errorf("%w: protocol 0x%02x extension 0x%02x", ErrNotCtrl, f.Proto, f.Ext)
	}
	return string(f.Payload), nil
}

// ParseCtrlFrame decodes a single CTRL frame.
func ParseCtrlFrame(frame []byte) (CtrlMessage, error) {
	payload, err := CtrlPayload(frame)
	if err != nil {
		return CtrlMessage{}, err
	}
	return ParseCtrl(payload)
}

// SkipTraps returns the first non-TRAP frame of data along with the data after
// it. A nil frame means data held only TRAPs.
func SkipTraps(data []byte) (frame, rest []byte, err error) {
	for len(data) > 0 {
		head, tail, err := SplitCombined(data)
		if err != nil {
			return nil, data, err
		}
		m, err := ParseCtrlFrame(head)
		if err != nil {
			return nil, tail, err
		}
		if !m.IsTrap() {
			return head, tail, nil
		}
		data = tail
	}
	return nil, nil, nil
}

// VerifyReply checks that reply answers the request req.
func VerifyReply(req, reply CtrlMessage) error {
	if reply.Verb == VerbError {
		return fmt.Errorf("ipa: request %s failed: %s", req.ID, reply.Value)
	}
	if want := req.Verb + "_REPLY"; reply.Verb != want {
		return fmt.Errorf("ipa: expected %s, got %s", want, reply.Verb)
	}
	if reply.ID != req.ID {
		return fmt.Errorf("ipa: wrong id: expected %s, got %s", req.ID, reply.ID)
	}
	if reply.Var != req.Var {
		return fmt.Errorf("ipa: wrong variable: expected %q, got %q", req.Var, reply.Var)
	}
	if req.Verb == VerbSet && reply.Value != req.Value {
		return fmt.Errorf("ipa: wrong value: expected %q, got %q", req.Value, reply.Value)
	}
	return nil
}
