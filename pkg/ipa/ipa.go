// SPDX-License-Identifier: GPL-3.0-or-later

// Package ipa implements the IPA multiplex framing used by Osmocom network
// elements and the CTRL protocol carried inside it.
//
// A frame is a 3 byte header (big-endian uint16 length, protocol byte),
// an optional extension byte for the OSMO and CCM protocols, and the payload.
// The length counts the extension byte and the payload.
package ipa

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	ProtoRSL  byte = 0x00
	ProtoMGCP byte = 0xFC
	ProtoSCCP byte = 0xFD
	ProtoCCM  byte = 0xFE
	ProtoOML  byte = 0xFF
	ProtoOSMO byte = 0xEE
)

const (
	ExtCTRL byte = 0x00
	ExtMGCP byte = 0x01
	ExtLAC  byte = 0x02
	ExtSMSC byte = 0x03
)

// HeaderLen is the size of the fixed part of the header.
const HeaderLen = 3

var (
	ErrShortFrame   = errors.New("ipa: short frame")
	ErrFrameTooLong = errors.New("ipa: payload too long")
)

// Frame is a decoded IPA frame.
type Frame struct {
	Proto   byte
	Ext     byte
	HasExt  bool
	Payload []byte
}

// HasExtension reports whether frames of the protocol carry an extension byte.
func HasExtension(proto byte) bool {
	return proto == ProtoOSMO || proto == ProtoCCM
}

// AddHeader frames payload for a protocol without extension byte.
func AddHeader(payload []byte, proto byte) ([]byte, error) {
	if len(payload) > math.MaxUint16 {
		return nil, ErrFrameTooLong
	}
	buf := make([]byte, HeaderLen, HeaderLen+len(payload))
	binary.BigEndian.PutUint16(buf, uint16(len(payload)))
	buf[2] = proto
	return append(buf, payload...), nil
}

// AddHeaderExt frames payload for a protocol with extension byte.
func AddHeaderExt(payload []byte, proto, ext byte) ([]byte, error) {
	if len(payload)+1 > math.MaxUint16 {
		return nil, ErrFrameTooLong
	}
	buf := make([]byte, HeaderLen+1, HeaderLen+1+len(payload))
	binary.BigEndian.PutUint16(buf, uint16(len(payload)+1))
	buf[2] = proto
	buf[3] = ext
	return append(buf, payload...), nil
}

// Encode is the inverse of Decode.
func (f Frame) Encode() ([]byte, error) {
	if f.HasExt {
		return AddHeaderExt(f.Payload, f.Proto, f.Ext)
	}
	return AddHeader(f.Payload, f.Proto)
}

// Decode removes the header of a single complete frame.
func Decode(frame []byte) (Frame, error) {
	n, ok := frameLen(frame)
	if !ok || len(frame) < n {
		return Frame{}, ErrShortFrame
	}
	if len(frame) > n {
		return Frame{}, fmt.Errorf("ipa: %d trailing bytes after frame", len(frame)-n)
	}

	f := Frame{Proto: frame[2]}
	if !HasExtension(f.Proto) {
		f.Payload = frame[HeaderLen:]
		return f, nil
	}
	if n == HeaderLen {
		return Frame{}, fmt.Errorf("ipa: protocol 0x%02x frame without extension byte", f.Proto)
	}
	f.HasExt = true
	f.Ext = frame[HeaderLen]
	f.Payload = frame[HeaderLen+1:]

	return f, nil
}

// SplitCombined returns the first frame of data and everything after it.
func SplitCombined(data []byte) (head, tail []byte, err error) {
	n, ok := frameLen(data)
	if !ok || len(data) < n {
		return nil, data, ErrShortFrame
	}
	return data[:n], data[n:], nil
}

// Split demultiplexes coalesced frames. rest holds a trailing incomplete frame, if any.
func Split(data []byte) (frames [][]byte, rest []byte) {
	for len(data) > 0 {
		head, tail, err := SplitCombined(data)
		if err != nil {
			break
		}
		frames = append(frames, head)
		data = tail
	}
	return frames, data
}

// Complete reports whether data holds at least one frame and no partial frame.
func Complete(data []byte) bool {
	frames, rest := Split(data)
	return len(frames) > 0 && len(rest) == 0
}

func frameLen(data []byte) (int, bool) {
	if len(data) < HeaderLen {
		return 0, false
	}
	return HeaderLen + int(binary.BigEndian.Uint16(data)), true
}
