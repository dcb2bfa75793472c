// SPDX-License-Identifier: GPL-3.0-or-later

package socket

import (
	"context"
	"time"
)

// Processor is passed to Client.Poll. It is called with every chunk of bytes
// read from the connection and reports whether the response is complete.
type Processor func(chunk []byte) (done bool, err error)

// Client is the interface that wraps the basic socket client operations
// and hides the implementation details from the users.
//
// Connect dials the address, retrying while the target is not listening yet.
//
// Disconnect closes the connection.
//
// Write sends the bytes to the wire.
//
// Poll reads in short polls and passes every chunk to the processor until it
// reports completion or the timeout elapses.
type Client interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Write(data []byte) error
	Poll(ctx context.Context, timeout time.Duration, process Processor) error
}

// Config holds the network address, dial retry policy and the timeouts of a Socket.
type Config struct {
	// Address is "host:port", "tcp://host:port" or "unix:///path".
	Address string
	// ConnectTimeout bounds a single dial attempt.
	ConnectTimeout time.Duration
	// ConnectAttempts is the number of dial attempts before giving up.
	ConnectAttempts int
	// RetryInterval is the pause between dial attempts.
	RetryInterval time.Duration
	WriteTimeout  time.Duration
	// PollInterval is the read deadline of a single poll.
	PollInterval time.Duration
}

const (
	defaultConnectTimeout  = time.Second
	defaultConnectAttempts = 30
	defaultRetryInterval   = 100 * time.Millisecond
	defaultWriteTimeout    = time.Second * 5
	defaultPollInterval    = 100 * time.Millisecond
)
