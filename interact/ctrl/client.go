// SPDX-License-Identifier: GPL-3.0-or-later

package ctrl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/osmocom/python-osmo-python-tests/interact/transcript"
	"github.com/osmocom/python-osmo-python-tests/logger"
	"github.com/osmocom/python-osmo-python-tests/pkg/ipa"
	"github.com/osmocom/python-osmo-python-tests/pkg/socket"
)

const leftoverPoll = 10 * time.Millisecond

// Client performs single GET and SET requests with random ids. TRAPs and
// other unsolicited messages are passed to OnMessage.
type Client struct {
	*logger.Logger
	Config

	// OnMessage, if set, receives messages that are not the awaited reply.
	OnMessage func(payload string)

	newClient func(socket.Config) socket.Client
	client    socket.Client
	pending   []byte
	newID     func() string
}

func NewClient(cfg Config) *Client {
	return &Client{
		Logger:    logger.New().With(slog.String("component", "ctrl client"), slog.String("address", cfg.Address)),
		Config:    cfg,
		newClient: func(c socket.Config) socket.Client { return socket.New(c) },
		newID:     func() string { return strconv.FormatInt(rand.Int63n(math.MaxInt32)+1, 10) },
	}
}

func (c *Client) Connect(ctx context.Context) error {
	if c.client != nil {
		return errors.New("ctrl: already connected")
	}
	client := c.newClient(socket.Config{Address: c.Address, ConnectAttempts: 1})
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("%w: %w", transcript.ErrConnection, err)
	}
	c.client = client
	c.pending = nil
	return nil
}

func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect()
	c.client = nil
	return err
}

// Get requests a variable. The reply is returned even when it fails
// verification against the request, together with the verification error.
func (c *Client) Get(ctx context.Context, variable string) (ipa.CtrlMessage, error) {
	return c.do(ctx, ipa.Get(c.newID(), variable))
}

// Set sets a variable, see Get.
func (c *Client) Set(ctx context.Context, variable, value string) (ipa.CtrlMessage, error) {
	return c.do(ctx, ipa.Set(c.newID(), variable, value))
}

func (c *Client) do(ctx context.Context, req ipa.CtrlMessage) (ipa.CtrlMessage, error) {
	if c.client == nil {
		return ipa.CtrlMessage{}, socket.ErrNotConnected
	}

	if err := c.drain(ctx); err != nil {
		return ipa.CtrlMessage{}, err
	}

	frame, err := ipa.CtrlFrame(req.String())
	if err != nil {
		return ipa.CtrlMessage{}, err
	}
	if err := c.client.Write(frame); err != nil {
		return ipa.CtrlMessage{}, fmt.Errorf("%w: %w", transcript.ErrUnresponsive, err)
	}

	var reply *ipa.CtrlMessage

	consume := func() (bool, error) {
		for reply == nil {
			head, rest, err := ipa.SplitCombined(c.pending)
			if err != nil {
				return false, nil
			}
			c.pending = rest
			m, err := ipa.ParseCtrlFrame(head)
			if err != nil {
				return false, err
			}
			if m.IsTrap() {
				c.unsolicited(m)
				continue
			}
			reply = &m
		}
		return true, nil
	}

	err = c.client.Poll(ctx, c.timeout(), func(chunk []byte) (bool, error) {
		c.pending = append(c.pending, chunk...)
		return consume()
	})
	if err != nil {
		if errors.Is(err, socket.ErrTimeout) || errors.Is(err, io.EOF) {
			return ipa.CtrlMessage{}, fmt.Errorf("%w: %s: %w", transcript.ErrUnresponsive, req, err)
		}
		return ipa.CtrlMessage{}, err
	}

	return *reply, ipa.VerifyReply(req, *reply)
}

// drain hands over whatever arrived since the last request.
func (c *Client) drain(ctx context.Context) error {
	err := c.client.Poll(ctx, leftoverPoll, func(chunk []byte) (bool, error) {
		c.pending = append(c.pending, chunk...)
		return false, nil
	})
	if err != nil && !errors.Is(err, socket.ErrTimeout) {
		return err
	}

	frames, rest := ipa.Split(c.pending)
	c.pending = rest
	for _, f := range frames {
		m, err := ipa.ParseCtrlFrame(f)
		if err != nil {
			c.Warningf("dropping unparsable message: %v", err)
			continue
		}
		c.unsolicited(m)
	}
	return nil
}

func (c *Client) unsolicited(m ipa.CtrlMessage) {
	if c.OnMessage != nil {
		c.OnMessage(m.String())
		return
	}
	c.Debugf("skipping message: %s", m)
}

// Monitor passes every incoming message to fn until the peer closes the
// connection or ctx is done.
func (c *Client) Monitor(ctx context.Context, fn func(ipa.CtrlMessage)) error {
	if c.client == nil {
		return socket.ErrNotConnected
	}

	msgs := make(chan ipa.CtrlMessage)

	var (
		wg      conc.WaitGroup
		readErr error
	)
	wg.Go(func() {
		defer close(msgs)
		readErr = c.client.Poll(ctx, 0, func(chunk []byte) (bool, error) {
			c.pending = append(c.pending, chunk...)
			frames, rest := ipa.Split(c.pending)
			c.pending = rest
			for _, f := range frames {
				m, err := ipa.ParseCtrlFrame(f)
				if err != nil {
					c.Warningf("dropping unparsable message: %v", err)
					continue
				}
				select {
				case msgs <- m:
				case <-ctx.Done():
					return false, ctx.Err()
				}
			}
			return false, nil
		})
	})

	for m := range msgs {
		fn(m)
	}
	wg.Wait()

	if errors.Is(readErr, io.EOF) {
		return nil
	}
	return readErr
}
