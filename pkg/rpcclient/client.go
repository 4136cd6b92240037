// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rpcclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/AleutianAI/hostrpc/pkg/config"
	"github.com/AleutianAI/hostrpc/pkg/logging"
	"github.com/AleutianAI/hostrpc/pkg/sockopts"
	"github.com/AleutianAI/hostrpc/pkg/telemetry"
	"github.com/AleutianAI/hostrpc/pkg/tlsio"
)

// ErrAlreadyConnecting is returned by Connect when the state machine is
// already past Disconnected.
var ErrAlreadyConnecting = errors.New("rpcclient: connect called while not disconnected")

// DialFunc opens the raw transport connection.
type DialFunc func(ctx context.Context) (net.Conn, error)

// PostConnectFunc runs transport-specific setup (TLS handshake, STOMP
// CONNECT/CONNECTED) once the raw socket is open, before the client
// reaches Open. It returns the connection the client should use from
// then on, which may be conn wrapped in a *tls.Conn.
type PostConnectFunc func(ctx context.Context, conn net.Conn) (net.Conn, error)

// MessageHandler receives one decoded JSON-RPC payload per call.
type MessageHandler func(raw []byte)

// DisconnectHandler is invoked once, after the state machine reaches
// Disconnected, with the reason.
type DisconnectHandler func(reason string)

// Client is a single reactor-driven connection: it implements
// pkg/reactor.Client and pkg/tracker.Sender.
type Client struct {
	id     string
	policy config.ClientPolicy
	codec  Codec
	dial   DialFunc
	post   PostConnectFunc
	onMsg  MessageHandler
	onDisc DisconnectHandler
	logger *slog.Logger
	tune   sockopts.Tuning

	stateMu sync.Mutex
	state   State
	conn    net.Conn

	out      *outbox
	inbuf    []byte
	activity tlsio.ActivityClock
}

// Config bundles the dependencies a Client needs.
type Config struct {
	ID      string
	Policy  config.ClientPolicy
	Codec   Codec
	Dial    DialFunc
	Post    PostConnectFunc // optional
	OnMsg   MessageHandler
	OnClose DisconnectHandler // optional
	Logger  *slog.Logger
	Tuning  sockopts.Tuning
}

// New constructs a Client in the Disconnected state. Connect must be
// called before it is registered with a reactor.
func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default().Slog()
	}
	return &Client{
		id:     cfg.ID,
		policy: cfg.Policy,
		codec:  cfg.Codec,
		dial:   cfg.Dial,
		post:   cfg.Post,
		onMsg:  cfg.OnMsg,
		onDisc: cfg.OnClose,
		logger: logger.With(slog.String("client_id", cfg.ID)),
		tune:   cfg.Tuning,
		state:  Disconnected,
		out:    newOutbox(),
	}
}

// ID satisfies pkg/reactor.Client.
func (c *Client) ID() string { return c.id }

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.stateMu.Lock()
	c.state = s
	c.stateMu.Unlock()
}

// Connect dials out, retrying the dial per the configured retry
// policy via a jittered exponential backoff, then runs postConnect
// before transitioning to Open. Concurrent calls while already past
// Disconnected fail immediately rather than blocking, mirroring the
// one-time-callback handoff described for postConnect itself.
func (c *Client) Connect(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "hostrpc.rpcclient/connect")
	defer span.End()

	c.stateMu.Lock()
	if c.state != Disconnected {
		c.stateMu.Unlock()
		return ErrAlreadyConnecting
	}
	c.state = Connecting
	c.stateMu.Unlock()

	bo := backoff.NewExponentialBackOff()
	opts := []backoff.RetryOption{backoff.WithBackOff(bo)}
	if c.policy.RetryCount > 0 {
		opts = append(opts, backoff.WithMaxTries(uint(c.policy.RetryCount)))
	}
	if c.policy.RetryTimeout > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(c.policy.RetryTimeout))
	}

	conn, err := backoff.Retry(ctx, func() (net.Conn, error) {
		return c.dial(ctx)
	}, opts...)
	if err != nil {
		c.setState(Disconnected)
		return fmt.Errorf("rpcclient: connect: %w", err)
	}

	if err := sockopts.Apply(conn, c.tune); err != nil {
		c.logger.Warn("rpcclient: socket tuning failed", slog.Any("error", err))
	}

	c.stateMu.Lock()
	c.conn = conn
	c.state = Initializing
	c.stateMu.Unlock()

	if c.post != nil {
		upgraded, err := c.post(ctx, conn)
		if err != nil {
			c.disconnect("postConnect failed: " + err.Error())
			return fmt.Errorf("rpcclient: postConnect: %w", err)
		}
		if upgraded != nil {
			c.stateMu.Lock()
			c.conn = upgraded
			c.stateMu.Unlock()
		}
	}

	c.activity.MarkRecv()
	c.activity.MarkSend()
	c.setState(Open)
	return nil
}

// Send implements pkg/tracker.Sender: it enqueues raw at the outbox
// head, so ordinary traffic waits behind anything already queued.
func (c *Client) Send(raw []byte) error {
	return c.sendMessage(raw)
}

// sendMessage enqueues bytes at the outbox head for normal-priority
// delivery on a later process turn.
func (c *Client) sendMessage(payload []byte) error {
	if c.State() == Disconnected {
		return fmt.Errorf("rpcclient: send on disconnected client %s", c.id)
	}
	encoded := c.codec.Encode(payload)
	if encoded == nil {
		return fmt.Errorf("rpcclient: cannot encode %d-byte message on client %s", len(payload), c.id)
	}
	c.out.pushBack(encoded)
	return nil
}

// sendNow enqueues bytes at the outbox tail, so the very next process
// turn transmits it first. StompPostConnect does not use it: it writes
// its SUBSCRIBE frames directly to the connection.
func (c *Client) sendNow(payload []byte) error {
	if c.State() == Disconnected {
		return fmt.Errorf("rpcclient: sendNow on disconnected client %s", c.id)
	}
	encoded := c.codec.Encode(payload)
	if encoded == nil {
		return fmt.Errorf("rpcclient: cannot encode %d-byte message on client %s", len(payload), c.id)
	}
	c.out.pushFront(encoded)
	return nil
}

// Process satisfies pkg/reactor.Client: incoming, then heartbeat
// liveness, then outgoing, each tick.
func (c *Client) Process(ctx context.Context, tick time.Duration) error {
	state := c.State()
	if state == Closing || state == Disconnected {
		return nil
	}
	conn := c.connSnapshot()
	if conn == nil {
		return nil
	}

	if err := c.readTurn(conn, tick); err != nil {
		c.disconnect("transport read failed: " + err.Error())
		return err
	}

	if state.pastInitializing() {
		if c.activity.SinceLastRecv() > c.policy.HeartbeatReceiveInterval && c.policy.HeartbeatReceiveInterval > 0 {
			c.disconnect("Heartbeat exceeded")
			return nil
		}
	}

	if err := c.writeTurn(conn, tick); err != nil {
		c.disconnect("transport write failed: " + err.Error())
		return err
	}
	return nil
}

func (c *Client) connSnapshot() net.Conn {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.conn
}

func (c *Client) readTurn(conn net.Conn, tick time.Duration) error {
	_ = conn.SetReadDeadline(time.Now().Add(tick))
	buf := make([]byte, 64*1024)
	n, err := conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil
		}
		return err
	}
	if n == 0 {
		return nil
	}
	c.activity.MarkRecv()
	c.inbuf = append(c.inbuf, buf[:n]...)

	for {
		msg, consumed, derr := c.codec.Decode(c.inbuf)
		if derr != nil {
			return derr
		}
		if consumed == 0 {
			break
		}
		c.inbuf = c.inbuf[consumed:]
		if msg != nil && c.onMsg != nil {
			c.onMsg(msg)
		}
	}
	return nil
}

func (c *Client) writeTurn(conn net.Conn, tick time.Duration) error {
	buf, ok := c.out.next()
	if !ok {
		return nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(tick))
	n, err := conn.Write(buf)
	if n > 0 {
		c.out.consumed(n)
		c.activity.MarkSend()
	}
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil
		}
		return err
	}
	return nil
}

// PerformAction satisfies pkg/reactor.Client: sends an empty
// heartbeat frame, independent of read readiness, if the send-interval
// has elapsed.
func (c *Client) PerformAction() {
	if c.State() != Open {
		return
	}
	if c.policy.HeartbeatSendInterval <= 0 {
		return
	}
	if c.activity.SinceLastSend() < c.policy.HeartbeatSendInterval {
		return
	}
	hb := c.codec.Heartbeat()
	if hb == nil {
		return
	}
	c.out.pushFront(hb)
}

// Disconnect requests the client close with the given reason. Safe to
// call more than once and from any goroutine.
func (c *Client) Disconnect(reason string) {
	c.disconnect(reason)
}

// disconnect is idempotent without relying on sync.Once: the state
// machine re-enters Connecting on a later Connect call, so closing
// must be reusable rather than a one-shot latch.
func (c *Client) disconnect(reason string) {
	c.stateMu.Lock()
	if c.state == Disconnected || c.state == Closing {
		c.stateMu.Unlock()
		return
	}
	c.state = Closing
	conn := c.conn
	c.stateMu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	c.logger.Warn("rpcclient: disconnecting", slog.String("reason", reason))

	c.stateMu.Lock()
	c.state = Disconnected
	c.conn = nil
	c.inbuf = nil
	c.stateMu.Unlock()

	if c.onDisc != nil {
		c.onDisc(reason)
	}
}
