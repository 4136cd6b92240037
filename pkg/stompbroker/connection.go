// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stompbroker

import (
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/AleutianAI/hostrpc/pkg/stomp"
)

// connection is one accepted socket's command loop. Writes are
// serialized through writeMu since SEND fan-out from other goroutines
// and this connection's own replies both target the same net.Conn.
type connection struct {
	broker *Broker
	conn   net.Conn
	logger *slog.Logger

	writeMu sync.Mutex
}

// run decodes frames off conn until it closes or sends DISCONNECT,
// dispatching each to its command handler.
func (c *connection) run() {
	defer func() {
		c.broker.unsubscribeAll(c)
		_ = c.conn.Close()
	}()

	var buf []byte
	readChunk := make([]byte, 4096)
	for {
		n, err := c.conn.Read(readChunk)
		if err != nil {
			return
		}
		buf = append(buf, readChunk[:n]...)

		for {
			f, consumed, derr := stomp.Decode(buf)
			if derr != nil {
				c.writeError(derr.Error())
				return
			}
			if f == nil {
				break
			}
			buf = buf[consumed:]
			if f.IsHeartbeat() {
				continue
			}
			if !c.dispatch(f) {
				return
			}
		}
	}
}

// dispatch handles one decoded frame and reports whether the
// connection should keep reading.
func (c *connection) dispatch(f *stomp.Frame) bool {
	switch f.Command {
	case stomp.CmdConnect, stomp.CmdStomp:
		c.handleConnect(f)
		return true
	case stomp.CmdSubscribe:
		c.handleSubscribe(f)
		return true
	case stomp.CmdSend:
		c.handleSend(f)
		return true
	case stomp.CmdDisconnect:
		c.handleDisconnect(f)
		return false
	default:
		c.writeError("unsupported command " + f.Command)
		return true
	}
}

func (c *connection) handleConnect(f *stomp.Frame) {
	// Start from the peer's proposal swapped (its send becomes our
	// receive requirement and vice versa); each non-zero side of the
	// broker's own configured heart-beat then replaces the swapped
	// value.
	peerHB := stomp.HeartBeat{}
	if v, ok := f.Headers.Get(stomp.HdrHeartBeat); ok {
		if parsed, err := stomp.ParseHeartBeat(v); err == nil {
			peerHB = parsed
		}
	}
	reflected := stomp.HeartBeat{Send: peerHB.Receive, Receive: peerHB.Send}
	if c.broker.heartbeat.Send != 0 {
		reflected.Send = c.broker.heartbeat.Send
	}
	if c.broker.heartbeat.Receive != 0 {
		reflected.Receive = c.broker.heartbeat.Receive
	}

	c.write(stomp.Frame{
		Command: stomp.CmdConnected,
		Headers: stomp.Headers{
			{Key: stomp.HdrVersion, Value: stomp.ProtocolVersion},
			{Key: stomp.HdrHeartBeat, Value: reflected.String()},
			{Key: stomp.HdrSession, Value: uuid.NewString()},
		},
	})
}

func (c *connection) handleSubscribe(f *stomp.Frame) {
	dest, _ := f.Headers.Get(stomp.HdrDestination)
	id, _ := f.Headers.Get(stomp.HdrID)
	ack, _ := f.Headers.Get(stomp.HdrAck)

	sub := &subscription{id: id, destination: dest, clientAck: ack == "client", conn: c}
	c.broker.subscribe(sub)

	if sub.clientAck {
		c.write(stomp.Frame{
			Command: stomp.CmdAck,
			Headers: stomp.Headers{{Key: stomp.HdrSubscription, Value: id}},
		})
	}
}

func (c *connection) handleSend(f *stomp.Frame) {
	dest, _ := f.Headers.Get(stomp.HdrDestination)
	if dest == "" {
		c.writeError("SEND without destination")
		return
	}
	for _, sub := range c.broker.subscribersOf(dest) {
		msg := stomp.Frame{
			Command: stomp.CmdMessage,
			Headers: stomp.Headers{
				{Key: stomp.HdrDestination, Value: dest},
				{Key: stomp.HdrSubscription, Value: sub.id},
				{Key: stomp.HdrMessageID, Value: uuid.NewString()},
			},
			Body: f.Body,
		}
		sub.conn.write(msg)
	}
}

func (c *connection) handleDisconnect(f *stomp.Frame) {
	receipt, ok := f.Headers.Get(stomp.HdrReceipt)
	if !ok {
		return
	}
	c.write(stomp.Frame{
		Command: stomp.CmdReceipt,
		Headers: stomp.Headers{{Key: stomp.HdrReceiptID, Value: receipt}},
	})
}

func (c *connection) writeError(message string) {
	c.write(stomp.Frame{
		Command: stomp.CmdError,
		Headers: stomp.Headers{{Key: stomp.HdrMessage, Value: message}},
	})
}

func (c *connection) write(f stomp.Frame) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.conn.Write(stomp.Encode(f)); err != nil {
		c.logger.Debug("stompbroker: write failed", slog.Any("error", err))
	}
}
