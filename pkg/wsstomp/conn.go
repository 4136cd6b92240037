// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package wsstomp

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// conn adapts a message-oriented *websocket.Conn to the byte-stream
// net.Conn interface pkg/rpcclient's reactor client reads and writes
// against: each outbound Write becomes one binary WebSocket message,
// and inbound messages are buffered across Read calls since a caller
// may ask for fewer bytes than one message contains.
type conn struct {
	ws *websocket.Conn

	readMu  sync.Mutex
	readBuf []byte
}

// newConn wraps ws for use as a pkg/rpcclient transport.
func newConn(ws *websocket.Conn) net.Conn {
	return &conn{ws: ws}
}

// Read satisfies net.Conn: it pulls one more WebSocket message only
// once the buffered remainder of the previous one is exhausted.
func (c *conn) Read(p []byte) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	for len(c.readBuf) == 0 {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return 0, err
		}
		c.readBuf = data
	}
	n := copy(p, c.readBuf)
	c.readBuf = c.readBuf[n:]
	return n, nil
}

// Write satisfies net.Conn: p is sent as one binary WebSocket message.
// gorilla/websocket does not support partial message writes, so a
// successful call always reports len(p) written.
func (c *conn) Write(p []byte) (int, error) {
	if err := c.ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *conn) Close() error { return c.ws.Close() }

func (c *conn) LocalAddr() net.Addr  { return c.ws.LocalAddr() }
func (c *conn) RemoteAddr() net.Addr { return c.ws.RemoteAddr() }

func (c *conn) SetDeadline(t time.Time) error {
	if err := c.ws.SetReadDeadline(t); err != nil {
		return err
	}
	return c.ws.SetWriteDeadline(t)
}

func (c *conn) SetReadDeadline(t time.Time) error  { return c.ws.SetReadDeadline(t) }
func (c *conn) SetWriteDeadline(t time.Time) error { return c.ws.SetWriteDeadline(t) }
