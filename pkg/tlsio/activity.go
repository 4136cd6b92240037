// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tlsio

import (
	"sync/atomic"
	"time"
)

// ActivityClock tracks the last-send and last-receive instants for a
// connection as nanosecond timestamps, so the reactor's liveness check
// can compare "now" against them without taking a lock.
type ActivityClock struct {
	lastSendNanos atomic.Int64
	lastRecvNanos atomic.Int64
}

// MarkSend records that a frame (heartbeat or otherwise) was just
// written to the wire.
func (c *ActivityClock) MarkSend() {
	c.lastSendNanos.Store(time.Now().UnixNano())
}

// MarkRecv records that a frame (heartbeat or otherwise) was just read
// from the wire.
func (c *ActivityClock) MarkRecv() {
	c.lastRecvNanos.Store(time.Now().UnixNano())
}

// SinceLastSend reports how long it has been since MarkSend was last
// called. It returns zero if MarkSend has never been called.
func (c *ActivityClock) SinceLastSend() time.Duration {
	return sinceNanos(c.lastSendNanos.Load())
}

// SinceLastRecv reports how long it has been since MarkRecv was last
// called.
func (c *ActivityClock) SinceLastRecv() time.Duration {
	return sinceNanos(c.lastRecvNanos.Load())
}

func sinceNanos(n int64) time.Duration {
	if n == 0 {
		return 0
	}
	return time.Since(time.Unix(0, n))
}
