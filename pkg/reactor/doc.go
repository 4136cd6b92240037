// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package reactor runs the single-goroutine tick loop every
// registered client is driven from: drain posted tasks, then walk
// every client giving it a turn to read, check heartbeats, and write.
//
// # Architecture
//
//	   +------------------------------------------------+
//	   |                     Run loop                    |
//	   |  every tick:                                     |
//	   |    1. drain task queue (FIFO)                    |
//	   |    2. for each client: Process()  (read/hb/write)|
//	   |    3. for each client: PerformAction() (send hb) |
//	   +------------------------------------------------+
//
// This module targets portable Go, which has no cross-platform
// exposed non-blocking multiplexer in the standard library the way a
// selector-based NIO reactor would. Rather than shell out to raw
// epoll/kqueue via golang.org/x/sys, the reactor instead gives each
// client a short per-tick I/O deadline: a Client.Process call is
// expected to set a read deadline bounded by the tick duration and
// treat a timeout as "nothing ready this turn" rather than an error.
// Task queue draining happens before client turns. Registering and
// deregistering a client are not routed through Post: they update the
// client map directly under the reactor's mutex, and each tick walks a
// snapshot of that map.
//
// # Thread Safety
//
// Register, Deregister, Post and Wakeup may be called from any
// goroutine. The effects of Post happen on the reactor goroutine in
// FIFO order relative to other posted tasks.
package reactor
