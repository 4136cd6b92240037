// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package rpcclient implements the per-connection reactor client: the
// state machine, outbox and heartbeat bookkeeping that
// pkg/reactor.Client drives once per tick.
//
// # State machine
//
//	Disconnected -> Connecting -> Initializing -> Open -> Closing -> Disconnected
//
// connect dials out and hands off to a transport-specific postConnect
// (TLS handshake and/or STOMP CONNECT) before the client reaches Open.
// process reads, checks heartbeat liveness, then drains the outbox, in
// that fixed order, matching pkg/reactor's fairness contract.
package rpcclient
