// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package stompbroker is a minimal, in-process STOMP 1.2 broker for
// exercising pkg/rpcclient's STOMP codec and postConnect handshake
// without a real message broker: CONNECT negotiates a heart-beat and
// answers CONNECTED, SUBSCRIBE registers a per-connection listener on
// a destination (replying ACK when the subscription asked for
// client-ack), SEND fans the frame body out to every subscriber of its
// destination as a MESSAGE, and DISCONNECT with a receipt header
// answers RECEIPT before the connection closes.
//
// It does not persist messages, acknowledge deliveries, support
// transactions, or route across destinations beyond exact-match — a
// real broker does all of that; this one exists to drive the client
// side of the wire protocol in tests.
package stompbroker
