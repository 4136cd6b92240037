// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package stomp implements the subset of STOMP 1.2 this transport core
// needs to carry JSON-RPC payloads as SEND/MESSAGE frame bodies: frame
// encode/decode, header escaping, and heart-beat interval negotiation.
//
// # Architecture
//
//	   +-------------+  encode   +-------------+
//	   |   Frame     |---------->| wire bytes  |
//	   | (Command,   |           | CMD\n       |
//	   |  Headers,   |<----------| k:v\n ...   |
//	   |  Body)      |  decode   | \n body NUL |
//	   +-------------+           +-------------+
//
// A frame is a command line, zero or more header lines, a blank line,
// an optional body, and a single NUL terminator. content-length, when
// present, is authoritative for the body's extent; the decoder uses it
// to split a coalesced read buffer into discrete frames, which matters
// because a body may legitimately contain embedded NUL bytes.
//
// # Thread Safety
//
// A Frame is a plain value; Encode/Decode hold no state. Heartbeat
// negotiation (Negotiate) is a pure function over the two sides'
// proposed intervals and carries no shared state either.
package stomp
