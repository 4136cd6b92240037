// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package jsonrpc defines the JSON-RPC 2.0 wire types shared by every
// transport in this module: requests, responses, notifications and the
// well-known error codes the transport core itself can produce.
//
// This package intentionally knows nothing about sockets, framing, or
// STOMP. It owns only the envelope: marshaling, validation of the
// required fields, and the distinction between a call (has a non-null
// id), a notification (no id), and an event (a notification whose
// Method carries a subscription topic).
package jsonrpc
