// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package jsonrpc

import "errors"

// Sentinel errors for the JSON-RPC envelope layer. Transport-level
// errors (DuplicateRequest, Timeout, ProtocolError, ...) live in the
// packages that own those concerns (tracker, reactor, frame); this
// package only owns schema violations.
var (
	// ErrIllegalArgument indicates a JSON-RPC schema violation: wrong
	// version, empty method, or a response with zero/two of
	// result/error.
	ErrIllegalArgument = errors.New("jsonrpc: illegal argument")

	// ErrProtocol indicates a malformed envelope that could not be
	// classified as either a response or an event.
	ErrProtocol = errors.New("jsonrpc: protocol error")
)
