// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package frame implements the length-prefixed binary wire format used
// when a connection negotiates plain framing instead of STOMP: an
// 8-byte big-endian uint64 byte count followed by that many bytes of
// UTF-8 JSON.
//
// # Description
//
// Every message, inbound or outbound, is preceded by its own length so
// a reader never has to scan for a delimiter. A configurable ceiling
// (default 4 MiB) rejects an oversized length prefix before any body
// bytes are read, so a corrupt or hostile prefix cannot force an
// unbounded allocation.
//
// # Thread Safety
//
// Codec holds no per-stream state, but its ReadFrame and WriteFrame
// calls on one stream must not run concurrently; callers serialize writes (the
// reactor client does this via its outbox) and reads (one goroutine
// per connection).
package frame
