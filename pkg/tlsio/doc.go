// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package tlsio drives a TLS handshake the way the reactor wants it:
// bounded by a per-attempt deadline rather than blocking the reactor's
// tick indefinitely, and reporting completion exactly once via a
// latch rather than a blocking call the caller must synchronize
// around.
//
// crypto/tls's Conn.Handshake already coalesces concurrent callers and
// is safe to invoke repeatedly, so this package is a thin scheduling
// wrapper: call Handshaker.Advance(tick) once per reactor tick until
// Handshaker.Done reports true.
package tlsio
