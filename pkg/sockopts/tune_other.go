// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

//go:build !linux

package sockopts

import "net"

// platformTune is a no-op on platforms where we have not wired the
// raw-socket probe-count/probe-interval tuning. SetKeepAlive /
// SetKeepAlivePeriod from the standard library still apply; only the
// finer-grained probe count is unavailable here.
func platformTune(tc *net.TCPConn, t Tuning) error {
	return nil
}
