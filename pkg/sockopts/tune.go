// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sockopts

import (
	"net"
	"time"
)

// Tuning is the set of socket options a reactor connection applies
// after dial/accept, before it is handed to the reactor's read/write
// loop.
type Tuning struct {
	// NoDelay disables Nagle's algorithm. The response tracker and
	// event publisher both send small, latency-sensitive frames. No
	// default in this module sets it: Apply always applies this field,
	// so a zero Tuning turns Nagle's algorithm on for the connection.
	NoDelay bool

	// KeepAlive, when non-zero, enables TCP keepalive probing at this
	// interval. Zero disables keepalive tuning (net.Dial's platform
	// default applies).
	KeepAlive time.Duration
}

// Apply configures conn per t. conn must be a *net.TCPConn; any other
// type (e.g. a tls.Conn wrapping one) is a silent no-op, matching how
// the teacher's file lock idiom degrades gracefully per-platform
// rather than failing the caller.
func Apply(conn net.Conn, t Tuning) error {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	if err := tc.SetNoDelay(t.NoDelay); err != nil {
		return err
	}
	if t.KeepAlive > 0 {
		if err := tc.SetKeepAlive(true); err != nil {
			return err
		}
		if err := tc.SetKeepAlivePeriod(t.KeepAlive); err != nil {
			return err
		}
		return platformTune(tc, t)
	}
	return nil
}
