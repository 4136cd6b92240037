// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

//go:build linux

package sockopts

import (
	"net"

	"golang.org/x/sys/unix"
)

// platformTune applies the keepalive probe-count and probe-interval
// knobs that net.TCPConn does not expose directly, via the raw
// syscall conn. Best-effort: a failing setsockopt does not fail the
// connection, it just runs with the OS default cadence.
func platformTune(tc *net.TCPConn, t Tuning) error {
	raw, err := tc.SyscallConn()
	if err != nil {
		return err
	}
	secs := int(t.KeepAlive.Seconds())
	if secs <= 0 {
		secs = 1
	}
	return raw.Control(func(fd uintptr) {
		_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, secs)
		_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPCNT, 4)
	})
}
