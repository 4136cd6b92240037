// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rpcclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"
)

// TLSPostConnect builds a PostConnectFunc that upgrades the raw socket
// to TLS and completes the handshake before the client reaches Open.
// This blocks Connect for the handshake's duration, bounded by
// timeout; pkg/tlsio.Handshaker is available separately for callers
// that want the handshake interleaved across reactor ticks instead of
// performed synchronously here.
func TLSPostConnect(cfg *tls.Config, timeout time.Duration) PostConnectFunc {
	return func(ctx context.Context, conn net.Conn) (net.Conn, error) {
		tlsConn := tls.Client(conn, cfg)
		hctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := tlsConn.HandshakeContext(hctx); err != nil {
			return nil, fmt.Errorf("rpcclient: TLS handshake: %w", err)
		}
		return tlsConn, nil
	}
}

// ChainPostConnect runs each PostConnectFunc in order, feeding each
// stage's returned connection into the next (e.g. TLSPostConnect then
// StompPostConnect for STOMP-over-TLS).
func ChainPostConnect(stages ...PostConnectFunc) PostConnectFunc {
	return func(ctx context.Context, conn net.Conn) (net.Conn, error) {
		cur := conn
		for _, stage := range stages {
			next, err := stage(ctx, cur)
			if err != nil {
				return nil, err
			}
			if next != nil {
				cur = next
			}
		}
		return cur, nil
	}
}
