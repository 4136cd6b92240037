// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package wsstomp

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AleutianAI/hostrpc/pkg/rpcclient"
)

// Dial builds a pkg/rpcclient.DialFunc that opens target as a
// WebSocket connection and adapts it to net.Conn. header carries any
// additional request headers the server-side Upgrade handler expects
// (e.g. Authorization); it may be nil. Only ws:// and wss:// targets
// are accepted.
func Dial(target string, header http.Header, handshakeTimeout time.Duration) rpcclient.DialFunc {
	dialer := &websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}
	return func(ctx context.Context) (net.Conn, error) {
		if err := validateTarget(target); err != nil {
			return nil, err
		}
		ws, _, err := dialer.DialContext(ctx, target, header)
		if err != nil {
			return nil, fmt.Errorf("wsstomp: dial %s: %w", target, err)
		}
		return newConn(ws), nil
	}
}

// validateTarget rejects non-ws(s) schemes early rather than letting
// the dialer fail with a less obvious error.
func validateTarget(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("wsstomp: parse url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("wsstomp: unsupported scheme %q, want ws or wss", u.Scheme)
	}
	return nil
}
