// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rpcclient

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/AleutianAI/hostrpc/pkg/stomp"
)

// StompPostConnect builds a PostConnectFunc that performs the blocking
// STOMP 1.2 CONNECT/CONNECTED handshake and subscribes to the policy's
// response and event queues, before the client is handed off to the
// reactor's non-blocking per-tick Process loop. It blocks for up to
// negotiationTimeout awaiting CONNECTED.
func StompPostConnect(policy stompPolicyLike, negotiationTimeout time.Duration) PostConnectFunc {
	return func(ctx context.Context, conn net.Conn) (net.Conn, error) {
		local := stomp.HeartBeat{Send: policy.heartbeatSendMillis(), Receive: policy.heartbeatReceiveMillis()}
		connectFrame := stomp.Frame{
			Command: stomp.CmdConnect,
			Headers: stomp.Headers{
				{Key: stomp.HdrAcceptVersion, Value: stomp.ProtocolVersion},
				{Key: stomp.HdrHeartBeat, Value: local.String()},
			},
		}
		if _, err := conn.Write(stomp.Encode(connectFrame)); err != nil {
			return nil, fmt.Errorf("rpcclient: write CONNECT: %w", err)
		}

		deadline := time.Now().Add(negotiationTimeout)
		_ = conn.SetReadDeadline(deadline)
		var buf []byte
		readChunk := make([]byte, 4096)
		for {
			n, err := conn.Read(readChunk)
			if err != nil {
				return nil, fmt.Errorf("rpcclient: await CONNECTED: %w", err)
			}
			buf = append(buf, readChunk[:n]...)
			f, consumed, derr := stomp.Decode(buf)
			if derr != nil {
				return nil, fmt.Errorf("rpcclient: decode CONNECTED: %w", derr)
			}
			if f == nil {
				continue
			}
			buf = buf[consumed:]
			if f.IsHeartbeat() {
				continue
			}
			if f.Command == stomp.CmdError {
				msg, _ := f.Headers.Get(stomp.HdrMessage)
				return nil, fmt.Errorf("rpcclient: STOMP CONNECT rejected: %s", msg)
			}
			if f.Command != stomp.CmdConnected {
				return nil, fmt.Errorf("rpcclient: unexpected frame %q awaiting CONNECTED", f.Command)
			}
			break
		}

		for i, dest := range policy.subscriptionDestinations() {
			sub := stomp.Frame{
				Command: stomp.CmdSubscribe,
				Headers: stomp.Headers{
					{Key: stomp.HdrDestination, Value: dest},
					{Key: stomp.HdrID, Value: strconv.Itoa(i)},
				},
			}
			if _, err := conn.Write(stomp.Encode(sub)); err != nil {
				return nil, fmt.Errorf("rpcclient: write SUBSCRIBE %s: %w", dest, err)
			}
		}
		return conn, nil
	}
}

// stompPolicyLike is the narrow slice of config.StompPolicy this
// package needs, kept as an interface so tests can supply a fake
// without constructing a full policy value.
type stompPolicyLike interface {
	heartbeatSendMillis() int64
	heartbeatReceiveMillis() int64
	subscriptionDestinations() []string
}
