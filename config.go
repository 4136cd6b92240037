// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package hostrpc

import (
	"log/slog"
	"time"

	"github.com/AleutianAI/hostrpc/pkg/config"
	"github.com/AleutianAI/hostrpc/pkg/rpcclient"
	"github.com/AleutianAI/hostrpc/pkg/sockopts"
)

// Config bundles everything an Endpoint needs to dial out, frame
// traffic, and track outstanding calls. The zero value is not usable;
// ID, Dial and Codec must be supplied.
type Config struct {
	// ID names this connection in logs and in the response tracker.
	ID string

	// Dial opens the raw transport. Use net.Dialer.DialContext for
	// plain TCP, rpcclient.TLSPostConnect chained after a plain dial
	// for TLS, or pkg/wsstomp.Dial for WebSocket.
	Dial rpcclient.DialFunc

	// Post runs once per connection before it reaches Open: TLS
	// handshake, STOMP CONNECT/CONNECTED/SUBSCRIBE, or both chained
	// with rpcclient.ChainPostConnect. Optional.
	Post rpcclient.PostConnectFunc

	// Codec selects binary length-prefixed framing or STOMP framing.
	Codec rpcclient.Codec

	// Policy governs retry and heartbeat behavior.
	Policy config.ClientPolicy

	// Tuning applies socket-level options after dial.
	Tuning sockopts.Tuning

	// ReactorTick is the reactor's read/write deadline granularity.
	// <= 0 uses reactor.DefaultTick.
	ReactorTick time.Duration

	// Hostname prefixes bare (receiver-less) event methods per the
	// response worker's convention. Optional.
	Hostname string

	// WorkerQueueSize bounds the response worker's inbound backlog.
	// <= 0 uses tracker.DefaultQueueSize.
	WorkerQueueSize int

	// PublisherWorkers bounds concurrent event-delivery goroutines.
	// <= 0 uses pubsub.DefaultWorkers.
	PublisherWorkers int64

	Logger *slog.Logger
}
