// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stompbroker

import (
	"log/slog"
	"net"
	"sync"

	"github.com/AleutianAI/hostrpc/pkg/logging"
	"github.com/AleutianAI/hostrpc/pkg/stomp"
)

// Broker fans SEND frames out to every connection subscribed to their
// destination. One Broker may be shared across many accepted
// connections.
type Broker struct {
	heartbeat stomp.HeartBeat
	logger    *slog.Logger

	mu   sync.Mutex
	subs map[string][]*subscription
}

// subscription is one connection's registration for a destination.
type subscription struct {
	id          string
	destination string
	clientAck   bool
	conn        *connection
}

// New constructs a Broker that proposes heartbeat as its own cx,cy
// pair on every CONNECTED it sends.
func New(heartbeat stomp.HeartBeat, logger *slog.Logger) *Broker {
	if logger == nil {
		logger = logging.Default().Slog()
	}
	return &Broker{
		heartbeat: heartbeat,
		logger:    logger,
		subs:      make(map[string][]*subscription),
	}
}

// Accept is a pkg/reactor.AcceptHandler: it runs the connection's
// frame loop on its own goroutine until the peer disconnects or the
// socket errors, then unregisters every subscription it held.
func (b *Broker) Accept(conn net.Conn) {
	c := &connection{broker: b, conn: conn, logger: b.logger}
	go c.run()
}

func (b *Broker) subscribe(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[sub.destination] = append(b.subs[sub.destination], sub)
}

func (b *Broker) unsubscribeAll(c *connection) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for dest, subs := range b.subs {
		kept := subs[:0]
		for _, s := range subs {
			if s.conn != c {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			delete(b.subs, dest)
		} else {
			b.subs[dest] = kept
		}
	}
}

// subscribersOf returns a snapshot of the subscriptions currently
// registered for destination, safe to range over without holding the
// broker lock while writing to each connection.
func (b *Broker) subscribersOf(destination string) []*subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[destination]
	out := make([]*subscription, len(subs))
	copy(out, subs)
	return out
}
