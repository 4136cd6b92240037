// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pubsub

import (
	"sync"

	"github.com/AleutianAI/hostrpc/pkg/jsonrpc"
	"github.com/AleutianAI/hostrpc/pkg/stompmatch"
)

// Subscriber receives the events a Holder has been matched against.
type Subscriber interface {
	// OnNext is called with a decoded event. params is the event's raw
	// JSON params, already separated from the error-shaped payloads
	// that route to OnError instead.
	OnNext(method string, params []byte)

	// OnError is called when an event's params carry an "error" key,
	// as synthesized by the response worker for host-scoped broadcasts.
	OnError(method string, errMsg string)

	// OnComplete is called exactly once, when the holder is canceled.
	OnComplete()
}

// DefaultMaxQueue bounds a holder's pending-event backlog when the
// caller does not specify one.
const DefaultMaxQueue = 256

// Holder queues events matched against one subscription and tracks
// the subscriber's outstanding permits.
type Holder struct {
	ID         stompmatch.ID
	subscriber Subscriber
	maxQueue   int

	mu      sync.Mutex
	queue   []*jsonrpc.Request
	permits int64
	busy    bool
}

// NewHolder constructs a Holder for id, delivering matched events to
// sub. maxQueue <= 0 uses DefaultMaxQueue.
func NewHolder(id stompmatch.ID, sub Subscriber, maxQueue int) *Holder {
	if maxQueue <= 0 {
		maxQueue = DefaultMaxQueue
	}
	return &Holder{ID: id, subscriber: sub, maxQueue: maxQueue}
}

// enqueue appends event to the holder's pending queue, dropping the
// oldest entry if the queue is already at capacity (backpressure is
// the caller's responsibility to apply upstream; the holder itself
// never blocks the matcher).
func (h *Holder) enqueue(event *jsonrpc.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.queue) >= h.maxQueue {
		h.queue = h.queue[1:]
	}
	h.queue = append(h.queue, event)
}

// canProcess reports whether the holder has both a pending event and
// an available permit, and is not already being drained by another
// goroutine.
func (h *Holder) canProcess() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.busy && len(h.queue) > 0 && h.permits > 0
}

// Request adds k permits to the holder and reports whether draining
// should now be (re)scheduled.
func (h *Holder) Request(k int64) bool {
	if k <= 0 {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.permits += k
	return !h.busy && len(h.queue) > 0
}

// drainOne pops the next event and consumes one permit, if an event
// is queued and a permit is available. It does not touch the busy
// flag; Publisher.schedule sets and clears that via setBusy around
// its drain loop.
func (h *Holder) drainOne() (event *jsonrpc.Request, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.queue) == 0 || h.permits == 0 {
		return nil, false
	}
	event = h.queue[0]
	h.queue = h.queue[1:]
	h.permits--
	return event, true
}

func (h *Holder) setBusy(v bool) {
	h.mu.Lock()
	h.busy = v
	h.mu.Unlock()
}

