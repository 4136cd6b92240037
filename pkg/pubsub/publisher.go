// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/semaphore"

	"github.com/AleutianAI/hostrpc/pkg/jsonrpc"
	"github.com/AleutianAI/hostrpc/pkg/logging"
	"github.com/AleutianAI/hostrpc/pkg/stompmatch"
)

// DefaultWorkers bounds concurrent event-delivery goroutines when the
// caller does not specify a worker count.
const DefaultWorkers = 8

// Publisher matches inbound events against registered holders and
// drains each matched holder onto a bounded worker pool.
type Publisher struct {
	matcher *stompmatch.Matcher[*Holder]
	sem     *semaphore.Weighted
	logger  *slog.Logger
}

// NewPublisher constructs a Publisher whose concurrent delivery
// goroutines are capped at workers (DefaultWorkers if <= 0).
func NewPublisher(workers int64, logger *slog.Logger) *Publisher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = logging.Default().Slog()
	}
	return &Publisher{
		matcher: stompmatch.New[*Holder](),
		sem:     semaphore.NewWeighted(workers),
		logger:  logger,
	}
}

// Subscribe registers a new holder for id and returns it so the
// caller can later call Request/Cancel on it.
func (p *Publisher) Subscribe(id stompmatch.ID, sub Subscriber, maxQueue int) (*Holder, error) {
	h := NewHolder(id, sub, maxQueue)
	if err := p.matcher.Add(id, h); err != nil {
		return nil, fmt.Errorf("pubsub: subscribe: %w", err)
	}
	return h, nil
}

// Cancel removes h from the matcher and notifies its subscriber that
// no further events will arrive.
func (p *Publisher) Cancel(h *Holder) {
	p.matcher.Remove(h)
	h.subscriber.OnComplete()
}

// Request adds k permits to h and schedules delivery if that unblocks
// pending events.
func (p *Publisher) Request(ctx context.Context, h *Holder, k int64) {
	if h.Request(k) {
		p.schedule(ctx, h)
	}
}

// Publish parses event's method as a stompmatch.ID, matches it against
// every registered holder, enqueues it on each match, and schedules
// delivery for any holder that can immediately process.
func (p *Publisher) Publish(ctx context.Context, event *jsonrpc.Request) {
	id, err := stompmatch.Parse(event.Method)
	if err != nil {
		p.logger.Warn("pubsub: dropping event with unroutable method", slog.String("method", event.Method), slog.Any("error", err))
		return
	}

	for _, h := range p.matcher.Match(id) {
		h.enqueue(event)
		if h.canProcess() {
			p.schedule(ctx, h)
		}
	}
}

// schedule drains h on a pooled goroutine while it has queued events
// and available permits.
func (p *Publisher) schedule(ctx context.Context, h *Holder) {
	h.setBusy(true)
	go func() {
		defer h.setBusy(false)
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer p.sem.Release(1)

		for {
			event, ok := h.drainOne()
			if !ok {
				break
			}
			p.deliver(h, event)
		}
	}()
}

// deliver hands event to h's subscriber, routing to OnError when the
// event's params carry a synthesized "error" key (the response
// worker's host-scoped broadcast convention) and to OnNext otherwise.
func (p *Publisher) deliver(h *Holder, event *jsonrpc.Request) {
	var probe struct {
		Error *jsonrpc.Error `json:"error"`
	}
	if len(event.Params) > 0 {
		if err := json.Unmarshal(event.Params, &probe); err != nil {
			p.logger.Warn("pubsub: malformed event params", slog.String("method", event.Method), slog.Any("error", err))
			return
		}
	}
	if probe.Error != nil {
		h.subscriber.OnError(event.Method, probe.Error.Message)
		return
	}
	h.subscriber.OnNext(event.Method, event.Params)
}
