// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package hostrpc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AleutianAI/hostrpc/pkg/facade"
	"github.com/AleutianAI/hostrpc/pkg/jsonrpc"
	"github.com/AleutianAI/hostrpc/pkg/logging"
	"github.com/AleutianAI/hostrpc/pkg/pubsub"
	"github.com/AleutianAI/hostrpc/pkg/reactor"
	"github.com/AleutianAI/hostrpc/pkg/rpcclient"
	"github.com/AleutianAI/hostrpc/pkg/stompmatch"
	"github.com/AleutianAI/hostrpc/pkg/tracker"
)

// Endpoint is one dialed connection and everything that keeps it
// alive: a reactor driving its reads/writes/heartbeats, a response
// tracker retrying and timing out outstanding calls, a response
// worker classifying inbound traffic into replies and events, an
// event publisher fanning events out to subscribers, and a call facade
// for issuing new requests.
type Endpoint struct {
	id string

	reactor   *reactor.Reactor
	client    *rpcclient.Client
	tracker   *tracker.ResponseTracker
	worker    *tracker.ResponseWorker
	publisher *pubsub.Publisher
	calls     *facade.Client

	logger *slog.Logger
	cancel context.CancelFunc
}

// New builds an Endpoint's components but does not dial; call Start
// to connect and begin driving the reactor.
func New(cfg Config) (*Endpoint, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("hostrpc: Config.ID must not be empty")
	}
	if cfg.Dial == nil {
		return nil, fmt.Errorf("hostrpc: Config.Dial must not be nil")
	}
	if cfg.Codec == nil {
		return nil, fmt.Errorf("hostrpc: Config.Codec must not be nil")
	}
	if err := cfg.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("hostrpc: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default().Slog()
	}
	logger = logger.With(slog.String("endpoint_id", cfg.ID))

	e := &Endpoint{id: cfg.ID, logger: logger}

	e.publisher = pubsub.NewPublisher(cfg.PublisherWorkers, logger)
	e.reactor = reactor.New(cfg.ReactorTick, logger)

	e.tracker = tracker.New(cfg.ID, cfg.Policy.RetryTimeout, cfg.Policy.RetryCount, e.handleRetriesExhausted, logger)
	e.worker = tracker.NewResponseWorker(cfg.WorkerQueueSize, e.tracker, e.publisher, cfg.Hostname, logger)

	e.client = rpcclient.New(rpcclient.Config{
		ID:      cfg.ID,
		Policy:  cfg.Policy,
		Codec:   cfg.Codec,
		Dial:    cfg.Dial,
		Post:    cfg.Post,
		OnMsg:   e.handleInbound,
		OnClose: e.handleDisconnect,
		Logger:  logger,
		Tuning:  cfg.Tuning,
	})

	e.calls = facade.New(e.client, e.tracker)
	return e, nil
}

// Start dials the connection, registers it with the reactor, and
// starts the reactor/tracker/worker loops. It blocks until Connect
// succeeds or fails; the driving loops then run until ctx is done or
// Stop is called.
func (e *Endpoint) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	if err := e.client.Connect(runCtx); err != nil {
		cancel()
		return fmt.Errorf("hostrpc: connect: %w", err)
	}
	e.reactor.Register(e.client)

	go e.reactor.Run(runCtx)
	go e.tracker.Run(runCtx)
	go e.worker.Run(runCtx)
	return nil
}

// Stop disconnects the client and ends the reactor/tracker/worker
// loops. Safe to call more than once.
func (e *Endpoint) Stop() {
	e.client.Disconnect("endpoint stopped")
	e.tracker.FailAll("endpoint stopped")
	e.tracker.Stop()
	e.reactor.Stop()
	if e.cancel != nil {
		e.cancel()
	}
}

// Call issues a single JSON-RPC request and waits for its response.
func (e *Endpoint) Call(ctx context.Context, method string, params any, timeout time.Duration) (*jsonrpc.Response, error) {
	return e.calls.Call(ctx, method, params, timeout)
}

// Batch issues several requests as one JSON-RPC batch.
func (e *Endpoint) Batch(ctx context.Context, calls []facade.BatchCall, timeout time.Duration) ([]*jsonrpc.Response, error) {
	return e.calls.Batch(ctx, calls, timeout)
}

// Notify sends a fire-and-forget notification.
func (e *Endpoint) Notify(method string, params any) error {
	return e.calls.Notify(method, params)
}

// Subscribe registers sub for events matching id.
func (e *Endpoint) Subscribe(id stompmatch.ID, sub pubsub.Subscriber, maxQueue int) (*pubsub.Holder, error) {
	return e.publisher.Subscribe(id, sub, maxQueue)
}

// RequestEvents adds k delivery permits to h.
func (e *Endpoint) RequestEvents(ctx context.Context, h *pubsub.Holder, k int64) {
	e.publisher.Request(ctx, h, k)
}

// CancelSubscription removes h and notifies its subscriber of
// completion.
func (e *Endpoint) CancelSubscription(h *pubsub.Holder) {
	e.publisher.Cancel(h)
}

func (e *Endpoint) handleInbound(raw []byte) {
	if !e.worker.Enqueue(raw) {
		e.logger.Warn("hostrpc: response worker queue full, dropping message")
	}
}

func (e *Endpoint) handleDisconnect(reason string) {
	e.tracker.FailAll(reason)
	e.reactor.Deregister(e.id)
}

func (e *Endpoint) handleRetriesExhausted(clientID, reason string) {
	e.logger.Warn("hostrpc: disconnecting after exhausted retries", slog.String("client_id", clientID), slog.String("reason", reason))
	e.client.Disconnect(reason)
}
