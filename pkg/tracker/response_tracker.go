// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AleutianAI/hostrpc/pkg/jsonrpc"
	"github.com/AleutianAI/hostrpc/pkg/logging"
)

// ErrDuplicateRequest is returned by RegisterCall when an id is
// already tracked.
var ErrDuplicateRequest = errors.New("tracker: duplicate request id")

// WakeInterval is how often the sweep goroutine checks tracked
// requests for expired deadlines.
const WakeInterval = 500 * time.Millisecond

// DisconnectFunc is invoked, with the originating client's id and a
// reason, when a tracked request exhausts its retries.
type DisconnectFunc func(clientID, reason string)

// ResponseTracker owns the outstanding-call bookkeeping for one
// reactor client connection: which ids are awaited (runningCalls) and
// which ids are subject to retry (tracking).
type ResponseTracker struct {
	clientID     string
	retryTimeout time.Duration
	retryCount   int
	disconnect   DisconnectFunc
	logger       *slog.Logger

	mu           sync.Mutex
	runningCalls map[string]*PendingCall
	tracking     map[string]*TrackedRequest

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New constructs a ResponseTracker for one client connection.
func New(clientID string, retryTimeout time.Duration, retryCount int, disconnect DisconnectFunc, logger *slog.Logger) *ResponseTracker {
	if logger == nil {
		logger = logging.Default().Slog()
	}
	return &ResponseTracker{
		clientID:     clientID,
		retryTimeout: retryTimeout,
		retryCount:   retryCount,
		disconnect:   disconnect,
		logger:       logger,
		runningCalls: make(map[string]*PendingCall),
		tracking:     make(map[string]*TrackedRequest),
		stopCh:       make(chan struct{}),
	}
}

// RegisterCall registers every id in ids against call, and arranges
// for raw to be resent via sender on retry. It fails atomically with
// ErrDuplicateRequest if any id is already registered, leaving no
// partial registration behind.
func (t *ResponseTracker) RegisterCall(ids []string, raw []byte, sender Sender, call *PendingCall) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, id := range ids {
		if _, dup := t.runningCalls[id]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateRequest, id)
		}
	}
	deadline := time.Now().Add(t.retryTimeout)
	for _, id := range ids {
		t.runningCalls[id] = call
		t.tracking[id] = &TrackedRequest{
			ID:       id,
			Raw:      raw,
			Deadline: deadline,
			Attempts: t.retryCount,
			Sender:   sender,
			Call:     call,
		}
	}
	return nil
}

// Deliver attaches resp to the pending call awaiting id, then removes
// that id from both maps; ids of the same batch that are still
// unanswered stay tracked.
func (t *ResponseTracker) Deliver(id string, resp *jsonrpc.Response) {
	t.mu.Lock()
	call, ok := t.runningCalls[id]
	t.mu.Unlock()
	if !ok {
		t.logger.Debug("tracker: response for unknown or already-completed id", slog.String("id", id))
		return
	}

	call.Complete(id, resp)

	t.mu.Lock()
	delete(t.runningCalls, id)
	delete(t.tracking, id)
	t.mu.Unlock()
}

// Run starts the sweep loop at WakeInterval; it blocks until ctx is
// done or Stop is called.
func (t *ResponseTracker) Run(ctx context.Context) {
	t.runFast(ctx, WakeInterval)
}

// runFast is Run with an overridable wake interval, used by tests that
// cannot afford to wait out the real 500ms cadence.
func (t *ResponseTracker) runFast(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stopCh:
			return
		case <-ticker.C:
			t.sweep()
		}
	}
}

// Stop ends the sweep loop. Safe to call more than once.
func (t *ResponseTracker) Stop() {
	t.stopOnce.Do(func() { close(t.stopCh) })
}

// FailAll completes every currently tracked request with a synthetic
// transport-timeout error and clears the tracker. Used by a reactor
// client on disconnect (socket fault or heartbeat expiry) so no caller
// is left waiting on a connection that will never produce a response.
func (t *ResponseTracker) FailAll(reason string) {
	t.mu.Lock()
	reqs := make([]*TrackedRequest, 0, len(t.tracking))
	for _, req := range t.tracking {
		reqs = append(reqs, req)
	}
	t.tracking = make(map[string]*TrackedRequest)
	t.runningCalls = make(map[string]*PendingCall)
	t.mu.Unlock()

	for _, req := range reqs {
		resp := &jsonrpc.Response{
			JSONRPC: jsonrpc.Version,
			ID:      req.ID,
			Error:   jsonrpc.TransportTimeoutErrorWithReason(reason),
		}
		req.Call.Complete(req.ID, resp)
	}
	if len(reqs) > 0 {
		t.logger.Warn("tracker: failing all outstanding requests", slog.String("client_id", t.clientID), slog.String("reason", reason), slog.Int("count", len(reqs)))
	}
}

func (t *ResponseTracker) sweep() {
	now := time.Now()

	t.mu.Lock()
	var expired []*TrackedRequest
	for id, req := range t.tracking {
		if _, stillRunning := t.runningCalls[id]; !stillRunning {
			delete(t.tracking, id)
			continue
		}
		if req.expired(now) {
			expired = append(expired, req)
		}
	}
	t.mu.Unlock()

	for _, req := range expired {
		t.handleExpired(req, now)
	}
}

func (t *ResponseTracker) handleExpired(req *TrackedRequest, now time.Time) {
	t.mu.Lock()
	stillTracking := false
	if _, ok := t.tracking[req.ID]; ok {
		if req.exhausted() {
			delete(t.tracking, req.ID)
			delete(t.runningCalls, req.ID)
		} else {
			req.Attempts--
			req.Deadline = now.Add(t.retryTimeout)
			stillTracking = true
		}
	}
	t.mu.Unlock()

	if !stillTracking {
		t.failWithTimeout(req)
		return
	}

	if err := req.Sender.Send(req.Raw); err != nil {
		t.logger.Warn("tracker: resend failed", slog.String("id", req.ID), slog.Any("error", err))
	}
}

func (t *ResponseTracker) failWithTimeout(req *TrackedRequest) {
	resp := &jsonrpc.Response{
		JSONRPC: jsonrpc.Version,
		ID:      req.ID,
		Error:   jsonrpc.TransportTimeoutError(),
	}
	req.Call.Complete(req.ID, resp)
	t.logger.Warn("tracker: request exhausted retries, disconnecting", slog.String("id", req.ID), slog.String("client_id", t.clientID))
	if t.disconnect != nil {
		t.disconnect(t.clientID, "retries exhausted for request "+req.ID)
	}
}
