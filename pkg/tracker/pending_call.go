// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tracker

import (
	"context"
	"fmt"
	"sync"

	"github.com/AleutianAI/hostrpc/pkg/jsonrpc"
)

// PendingCall is what a caller blocks on: a single request id, or a
// batch's countdown over several ids collected atomically.
type PendingCall struct {
	mu        sync.Mutex
	remaining int
	responses map[string]*jsonrpc.Response
	done      chan struct{}
	closeOnce sync.Once
}

// NewPendingCall creates a call waiting on exactly the given ids
// (length 1 for a simple call, N for a batch).
func NewPendingCall(ids []string) *PendingCall {
	return &PendingCall{
		remaining: len(ids),
		responses: make(map[string]*jsonrpc.Response, len(ids)),
		done:      make(chan struct{}),
	}
}

// Complete attaches resp for id. It reports whether the call is now
// fully satisfied (every id in the batch has a response), in which
// case the caller's Wait unblocks.
func (c *PendingCall) Complete(id string, resp *jsonrpc.Response) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, already := c.responses[id]; already {
		return c.remaining == 0
	}
	c.responses[id] = resp
	c.remaining--
	if c.remaining <= 0 {
		c.closeOnce.Do(func() { close(c.done) })
		return true
	}
	return false
}

// Wait blocks until every id has a response or ctx is done, then
// returns the collected responses in no particular order.
func (c *PendingCall) Wait(ctx context.Context) ([]*jsonrpc.Response, error) {
	select {
	case <-c.done:
		return c.snapshot(), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("tracker: wait canceled: %w", ctx.Err())
	}
}

func (c *PendingCall) snapshot() []*jsonrpc.Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*jsonrpc.Response, 0, len(c.responses))
	for _, r := range c.responses {
		out = append(out, r)
	}
	return out
}

// outstandingIDs returns the ids in all that this call is still
// missing a response for.
func (c *PendingCall) outstandingIDs(all []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, id := range all {
		if _, ok := c.responses[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
