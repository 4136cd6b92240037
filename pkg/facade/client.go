// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package facade

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/hostrpc/pkg/jsonrpc"
	"github.com/AleutianAI/hostrpc/pkg/telemetry"
	"github.com/AleutianAI/hostrpc/pkg/tracker"
)

// BatchCall is one call within a Batch invocation: a method and its
// params, with an id generated automatically if ID is empty.
type BatchCall struct {
	ID     string
	Method string
	Params any
}

// Client is the JSON-RPC caller surface over a tracked connection.
type Client struct {
	sender  tracker.Sender
	tracker *tracker.ResponseTracker
}

// New constructs a Client. sender is normally a *pkg/rpcclient.Client;
// tr is the same ResponseTracker that client's ResponseWorker delivers
// incoming responses into.
func New(sender tracker.Sender, tr *tracker.ResponseTracker) *Client {
	return &Client{sender: sender, tracker: tr}
}

// Call sends a single JSON-RPC request and blocks for its response (or
// ctx cancellation / timeout, whichever comes first).
func (c *Client) Call(ctx context.Context, method string, params any, timeout time.Duration) (*jsonrpc.Response, error) {
	ctx, span := telemetry.StartSpan(ctx, "hostrpc.jsonrpc/call")
	defer span.End()
	span.SetAttributes(attribute.String("rpc.method", method))

	id := uuid.NewString()
	req, err := jsonrpc.NewRequest(id, method, params)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("facade: build request: %w", err)
	}
	raw, err := json.Marshal(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("facade: marshal request: %w", err)
	}

	call := tracker.NewPendingCall([]string{id})
	if err := c.tracker.RegisterCall([]string{id}, raw, c.sender, call); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("facade: register call: %w", err)
	}
	if err := c.sender.Send(raw); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("facade: send request: %w", err)
	}

	waitCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	responses, err := call.Wait(waitCtx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("facade: call %s: %w", method, err)
	}
	resp := responses[0]
	if resp.Error != nil {
		span.SetStatus(codes.Error, resp.Error.Message)
	}
	return resp, nil
}

// Batch sends every call in calls as one JSON-RPC batch array and
// blocks until all ids have responded or the deadline is reached.
// Responses are returned in no particular order; match them to calls
// via Response.ID.
func (c *Client) Batch(ctx context.Context, calls []BatchCall, timeout time.Duration) ([]*jsonrpc.Response, error) {
	ctx, span := telemetry.StartSpan(ctx, "hostrpc.jsonrpc/batch")
	defer span.End()
	span.SetAttributes(attribute.Int("rpc.batch_size", len(calls)))

	if len(calls) == 0 {
		return nil, fmt.Errorf("facade: batch: no calls supplied")
	}

	ids := make([]string, len(calls))
	reqs := make([]*jsonrpc.Request, len(calls))
	for i, bc := range calls {
		id := bc.ID
		if id == "" {
			id = uuid.NewString()
		}
		req, err := jsonrpc.NewRequest(id, bc.Method, bc.Params)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("facade: build batch entry %d: %w", i, err)
		}
		ids[i] = id
		reqs[i] = req
	}
	raw, err := json.Marshal(reqs)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("facade: marshal batch: %w", err)
	}

	call := tracker.NewPendingCall(ids)
	if err := c.tracker.RegisterCall(ids, raw, c.sender, call); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("facade: register batch: %w", err)
	}
	if err := c.sender.Send(raw); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("facade: send batch: %w", err)
	}

	waitCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	responses, err := call.Wait(waitCtx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("facade: batch wait: %w", err)
	}
	return responses, nil
}

// Notify sends a fire-and-forget JSON-RPC notification: no id, no
// tracked response.
func (c *Client) Notify(method string, params any) error {
	req, err := jsonrpc.NewNotification(method, params)
	if err != nil {
		return fmt.Errorf("facade: build notification: %w", err)
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("facade: marshal notification: %w", err)
	}
	if err := c.sender.Send(raw); err != nil {
		return fmt.Errorf("facade: send notification: %w", err)
	}
	return nil
}
