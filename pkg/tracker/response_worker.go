// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tracker

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/AleutianAI/hostrpc/pkg/jsonrpc"
	"github.com/AleutianAI/hostrpc/pkg/logging"
)

// Publisher is the subset of pubsub.Publisher the response worker
// needs, kept narrow here so this package does not import pubsub.
type Publisher interface {
	Publish(ctx context.Context, event *jsonrpc.Request)
}

// DefaultQueueSize bounds the worker's inbound message backlog when
// the caller does not specify one.
const DefaultQueueSize = 1024

// hostScopedPrefix marks an error code as a host-scoped broadcast
// rather than a per-call failure.
const hostScopedPrefix = "host:"

// wireElement is the shape of a single decoded JSON-RPC element,
// tolerant of both a numeric and a legacy string error code so a
// "host:"-prefixed code can be recognized before being rejected as
// malformed.
type wireElement struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *string         `json:"id"`
	Method  string          `json:"method"`
	Result  json.RawMessage `json:"result"`
	Error   *wireError      `json:"error"`
	Params  json.RawMessage `json:"params"`
}

type wireError struct {
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ResponseWorker is the single consumer of one connection's inbound
// message queue.
type ResponseWorker struct {
	queue     chan []byte
	tracker   *ResponseTracker
	publisher Publisher
	hostname  string
	logger    *slog.Logger
}

// NewResponseWorker constructs a worker bound to tracker and
// publisher. hostname is prefixed onto bare (receiver-less) event
// methods per §4.7. bufSize <= 0 uses DefaultQueueSize.
func NewResponseWorker(bufSize int, tracker *ResponseTracker, publisher Publisher, hostname string, logger *slog.Logger) *ResponseWorker {
	if bufSize <= 0 {
		bufSize = DefaultQueueSize
	}
	if logger == nil {
		logger = logging.Default().Slog()
	}
	return &ResponseWorker{
		queue:     make(chan []byte, bufSize),
		tracker:   tracker,
		publisher: publisher,
		hostname:  hostname,
		logger:    logger,
	}
}

// Enqueue offers raw to the worker's queue without blocking. It
// reports false if the queue is full, in which case the caller (a
// reactor client's message listener) is responsible for deciding
// whether to drop or apply backpressure.
func (w *ResponseWorker) Enqueue(raw []byte) bool {
	select {
	case w.queue <- raw:
		return true
	default:
		return false
	}
}

// Run consumes the queue until ctx is done.
func (w *ResponseWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw := <-w.queue:
			w.process(ctx, raw)
		}
	}
}

func (w *ResponseWorker) process(ctx context.Context, raw []byte) {
	elems, err := jsonrpc.DecodeEnvelope(raw)
	if err != nil {
		w.logger.Warn("tracker: dropping unparseable message", slog.Any("error", err))
		return
	}
	for _, elem := range elems {
		w.processElement(ctx, elem)
	}
}

func (w *ResponseWorker) processElement(ctx context.Context, raw json.RawMessage) {
	var el wireElement
	if err := json.Unmarshal(raw, &el); err != nil {
		w.logger.Warn("tracker: dropping malformed element", slog.Any("error", err))
		return
	}

	if el.Error != nil {
		w.processErrorElement(ctx, el)
		return
	}

	if el.ID == nil || *el.ID == "" {
		w.processEvent(ctx, el)
		return
	}

	w.tracker.Deliver(*el.ID, &jsonrpc.Response{
		JSONRPC: firstNonEmpty(el.JSONRPC, jsonrpc.Version),
		ID:      *el.ID,
		Result:  el.Result,
	})
}

func (w *ResponseWorker) processErrorElement(ctx context.Context, el wireElement) {
	code, hostScoped, host := parseErrorCode(el.Error.Code)

	if el.ID != nil && *el.ID != "" {
		w.tracker.Deliver(*el.ID, &jsonrpc.Response{
			JSONRPC: firstNonEmpty(el.JSONRPC, jsonrpc.Version),
			ID:      *el.ID,
			Error:   &jsonrpc.Error{Code: code, Message: el.Error.Message, Data: el.Error.Data},
		})
	}

	if !hostScoped {
		return
	}

	payload, err := json.Marshal(struct {
		Error *jsonrpc.Error `json:"error"`
	}{Error: &jsonrpc.Error{Code: code, Message: el.Error.Message, Data: el.Error.Data}})
	if err != nil {
		w.logger.Warn("tracker: failed to marshal broadcast event payload", slog.Any("error", err))
		return
	}

	event, err := jsonrpc.NewNotification(host+"|*|*|*", json.RawMessage(payload))
	if err != nil {
		w.logger.Warn("tracker: failed to build broadcast event", slog.Any("error", err))
		return
	}
	w.publisher.Publish(ctx, event)
}

func (w *ResponseWorker) processEvent(ctx context.Context, el wireElement) {
	if el.Method == "" {
		w.logger.Warn("tracker: dropping element with neither id nor method")
		return
	}
	method := el.Method
	if w.hostname != "" && strings.Count(method, "|") < 3 {
		method = w.hostname + "|" + method
	}
	event := &jsonrpc.Request{JSONRPC: jsonrpc.Version, Method: method, Params: el.Params}
	w.publisher.Publish(ctx, event)
}

// parseErrorCode interprets a JSON-RPC error code that may be either a
// standard integer or a legacy "host:<name>"-prefixed string. It
// returns the numeric code to surface on the Response (0 when the
// code was host-scoped, since there is no meaningful integer form),
// whether the code was host-scoped, and the host name if so.
func parseErrorCode(raw json.RawMessage) (code int, hostScoped bool, host string) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, false, ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.HasPrefix(s, hostScopedPrefix) {
			return 0, true, strings.TrimPrefix(s, hostScopedPrefix)
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n, false, ""
		}
	}
	return 0, false, ""
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
