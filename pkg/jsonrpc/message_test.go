// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package jsonrpc

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_Validate(t *testing.T) {
	t.Run("rejects wrong version", func(t *testing.T) {
		r := &Request{JSONRPC: "1.0", Method: "Host.ping"}
		err := r.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIllegalArgument))
	})

	t.Run("rejects empty method", func(t *testing.T) {
		r := &Request{JSONRPC: Version, ID: "r1"}
		err := r.Validate()
		require.Error(t, err)
	})

	t.Run("accepts well-formed call", func(t *testing.T) {
		r := &Request{JSONRPC: Version, ID: "r1", Method: "Host.ping"}
		assert.NoError(t, r.Validate())
	})
}

func TestRequest_IsNotificationAndEvent(t *testing.T) {
	call := &Request{JSONRPC: Version, ID: "r1", Method: "Host.ping"}
	assert.False(t, call.IsNotification())
	assert.False(t, call.IsEvent())

	event := &Request{JSONRPC: Version, Method: "host1|storage|Image.create|x"}
	assert.True(t, event.IsNotification())
	assert.True(t, event.IsEvent())
}

func TestResponse_Validate(t *testing.T) {
	t.Run("rejects neither result nor error", func(t *testing.T) {
		r := &Response{JSONRPC: Version, ID: "r1"}
		assert.Error(t, r.Validate())
	})

	t.Run("rejects both result and error", func(t *testing.T) {
		r := &Response{JSONRPC: Version, ID: "r1", Result: json.RawMessage("true"), Error: &Error{Code: 1, Message: "x"}}
		assert.Error(t, r.Validate())
	})

	t.Run("accepts result only", func(t *testing.T) {
		r := &Response{JSONRPC: Version, ID: "r1", Result: json.RawMessage("true")}
		assert.NoError(t, r.Validate())
	})

	t.Run("accepts error only", func(t *testing.T) {
		r := &Response{JSONRPC: Version, ID: "r1", Error: &Error{Code: 1, Message: "x"}}
		assert.NoError(t, r.Validate())
	})
}

func TestTransportTimeoutError(t *testing.T) {
	e := TransportTimeoutError()
	assert.True(t, e.IsTransportTimeout())
	assert.Equal(t, CodeTransportTimeout, e.Code)
	assert.Equal(t, MsgTransportTimeout, e.Message)
}

// TestSimpleCallScenario implements scenario 1 of §8: a call for
// Host.ping round-trips through Classify as a response.
func TestSimpleCallScenario(t *testing.T) {
	wire := []byte(`{"jsonrpc":"2.0","id":"r1","result":true}`)
	resp, event, err := Classify(wire)
	require.NoError(t, err)
	require.Nil(t, event)
	require.NotNil(t, resp)
	assert.Equal(t, "r1", resp.ID)
	assert.Equal(t, json.RawMessage("true"), resp.Result)
}

func TestClassify_Event(t *testing.T) {
	wire := []byte(`{"jsonrpc":"2.0","method":"host1|storage|Image.create|x","params":{}}`)
	resp, event, err := Classify(wire)
	require.NoError(t, err)
	require.Nil(t, resp)
	require.NotNil(t, event)
	assert.Equal(t, "host1|storage|Image.create|x", event.Method)
}

func TestClassify_Malformed(t *testing.T) {
	_, _, err := Classify([]byte(`{"jsonrpc":"2.0"}`))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrProtocol))
}

func TestDecodeEnvelope_Batch(t *testing.T) {
	wire := []byte(`[{"jsonrpc":"2.0","id":"b1","result":1},{"jsonrpc":"2.0","id":"b2","result":2}]`)
	elems, err := DecodeEnvelope(wire)
	require.NoError(t, err)
	require.Len(t, elems, 2)
}

func TestDecodeEnvelope_Single(t *testing.T) {
	wire := []byte(`  {"jsonrpc":"2.0","id":"r1","result":1}`)
	elems, err := DecodeEnvelope(wire)
	require.NoError(t, err)
	require.Len(t, elems, 1)
}

func TestDecodeEnvelope_Empty(t *testing.T) {
	_, err := DecodeEnvelope([]byte("   "))
	assert.Error(t, err)
}

func TestNewRequest_MarshalsParams(t *testing.T) {
	req, err := NewRequest("r1", "Host.ping", map[string]int{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, "r1", req.ID)
	assert.JSONEq(t, `{"x":1}`, string(req.Params))
}

func TestNewNotification_HasNoID(t *testing.T) {
	n, err := NewNotification("Host.evict", nil)
	require.NoError(t, err)
	assert.True(t, n.IsNotification())
}
