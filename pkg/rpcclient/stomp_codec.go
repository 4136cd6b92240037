// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rpcclient

import (
	"github.com/AleutianAI/hostrpc/pkg/stomp"
)

// StompCodec frames JSON-RPC payloads as STOMP SEND/MESSAGE frame
// bodies on a fixed destination. Control frames (CONNECTED, RECEIPT,
// ERROR, and the bare-newline heartbeat) carry no JSON-RPC payload;
// they are handed to OnControl, if set, rather than surfaced through
// Decode's msg return, so postConnect can observe the CONNECTED
// handshake without the generic Client read loop needing STOMP
// awareness.
type StompCodec struct {
	Destination string
	OnControl   func(f *stomp.Frame)
}

func (c *StompCodec) Decode(buf []byte) ([]byte, int, error) {
	f, consumed, err := stomp.Decode(buf)
	if err != nil {
		return nil, 0, err
	}
	if f == nil {
		return nil, 0, nil
	}
	if f.IsHeartbeat() {
		c.notify(f)
		return nil, consumed, nil
	}
	switch f.Command {
	case stomp.CmdMessage:
		return f.Body, consumed, nil
	default:
		c.notify(f)
		return nil, consumed, nil
	}
}

func (c *StompCodec) notify(f *stomp.Frame) {
	if c.OnControl != nil {
		c.OnControl(f)
	}
}

func (c *StompCodec) Encode(msg []byte) []byte {
	return stomp.Encode(stomp.Frame{
		Command: stomp.CmdSend,
		Headers: stomp.Headers{
			{Key: stomp.HdrDestination, Value: c.Destination},
			{Key: stomp.HdrContentType, Value: "application/json"},
		},
		Body: msg,
	})
}

func (c *StompCodec) Heartbeat() []byte {
	return []byte("\n")
}
