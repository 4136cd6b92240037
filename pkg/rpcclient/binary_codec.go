// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rpcclient

import (
	"bytes"

	"github.com/AleutianAI/hostrpc/pkg/frame"
)

// BinaryCodec frames JSON-RPC payloads with the length-prefixed binary
// wire format. It has no application-level heartbeat frame: liveness
// for this transport relies on socket-level keepalive (pkg/sockopts)
// and the reactor's read-heartbeat tracking.
type BinaryCodec struct {
	codec frame.Codec
}

// NewBinaryCodec constructs a BinaryCodec; maxPayload <= 0 uses
// frame.DefaultMaxPayload.
func NewBinaryCodec(maxPayload uint64) *BinaryCodec {
	return &BinaryCodec{codec: frame.Codec{MaxPayload: maxPayload}}
}

func (c *BinaryCodec) Decode(buf []byte) ([]byte, int, error) {
	return c.codec.DecodeFrame(buf)
}

func (c *BinaryCodec) Encode(msg []byte) []byte {
	var out bytes.Buffer
	// WriteFrame only fails on an empty body or one exceeding
	// MaxPayload; both are caller bugs the reactor client surfaces as
	// a send error rather than silently dropping bytes.
	if err := c.codec.WriteFrame(&out, msg); err != nil {
		return nil
	}
	return out.Bytes()
}

func (c *BinaryCodec) Heartbeat() []byte {
	return nil
}
