// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rpcclient

// State is the connection lifecycle state.
type State int

const (
	// Disconnected is the initial and final state.
	Disconnected State = iota
	// Connecting means the socket dial is in flight.
	Connecting
	// Initializing means the socket is open and a transport-level
	// handshake (TLS and/or STOMP CONNECT) is in progress.
	Initializing
	// Open means the client can send and receive application messages.
	Open
	// Closing means disconnect has been requested; processing returns
	// early and the socket is being torn down.
	Closing
)

func (s State) String() string {
	names := []string{"disconnected", "connecting", "initializing", "open", "closing"}
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// pastInitializing reports whether heartbeat liveness checks apply:
// true for Open and Closing, false while still connecting/handshaking.
func (s State) pastInitializing() bool {
	return s == Open || s == Closing
}
