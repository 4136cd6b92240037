// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package hostrpc wires a reactor, a reactor-driven client, a response
// tracker and worker, an event publisher, and a call facade into one
// Endpoint: a reusable JSON-RPC-over-TCP/TLS/STOMP transport for a
// hypervisor-host agent. It carries no method dispatch, no business
// objects, and no persistence — callers issue Call/Batch/Notify and
// subscribe to events; what a method means is entirely up to them.
package hostrpc
