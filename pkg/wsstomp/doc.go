// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package wsstomp adapts a gorilla/websocket connection to the
// net.Conn shape pkg/rpcclient.DialFunc expects, so the same STOMP
// codec and reactor-driven client used over raw TCP/TLS can run over a
// WebSocket byte stream instead — for browser- or console-facing
// deployments that cannot open a bare socket. It only dials and
// adapts; it does not implement HTTP routing, an Upgrade handler, or
// any form of dispatch.
package wsstomp
