// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package facade is the JSON-RPC client-facing surface: call, batch
// and notify, layered over a pkg/tracker.ResponseTracker and a
// pkg/tracker.Sender (normally a pkg/rpcclient.Client). It generates
// request ids with google/uuid when the caller does not supply one and
// wraps call/batch in an OpenTelemetry span.
package facade
