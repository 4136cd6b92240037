// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package telemetry wires the OpenTelemetry tracer and meter this
// module's packages share, and provides the handful of exporter
// configurations a host process needs: a Prometheus registry for
// metrics scraping, and a stdout trace exporter for local development.
//
// # Description
//
// The packages in this module that emit telemetry (rpcclient's
// Connect span and facade's call/batch spans) take their Tracer from
// this package rather than calling otel.Tracer directly, so a single
// Configure call governs them. The tracker, reactor and pubsub
// packages emit no spans or metrics.
package telemetry
