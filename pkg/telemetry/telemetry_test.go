// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package telemetry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureStdout(t *testing.T) {
	shutdown, err := ConfigureStdout(context.Background())
	require.NoError(t, err)
	defer shutdown(context.Background())

	_, span := StartSpan(context.Background(), "test.span")
	assert.NotNil(t, span)
	span.End()
}

func TestConfigurePrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	shutdown, err := ConfigurePrometheus(reg)
	require.NoError(t, err)
	defer shutdown(context.Background())

	counter, err := Int64Counter("hostrpc_test_total", "a test counter")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)
}

func TestFloat64Histogram(t *testing.T) {
	hist, err := Float64Histogram("hostrpc_test_duration_seconds", "a test histogram", "s")
	require.NoError(t, err)
	hist.Record(context.Background(), 0.5)
}
