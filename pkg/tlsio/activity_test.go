// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tlsio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActivityClock_TracksSendAndRecv(t *testing.T) {
	var c ActivityClock
	assert.Zero(t, c.SinceLastSend())
	assert.Zero(t, c.SinceLastRecv())

	c.MarkSend()
	time.Sleep(5 * time.Millisecond)
	c.MarkRecv()

	assert.Greater(t, c.SinceLastSend(), time.Duration(0))
	assert.GreaterOrEqual(t, c.SinceLastSend(), c.SinceLastRecv())
}
