// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package reactor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingClient struct {
	id string

	mu    sync.Mutex
	calls []string
}

func (c *recordingClient) ID() string { return c.id }

func (c *recordingClient) Process(_ context.Context, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "process")
	return nil
}

func (c *recordingClient) PerformAction() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "perform")
}

func (c *recordingClient) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func TestReactor_SweepOrdersProcessBeforePerformAction(t *testing.T) {
	r := New(10*time.Millisecond, nil)
	a := &recordingClient{id: "a"}
	b := &recordingClient{id: "b"}
	r.Register(a)
	r.Register(b)

	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)
	defer cancel()

	require.Eventually(t, func() bool {
		return len(a.snapshot()) >= 2 && len(b.snapshot()) >= 2
	}, time.Second, time.Millisecond)

	aCalls := a.snapshot()
	require.GreaterOrEqual(t, len(aCalls), 2)
	assert.Equal(t, "process", aCalls[0])
	assert.Equal(t, "perform", aCalls[1])
}

func TestReactor_DeregisterStopsFurtherTurns(t *testing.T) {
	r := New(5*time.Millisecond, nil)
	a := &recordingClient{id: "a"}
	r.Register(a)

	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)

	require.Eventually(t, func() bool { return len(a.snapshot()) > 0 }, time.Second, time.Millisecond)
	r.Deregister("a")

	countAtDeregister := len(a.snapshot())
	time.Sleep(50 * time.Millisecond)
	cancel()

	// Allow at most one more in-flight sweep to have been scheduled
	// concurrently with the Deregister call.
	assert.LessOrEqual(t, len(a.snapshot()), countAtDeregister+2)
}

func TestReactor_PostRunsTaskFIFOBeforeNextSweep(t *testing.T) {
	r := New(50*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		n := i
		r.Post(func() {
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			wg.Done()
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("posted tasks never ran")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestReactor_WakeupInterruptsPendingTick(t *testing.T) {
	r := New(10*time.Second, nil) // deliberately long tick

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	start := time.Now()
	done := make(chan struct{})
	r.Post(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Post/Wakeup did not interrupt the pending 10s tick")
	}
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestReactor_StopIsIdempotentAndEndsRun(t *testing.T) {
	r := New(5*time.Millisecond, nil)

	runDone := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(runDone)
	}()

	r.Stop()
	r.Stop() // must not panic

	select {
	case <-runDone:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestReactor_RegisterWakesIdleLoopImmediately(t *testing.T) {
	r := New(10*time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	a := &recordingClient{id: "a"}
	start := time.Now()
	r.Register(a)

	require.Eventually(t, func() bool { return len(a.snapshot()) > 0 }, time.Second, time.Millisecond)
	assert.Less(t, time.Since(start), 2*time.Second)
}
