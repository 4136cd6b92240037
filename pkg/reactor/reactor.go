// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package reactor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/AleutianAI/hostrpc/pkg/logging"
)

// DefaultTick is the loop's read/write deadline granularity when the
// caller does not specify one.
const DefaultTick = 100 * time.Millisecond

// Task is a unit of work run on the reactor goroutine, in FIFO order,
// before client turns each tick.
type Task func()

// Client is driven once per tick. Process handles inbound reads,
// heartbeat-expiry checks and outbox writes (fairness order:
// incoming, then heartbeat, then outgoing, mirrored inside the
// client's own Process implementation). PerformAction is called
// after every client's Process has run this tick, and is where a
// client sends its own outgoing heartbeat if due.
type Client interface {
	ID() string
	Process(ctx context.Context, tick time.Duration) error
	PerformAction()
}

// Reactor owns the registered client set and the posted-task queue,
// and drives both from a single goroutine started by Run.
type Reactor struct {
	tick   time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	clients map[string]Client

	tasks chan Task
	wake  chan struct{}

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New constructs a Reactor. tick <= 0 uses DefaultTick.
func New(tick time.Duration, logger *slog.Logger) *Reactor {
	if tick <= 0 {
		tick = DefaultTick
	}
	if logger == nil {
		logger = logging.Default().Slog()
	}
	return &Reactor{
		tick:    tick,
		logger:  logger,
		clients: make(map[string]Client),
		tasks:   make(chan Task, 256),
		wake:    make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
	}
}

// Register adds c to the registered set. Safe to call from any
// goroutine; the registration itself is a plain map write guarded by
// the reactor's own mutex (not deferred through Post), since it has no
// ordering dependency on in-flight client turns.
func (r *Reactor) Register(c Client) {
	r.mu.Lock()
	r.clients[c.ID()] = c
	r.mu.Unlock()
	r.Wakeup()
}

// Deregister removes a client by id.
func (r *Reactor) Deregister(id string) {
	r.mu.Lock()
	delete(r.clients, id)
	r.mu.Unlock()
}

// Post enqueues a task to run on the reactor goroutine before the next
// client sweep, and wakes the loop if it is waiting out a tick.
func (r *Reactor) Post(t Task) {
	r.tasks <- t
	r.Wakeup()
}

// Wakeup interrupts a pending tick wait so newly posted tasks (or a
// newly registered client) run without waiting out the full tick.
func (r *Reactor) Wakeup() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Stop ends the Run loop after draining any already-posted tasks.
// Safe to call more than once.
func (r *Reactor) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// Run is the main loop: drain tasks, walk clients, repeat, until ctx
// is done or Stop is called.
func (r *Reactor) Run(ctx context.Context) {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.drainTasks()
			return
		case <-r.stopCh:
			r.drainTasks()
			return
		case <-r.wake:
		case <-ticker.C:
		}

		r.drainTasks()
		r.sweepClients(ctx)
	}
}

func (r *Reactor) drainTasks() {
	for {
		select {
		case t := <-r.tasks:
			t()
		default:
			return
		}
	}
}

func (r *Reactor) sweepClients(ctx context.Context) {
	r.mu.Lock()
	snapshot := make([]Client, 0, len(r.clients))
	for _, c := range r.clients {
		snapshot = append(snapshot, c)
	}
	r.mu.Unlock()

	for _, c := range snapshot {
		if err := c.Process(ctx, r.tick); err != nil {
			r.logger.Warn("reactor: client process failed", slog.String("client_id", c.ID()), slog.Any("error", err))
		}
	}
	for _, c := range snapshot {
		c.PerformAction()
	}
}
