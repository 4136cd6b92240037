// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package reactor

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"golang.org/x/time/rate"

	"github.com/AleutianAI/hostrpc/pkg/logging"
)

// AcceptHandler is invoked with each newly accepted connection. It is
// expected to register a reactor.Client for it (directly or after
// wrapping it in TLS/STOMP setup) and must not block the accept loop.
type AcceptHandler func(conn net.Conn)

// Listener accepts inbound connections at a bounded rate, handing each
// one to an AcceptHandler. Accept itself is a blocking call with no
// portable non-blocking equivalent, so unlike Reactor.Run this runs on
// its own goroutine rather than being multiplexed into the tick loop;
// see the package doc for why the reactor does not attempt raw
// epoll-style readiness polling.
type Listener struct {
	ln      net.Listener
	limiter *rate.Limiter
	handler AcceptHandler
	logger  *slog.Logger
}

// NewListener wraps ln with an accept-rate limiter of rps accepts per
// second (burst additional accepts allowed immediately). rps <= 0
// disables rate limiting.
func NewListener(ln net.Listener, rps rate.Limit, burst int, handler AcceptHandler, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = logging.Default().Slog()
	}
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rps, burst)
	}
	return &Listener{ln: ln, limiter: limiter, handler: handler, logger: logger}
}

// Serve accepts connections until ctx is done or the listener is
// closed. It always returns a non-nil error: ctx.Err() on a
// caller-requested stop, or the underlying Accept error otherwise.
func (l *Listener) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = l.ln.Close()
	}()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			l.logger.Warn("reactor: accept failed", slog.Any("error", err))
			continue
		}

		if l.limiter != nil {
			if err := l.limiter.Wait(ctx); err != nil {
				_ = conn.Close()
				if ctx.Err() != nil {
					return ctx.Err()
				}
				continue
			}
		}

		l.handler(conn)
	}
}
