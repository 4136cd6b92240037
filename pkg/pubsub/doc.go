// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package pubsub adapts reactive-streams pull semantics (permits
// requested by the subscriber, data pushed only while permits remain)
// to the push-only nature of inbound JSON-RPC events.
//
// # Description
//
// A Holder queues events it has been matched against and a permit
// counter the subscriber controls via Request. The Publisher drains a
// holder's queue onto a bounded worker pool whenever both conditions
// hold: the holder has a queued event and at least one permit.
//
// # Thread Safety
//
// Publisher and Holder are both safe for concurrent use; a holder's
// internal queue and permit counter share one mutex so can_process
// checks and dequeues are atomic with respect to each other.
package pubsub
