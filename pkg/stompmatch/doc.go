// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package stompmatch routes events to subscribers keyed by a
// four-segment subscription id: receiver|component|operation|unique,
// any of which may be "*" to mean "don't care".
//
// # Description
//
// A subscription is indexed by its most specific available segment:
// an exact unique id goes solely into the unique index; otherwise it
// is indexed under each of receiver/component/operation for which it
// supplied a concrete (non-wildcard) value. Matching an incoming
// event's id against the index set avoids a linear scan over every
// live subscription.
//
// # Thread Safety
//
// Matcher is safe for concurrent Add/Remove/Match calls; all three
// take the same mutex.
package stompmatch
