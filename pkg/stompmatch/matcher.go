// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stompmatch

import "sync"

// Holder is anything the matcher can index and hand back from Match.
// Implementations must be comparable so Remove can find and drop the
// exact holder from the coarse index slices.
type Holder interface {
	comparable
}

// Matcher indexes subscription holders by their parsed ID and resolves
// incoming events to the set of holders interested in them.
type Matcher[H Holder] struct {
	mu sync.RWMutex

	byUnique    map[string]H
	byOperation map[string][]H
	byComponent map[string][]H
	byReceiver  map[string][]H

	idOf map[H]ID
}

// New constructs an empty Matcher.
func New[H Holder]() *Matcher[H] {
	return &Matcher[H]{
		byUnique:    make(map[string]H),
		byOperation: make(map[string][]H),
		byComponent: make(map[string][]H),
		byReceiver:  make(map[string][]H),
		idOf:        make(map[H]ID),
	}
}

// Add indexes holder under id. It rejects the all-wildcard id (Parse
// already does this, but Add re-checks since callers may construct an
// ID directly).
func (m *Matcher[H]) Add(id ID, holder H) error {
	if id.isAllWildcard() {
		return ErrInvalidSubscription
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.idOf[holder] = id

	if id.hasSpecificUnique() {
		m.byUnique[id.Unique] = holder
		return nil
	}
	if id.Operation != Wildcard {
		m.byOperation[id.Operation] = append(m.byOperation[id.Operation], holder)
	}
	if id.Component != Wildcard {
		m.byComponent[id.Component] = append(m.byComponent[id.Component], holder)
	}
	if id.Receiver != Wildcard {
		m.byReceiver[id.Receiver] = append(m.byReceiver[id.Receiver], holder)
	}
	return nil
}

// Remove reverses the indexing performed by Add for holder. It is a
// no-op if holder was never added.
func (m *Matcher[H]) Remove(holder H) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.idOf[holder]
	if !ok {
		return
	}
	delete(m.idOf, holder)

	if id.hasSpecificUnique() {
		delete(m.byUnique, id.Unique)
		return
	}
	if id.Operation != Wildcard {
		m.byOperation[id.Operation] = removeHolder(m.byOperation[id.Operation], holder)
	}
	if id.Component != Wildcard {
		m.byComponent[id.Component] = removeHolder(m.byComponent[id.Component], holder)
	}
	if id.Receiver != Wildcard {
		m.byReceiver[id.Receiver] = removeHolder(m.byReceiver[id.Receiver], holder)
	}
}

func removeHolder[H comparable](list []H, target H) []H {
	for i, h := range list {
		if h == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// Match takes an already parsed event id and returns the union of every holder whose
// subscription is satisfied by it, with no duplicates.
func (m *Matcher[H]) Match(event ID) []H {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[H]struct{})
	var out []H
	add := func(h H) {
		if _, dup := seen[h]; dup {
			return
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}

	if h, ok := m.byUnique[event.Unique]; ok {
		add(h)
	}

	for _, h := range m.byOperation[event.Operation] {
		if m.subsetMatch(m.idOf[h], event) {
			add(h)
		}
	}
	for _, h := range m.byComponent[event.Component] {
		if m.subsetMatch(m.idOf[h], event) {
			add(h)
		}
	}
	for _, h := range m.byReceiver[event.Receiver] {
		if m.receiverMatch(m.idOf[h], event) {
			add(h)
		}
	}

	return out
}

// subsetMatch reports whether every specific (non-wildcard) segment of
// filter equals the corresponding segment of event: "no specific
// segment of the filter is missing from the event".
func (m *Matcher[H]) subsetMatch(filter, event ID) bool {
	if filter.Receiver != Wildcard && filter.Receiver != event.Receiver {
		return false
	}
	if filter.Component != Wildcard && filter.Component != event.Component {
		return false
	}
	if filter.Operation != Wildcard && filter.Operation != event.Operation {
		return false
	}
	if filter.Unique != Wildcard && filter.Unique != event.Unique {
		return false
	}
	return true
}

// receiverMatch applies subsetMatch plus a weaker predicate: the event
// itself must carry at least one specific segment beyond the
// receiver. This lets a receiver-only subscription see ordinary
// events for its host (scenario: "host1|*|*|*" receiving
// "host1|storage|Image.create|x"), while a pure host-scoped broadcast
// event ("<host>|*|*|*", synthesized by the response worker) is not
// redelivered to every receiver-only subscription on that host.
func (m *Matcher[H]) receiverMatch(filter, event ID) bool {
	if !m.subsetMatch(filter, event) {
		return false
	}
	return event.Component != Wildcard || event.Operation != Wildcard || event.Unique != Wildcard
}
