// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stompmatch

import (
	"errors"
	"fmt"
	"strings"
)

// Wildcard is the "don't care" segment value.
const Wildcard = "*"

// ErrInvalidSubscription is returned when a subscription id is
// malformed: wrong segment count, an empty segment, or all four
// segments wildcarded.
var ErrInvalidSubscription = errors.New("stompmatch: invalid subscription id")

// ID is a parsed four-segment subscription id:
// receiver|component|operation|unique.
type ID struct {
	Receiver  string
	Component string
	Operation string
	Unique    string
}

// Parse splits s on "|" into an ID, rejecting a segment count other
// than four, any empty segment, and the all-wildcard id "*|*|*|*".
func Parse(s string) (ID, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 4 {
		return ID{}, fmt.Errorf("%w: %q has %d segments, want 4", ErrInvalidSubscription, s, len(parts))
	}
	for _, p := range parts {
		if p == "" {
			return ID{}, fmt.Errorf("%w: %q has an empty segment", ErrInvalidSubscription, s)
		}
	}
	id := ID{Receiver: parts[0], Component: parts[1], Operation: parts[2], Unique: parts[3]}
	if id.isAllWildcard() {
		return ID{}, fmt.Errorf("%w: %q matches everything", ErrInvalidSubscription, s)
	}
	return id, nil
}

func (id ID) isAllWildcard() bool {
	return id.Receiver == Wildcard && id.Component == Wildcard &&
		id.Operation == Wildcard && id.Unique == Wildcard
}

// String renders the wire form "receiver|component|operation|unique".
func (id ID) String() string {
	return id.Receiver + "|" + id.Component + "|" + id.Operation + "|" + id.Unique
}

// hasSpecificUnique reports whether Unique is a concrete value rather
// than a wildcard.
func (id ID) hasSpecificUnique() bool {
	return id.Unique != Wildcard
}
