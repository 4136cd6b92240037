// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stompmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RejectsWrongSegmentCount(t *testing.T) {
	_, err := Parse("a|b|c")
	assert.ErrorIs(t, err, ErrInvalidSubscription)
}

func TestParse_RejectsEmptySegment(t *testing.T) {
	_, err := Parse("a||c|d")
	assert.ErrorIs(t, err, ErrInvalidSubscription)
}

func TestParse_RejectsAllWildcard(t *testing.T) {
	_, err := Parse("*|*|*|*")
	assert.ErrorIs(t, err, ErrInvalidSubscription)
}

func TestParse_Accepts(t *testing.T) {
	id, err := Parse("host1|storage|Image.create|x")
	require.NoError(t, err)
	assert.Equal(t, ID{"host1", "storage", "Image.create", "x"}, id)
	assert.Equal(t, "host1|storage|Image.create|x", id.String())
}

// TestEventFanOutScenario implements scenario 4 of §8 literally.
func TestEventFanOutScenario(t *testing.T) {
	m := New[*int]()
	sub1 := new(int)
	sub2 := new(int)

	id1, err := Parse("*|storage|*|*")
	require.NoError(t, err)
	id2, err := Parse("host1|*|*|*")
	require.NoError(t, err)

	require.NoError(t, m.Add(id1, sub1))
	require.NoError(t, m.Add(id2, sub2))

	event1, err := Parse("host1|storage|Image.create|x")
	require.NoError(t, err)
	matched := m.Match(event1)
	assert.ElementsMatch(t, []*int{sub1, sub2}, matched)

	event2, err := Parse("host2|virt|VM.start|y")
	require.NoError(t, err)
	matched2 := m.Match(event2)
	assert.Empty(t, matched2)
}

func TestMatcher_UniqueExactMatchOnly(t *testing.T) {
	m := New[*int]()
	sub := new(int)
	id, err := Parse("host1|storage|Image.create|req-42")
	require.NoError(t, err)
	require.NoError(t, m.Add(id, sub))

	exact, _ := Parse("host9|other|Other.op|req-42")
	assert.Equal(t, []*int{sub}, m.Match(exact))

	miss, _ := Parse("host9|other|Other.op|req-43")
	assert.Empty(t, m.Match(miss))
}

func TestMatcher_AddThenRemove_RestoresPriorState(t *testing.T) {
	m := New[*int]()
	sub := new(int)
	id, err := Parse("host1|*|*|*")
	require.NoError(t, err)

	require.NoError(t, m.Add(id, sub))
	event, _ := Parse("host1|storage|Image.create|x")
	assert.Len(t, m.Match(event), 1)

	m.Remove(sub)
	assert.Empty(t, m.Match(event))
}

func TestMatcher_BroadcastEventDoesNotDoubleMatchReceiverOnly(t *testing.T) {
	m := New[*int]()
	receiverOnly := new(int)
	id, err := Parse("host1|*|*|*")
	require.NoError(t, err)
	require.NoError(t, m.Add(id, receiverOnly))

	broadcast, err := Parse("host1|*|*|*")
	require.NoError(t, err)
	assert.Empty(t, m.Match(broadcast))
}

func TestMatcher_AddRejectsAllWildcard(t *testing.T) {
	m := New[*int]()
	err := m.Add(ID{Wildcard, Wildcard, Wildcard, Wildcard}, new(int))
	assert.ErrorIs(t, err, ErrInvalidSubscription)
}
