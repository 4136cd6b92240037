// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultClientPolicy_Valid(t *testing.T) {
	p := DefaultClientPolicy()
	assert.NoError(t, p.Validate())
}

func TestClientPolicy_Validate_RejectsNonPositiveTimeout(t *testing.T) {
	p := DefaultClientPolicy()
	p.RetryTimeout = 0
	assert.Error(t, p.Validate())
}

func TestClientPolicy_Validate_RejectsNegativeRetryCount(t *testing.T) {
	p := DefaultClientPolicy()
	p.RetryCount = -1
	assert.Error(t, p.Validate())
}

func TestClientPolicy_Clone_IsIndependent(t *testing.T) {
	p := DefaultClientPolicy()
	clone := p.Clone()
	clone.RetryableErrors[0] = "mutated"
	assert.NotEqual(t, p.RetryableErrors[0], clone.RetryableErrors[0])
}

func TestLoadClientPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	yamlContent := "retry_timeout: 2s\nretry_count: 5\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	p, err := LoadClientPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, p.RetryTimeout)
	assert.Equal(t, 5, p.RetryCount)
}

func TestLoadStompPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stomp.yaml")
	yamlContent := "request_queue: /queue/req\nresponse_queue: /queue/resp\nsubscriber_id: host1\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	p, err := LoadStompPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, "/queue/req", p.RequestQueue)
	assert.Equal(t, "host1", p.SubscriberID)
	assert.NoError(t, p.Validate())
}

func TestStompPolicy_Validate_RejectsEmptyQueues(t *testing.T) {
	p := StompPolicy{ClientPolicy: DefaultClientPolicy()}
	assert.Error(t, p.Validate())
}
