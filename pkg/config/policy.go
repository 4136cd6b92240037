// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ClientPolicy governs a single reactor client connection: how long it
// waits for a response before retrying, how many times it retries, and
// which transport errors are worth retrying at all.
type ClientPolicy struct {
	// RetryTimeout is how long a tracked request waits for a response
	// before the tracker attempts a retry.
	RetryTimeout time.Duration `yaml:"retry_timeout"`

	// RetryCount is the maximum number of retries before the tracker
	// gives up and synthesizes a transport-timeout response.
	RetryCount int `yaml:"retry_count"`

	// HeartbeatSendInterval and HeartbeatReceiveInterval are this
	// side's proposed heartbeat intervals, as durations (e.g. "5s" in
	// YAML). StompPolicyAdapter converts them to the millisecond cx,cy
	// values of the STOMP heart-beat header.
	HeartbeatSendInterval    time.Duration `yaml:"heartbeat_send_interval"`
	HeartbeatReceiveInterval time.Duration `yaml:"heartbeat_receive_interval"`

	// RetryableErrors lists lower-cased substrings of transport errors
	// (e.g. "connection reset", "broken pipe"). The list is loaded,
	// cloned and carried with the policy, but no code in this module
	// consults it: rpcclient.Client.Connect retries every dial error
	// alike, and a read or write error always disconnects.
	RetryableErrors []string `yaml:"retryable_errors"`
}

// DefaultClientPolicy returns the policy this module ships with when
// no file is provided.
func DefaultClientPolicy() ClientPolicy {
	return ClientPolicy{
		RetryTimeout:             3 * time.Second,
		RetryCount:               3,
		HeartbeatSendInterval:    5 * time.Second,
		HeartbeatReceiveInterval: 10 * time.Second,
		RetryableErrors:          []string{"connection reset", "broken pipe", "i/o timeout"},
	}
}

// Clone returns a deep copy of p so a caller may hand out a policy
// without risking mutation through a shared slice header.
func (p ClientPolicy) Clone() ClientPolicy {
	out := p
	if p.RetryableErrors != nil {
		out.RetryableErrors = append([]string(nil), p.RetryableErrors...)
	}
	return out
}

// Validate enforces the invariants a reactor client relies on: retries
// must be bounded and non-negative, and the retry timeout must be
// positive or the response tracker's wake loop never fires.
func (p ClientPolicy) Validate() error {
	if p.RetryTimeout <= 0 {
		return fmt.Errorf("config: retry_timeout must be positive, got %s", p.RetryTimeout)
	}
	if p.RetryCount < 0 {
		return fmt.Errorf("config: retry_count must not be negative, got %d", p.RetryCount)
	}
	return nil
}

// StompPolicy extends ClientPolicy with the queue-naming and
// subscriber-id conventions a STOMP-framed connection needs.
type StompPolicy struct {
	ClientPolicy `yaml:",inline"`

	// RequestQueue, ResponseQueue and EventQueue are the destinations
	// this client sends to / subscribes on.
	RequestQueue  string `yaml:"request_queue"`
	ResponseQueue string `yaml:"response_queue"`
	EventQueue    string `yaml:"event_queue"`

	// SubscriberID is this client's stable STOMP identifier. It is
	// loaded and carried with the policy only: StompPostConnect does
	// not send it, and numbers its SUBSCRIBE ids 0, 1, ... on every
	// connect.
	SubscriberID string `yaml:"subscriber_id"`
}

// Validate enforces StompPolicy's additional invariants on top of the
// embedded ClientPolicy's.
func (p StompPolicy) Validate() error {
	if err := p.ClientPolicy.Validate(); err != nil {
		return err
	}
	if p.RequestQueue == "" {
		return fmt.Errorf("config: request_queue must not be empty")
	}
	if p.ResponseQueue == "" {
		return fmt.Errorf("config: response_queue must not be empty")
	}
	return nil
}

// LoadClientPolicy reads and parses a ClientPolicy from path.
func LoadClientPolicy(path string) (ClientPolicy, error) {
	p := DefaultClientPolicy()
	data, err := os.ReadFile(path)
	if err != nil {
		return ClientPolicy{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return ClientPolicy{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return ClientPolicy{}, err
	}
	return p, nil
}

// LoadStompPolicy reads and parses a StompPolicy from path.
func LoadStompPolicy(path string) (StompPolicy, error) {
	p := StompPolicy{ClientPolicy: DefaultClientPolicy()}
	data, err := os.ReadFile(path)
	if err != nil {
		return StompPolicy{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return StompPolicy{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return StompPolicy{}, err
	}
	return p, nil
}
