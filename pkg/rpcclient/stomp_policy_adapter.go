// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rpcclient

import "github.com/AleutianAI/hostrpc/pkg/config"

// StompPolicyAdapter makes a config.StompPolicy satisfy
// stompPolicyLike for StompPostConnect.
type StompPolicyAdapter struct {
	Policy config.StompPolicy
}

func (a StompPolicyAdapter) heartbeatSendMillis() int64 {
	return a.Policy.HeartbeatSendInterval.Milliseconds()
}

func (a StompPolicyAdapter) heartbeatReceiveMillis() int64 {
	return a.Policy.HeartbeatReceiveInterval.Milliseconds()
}

func (a StompPolicyAdapter) subscriptionDestinations() []string {
	dests := []string{a.Policy.ResponseQueue}
	if a.Policy.EventQueue != "" && a.Policy.EventQueue != a.Policy.ResponseQueue {
		dests = append(dests, a.Policy.EventQueue)
	}
	return dests
}
