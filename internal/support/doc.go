// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package support provides the HTTP client for the support service API.
//
// The service exposes one POST route per agent and read-only snapshot
// endpoints for the dashboard, tickets, agent roster and settings.
//
// # Key Types
//
//   - Client: HTTP client for agent calls and snapshots
//   - ClientConfig: Base URL, timeout and endpoint paths
//   - Answer: Reply text of a successful agent call
//   - ClientError: Typed error carrying status, body and decoded detail
//
// # Usage
//
// Ask an agent and report failures:
//
//	client := support.NewClientWithConfig(&support.ClientConfig{BaseURL: url})
//	answer, err := client.Ask(ctx, route, payload, sessionID)
//	if err != nil {
//	    fmt.Println("failed:", support.Reason(err))
//	}
//
// Fetch a snapshot:
//
//	tickets, err := client.Tickets(ctx)
package support
