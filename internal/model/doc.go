// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat turns and support snapshots.
//
// This package defines the core domain types used throughout the application
// for representing the chat log and the snapshots fetched from the support
// service.
//
// # Key Types
//
//   - Log: Append-only ordered sequence of chat turns
//   - Message: Single turn with role, content and send time
//   - Role: Turn author enumeration (user, assistant)
//   - DashboardMetrics, Ticket, AgentStatus: Read-only service snapshots
//   - Settings: Typed settings with general fields, agent flags and notification flags
//
// # Usage
//
// Record a round trip:
//
//	log := model.NewLog()
//	log.AppendUser("My order has not arrived")
//	log.AppendAssistant("Let me check that for you.")
//
// Filter tickets for a search box:
//
//	visible := model.FilterTickets(tickets, "payment")
package model
