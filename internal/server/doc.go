// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the demo collaborator service behind the console.
//
// The service answers the same HTTP contract the console's support client
// speaks, so the TUI runs end-to-end without the production agents. Replies
// are canned per agent; tickets, agents, metrics, settings and per-session
// turn counts live in SQLite.
//
// # Endpoints
//
//   - POST /api/atendimento     - Support agent
//   - POST /api/diagnostico     - Diagnostics agent
//   - POST /api/escalonamento   - Escalation agent (files a ticket)
//   - POST /api/feedback        - Feedback agent (sentiment)
//   - GET  /api/dashboard       - Headline metrics and roster
//   - GET  /api/tickets         - Ticket list
//   - GET  /api/agents          - Agent roster
//   - GET  /api/settings        - Settings snapshot
//   - PUT  /api/settings        - Replace settings
//   - GET  /health              - Health check
//
// Failures carry a JSON body with a "detail" field. Empty agent messages
// are answered with 422.
//
// # Key Types
//
//   - Server: chi router with logging, recovery, CORS and rate limiting
//   - Store: SQLite persistence seeded with demo fixtures
//   - Responder: Canned agent replies
//
// # Usage
//
//	store, err := server.OpenStore(ctx, dbPath)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	srv, err := server.New(server.Options{Store: store, Logger: logger})
//	if err != nil {
//		return err
//	}
//	return srv.ListenAndServe(ctx, addr)
package server
