// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router translates chat actions into agent dispatches.
//
// A chat action is the pair (target, input). The router decides which backend
// route receives the request, builds the exact payload string and derives the
// user turn echoed into the chat log. It never performs I/O.
//
// # Key Types
//
//   - AgentTarget: Closed set of agents (support, diagnostics, escalation, feedback)
//   - Routes: Target to backend path table
//   - Router: Stateless resolver built from a route table
//   - Dispatch: Resolved target, route, payload and echo
//
// # Usage
//
// Resolve an agent request with an empty input:
//
//	r := router.New(router.DefaultRoutes())
//	d, err := r.Dispatch(router.TargetDiagnostics, "", log.Snapshot())
//	if err != nil {
//	    return err
//	}
//	log.AppendUser(d.Echo)
//	client.Ask(ctx, d.Route, d.Payload, sessionID)
package router
