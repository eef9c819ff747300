// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router translates chat actions into agent dispatches.
package router

import (
	"fmt"
)

// ============================================================================
// TARGET TYPE
// ============================================================================

// AgentTarget is a backend agent the chat can dispatch to.
// The set is closed; every target maps to exactly one route.
type AgentTarget int

const (
	// TargetDefault is the first-contact support agent behind the send action.
	TargetDefault AgentTarget = iota
	// TargetDiagnostics suggests step-by-step technical fixes.
	TargetDiagnostics
	// TargetEscalation summarizes the case for a human operator.
	TargetEscalation
	// TargetFeedback thanks the customer and gauges sentiment.
	TargetFeedback
)

// AllTargets lists every target in display order.
var AllTargets = []AgentTarget{TargetDefault, TargetDiagnostics, TargetEscalation, TargetFeedback}

// String returns the machine name of the target.
func (t AgentTarget) String() string {
	switch t {
	case TargetDefault:
		return "support"
	case TargetDiagnostics:
		return "diagnostics"
	case TargetEscalation:
		return "escalation"
	case TargetFeedback:
		return "feedback"
	default:
		return fmt.Sprintf("Target(%d)", t)
	}
}

// Label returns the human-readable name of the target.
func (t AgentTarget) Label() string {
	switch t {
	case TargetDefault:
		return "Support"
	case TargetDiagnostics:
		return "Diagnostics"
	case TargetEscalation:
		return "Escalation"
	case TargetFeedback:
		return "Feedback"
	default:
		return t.String()
	}
}

// IsDefault returns true for the plain send target.
func (t AgentTarget) IsDefault() bool {
	return t == TargetDefault
}

// Valid reports whether t is a member of the closed set.
func (t AgentTarget) Valid() bool {
	return t >= TargetDefault && t <= TargetFeedback
}

// ============================================================================
// ROUTES
// ============================================================================

// Routes maps each target to its backend path.
type Routes map[AgentTarget]string

// DefaultRoutes returns the routes exposed by the support service.
func DefaultRoutes() Routes {
	return Routes{
		TargetDefault:     "/api/atendimento",
		TargetDiagnostics: "/api/diagnostico",
		TargetEscalation:  "/api/escalonamento",
		TargetFeedback:    "/api/feedback",
	}
}

// ============================================================================
// DISPATCH
// ============================================================================

// Dispatch is the resolved outcome of a chat action.
type Dispatch struct {
	// Target that will receive the request
	Target AgentTarget

	// Route is the backend path for Target
	Route string

	// Payload is the exact message string sent to the agent
	Payload string

	// Echo is the user turn appended to the log before sending
	Echo string
}
