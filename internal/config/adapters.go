// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"github.com/jeranaias/supportdesk-tui/internal/router"
	"github.com/jeranaias/supportdesk-tui/internal/support"
)

// Targets converts the route table for the dispatch router.
func (r RoutesConfig) Targets() router.Routes {
	return router.Routes{
		router.TargetDefault:     r.Support,
		router.TargetDiagnostics: r.Diagnostics,
		router.TargetEscalation:  r.Escalation,
		router.TargetFeedback:    r.Feedback,
	}
}

// Paths returns the snapshot endpoints.
func (a APIConfig) Paths() support.Paths {
	return support.Paths{
		Dashboard: a.DashboardPath,
		Tickets:   a.TicketsPath,
		Agents:    a.AgentsPath,
		Settings:  a.SettingsPath,
		Health:    a.HealthPath,
	}
}

// ClientConfig builds the support client configuration.
func (a APIConfig) ClientConfig() *support.ClientConfig {
	return &support.ClientConfig{
		BaseURL: a.BaseURL,
		Timeout: a.Timeout(),
		Paths:   a.Paths(),
	}
}
