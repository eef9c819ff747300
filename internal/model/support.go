// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat turns and support snapshots.
package model

import (
	"fmt"
	"net/mail"
	"strings"
)

// =============================================================================
// DASHBOARD
// =============================================================================

// DashboardMetrics is the headline snapshot shown on the dashboard.
type DashboardMetrics struct {
	ActiveTickets        int    `json:"active_tickets"`
	ActiveTicketsTrend   string `json:"active_tickets_trend"`
	ResolvedToday        int    `json:"resolved_today"`
	ResolvedTodayTrend   string `json:"resolved_today_trend"`
	AvgResponseTime      string `json:"avg_response_time"`
	AvgResponseTimeTrend string `json:"avg_response_time_trend"`
	Satisfaction         string `json:"satisfaction"`
	SatisfactionTrend    string `json:"satisfaction_trend"`

	Agents []AgentStatus `json:"agents,omitempty"`
}

// =============================================================================
// TICKETS
// =============================================================================

// TicketStatus is the workflow state of a ticket.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
	TicketEscalated  TicketStatus = "escalated"
)

// DisplayName returns a human-readable status label.
func (s TicketStatus) DisplayName() string {
	switch s {
	case TicketOpen:
		return "Open"
	case TicketInProgress:
		return "In progress"
	case TicketResolved:
		return "Resolved"
	case TicketEscalated:
		return "Escalated"
	default:
		return string(s)
	}
}

// TicketPriority ranks tickets for triage.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
)

// DisplayName returns a human-readable priority label.
func (p TicketPriority) DisplayName() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return string(p)
	}
}

// Ticket is a customer support request.
type Ticket struct {
	ID        string         `json:"id"`
	Customer  string         `json:"customer"`
	Subject   string         `json:"subject"`
	Message   string         `json:"message"`
	Status    TicketStatus   `json:"status"`
	Priority  TicketPriority `json:"priority"`
	Timestamp string         `json:"timestamp"`
}

// =============================================================================
// AGENTS
// =============================================================================

// AgentState is the activity state reported for a backend agent.
type AgentState string

const (
	AgentActive     AgentState = "active"
	AgentIdle       AgentState = "idle"
	AgentProcessing AgentState = "processing"
)

// DisplayName returns a human-readable state label.
func (s AgentState) DisplayName() string {
	switch s {
	case AgentActive:
		return "Active"
	case AgentIdle:
		return "Idle"
	case AgentProcessing:
		return "Processing"
	default:
		return string(s)
	}
}

// AgentStatus describes one backend agent in the roster.
type AgentStatus struct {
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Status         AgentState `json:"status"`
	TasksCompleted int        `json:"tasks_completed"`
}

// =============================================================================
// SETTINGS
// =============================================================================

// GeneralSettings holds the company-level fields.
type GeneralSettings struct {
	CompanyName  string `json:"company_name"`
	ContactEmail string `json:"contact_email"`
}

// AgentFlags toggles agent behavior.
type AgentFlags struct {
	AutoAttendance       bool `json:"auto_attendance"`
	TechnicalDiagnostics bool `json:"technical_diagnostics"`
	SmartEscalation      bool `json:"smart_escalation"`
	SentimentAnalysis    bool `json:"sentiment_analysis"`
}

// NotificationFlags toggles operator notifications.
type NotificationFlags struct {
	NewTickets       bool `json:"new_tickets"`
	EscalatedTickets bool `json:"escalated_tickets"`
}

// Settings is the full settings snapshot exchanged with the service.
type Settings struct {
	General       GeneralSettings   `json:"general"`
	Agents        AgentFlags        `json:"agents"`
	Notifications NotificationFlags `json:"notifications"`
}

// DefaultSettings returns the settings a fresh installation starts with.
func DefaultSettings() Settings {
	return Settings{
		General: GeneralSettings{
			CompanyName:  "SupportAI",
			ContactEmail: "contato@supportai.com",
		},
		Agents: AgentFlags{
			AutoAttendance:       true,
			TechnicalDiagnostics: true,
			SmartEscalation:      true,
			SentimentAnalysis:    true,
		},
		Notifications: NotificationFlags{
			NewTickets:       true,
			EscalatedTickets: true,
		},
	}
}

// Validate checks the general fields. Flags are always valid.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.General.CompanyName) == "" {
		return fmt.Errorf("company name must not be empty")
	}
	if _, err := mail.ParseAddress(s.General.ContactEmail); err != nil {
		return fmt.Errorf("invalid contact email %q: %w", s.General.ContactEmail, err)
	}
	return nil
}
