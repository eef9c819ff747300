// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status command implementation for supportdesk.
//
// Command: status
// Short:   Show service health, ticket counts and the agent roster
// Aliases: s
//
// Examples:
//   supportdesk status                 Show status
//   supportdesk s                      Show status (short alias)
//   supportdesk status --json          Status in JSON format
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jeranaias/supportdesk-tui/internal/model"
	"github.com/jeranaias/supportdesk-tui/internal/support"
)

// StatusTimeout bounds all requests of one status run.
const StatusTimeout = 10 * time.Second

// StatusClient is the part of the support client the status command uses.
type StatusClient interface {
	BaseURL() string
	Health(ctx context.Context) (support.HealthResponse, error)
	Dashboard(ctx context.Context) (model.DashboardMetrics, error)
	Tickets(ctx context.Context) ([]model.Ticket, error)
	Agents(ctx context.Context) ([]model.AgentStatus, error)
}

// =============================================================================
// STATUS DATA
// =============================================================================

// StatusData represents the data returned by the status command.
type StatusData struct {
	Service StatusServiceInfo   `json:"service"`
	Tickets StatusTicketInfo    `json:"tickets"`
	Agents  []model.AgentStatus `json:"agents"`
}

// StatusServiceInfo describes the support service.
type StatusServiceInfo struct {
	URL     string `json:"url"`
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// StatusTicketInfo summarizes the ticket list.
type StatusTicketInfo struct {
	Total       int            `json:"total"`
	ByStatus    map[string]int `json:"by_status"`
	Active      int            `json:"active"`
	ActiveTrend string         `json:"active_trend,omitempty"`
}

// =============================================================================
// HANDLE STATUS
// =============================================================================

// HandleStatus handles the "status" command.
func HandleStatus(ctx context.Context, client StatusClient, args Args, w io.Writer) error {
	data, err := CollectStatus(ctx, client)
	if err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("status", data).Write(w)
	}
	writeStatus(w, data)
	return nil
}

// CollectStatus queries the service for everything the status command shows.
func CollectStatus(ctx context.Context, client StatusClient) (StatusData, error) {
	ctx, cancel := context.WithTimeout(ctx, StatusTimeout)
	defer cancel()

	data := StatusData{Service: StatusServiceInfo{URL: client.BaseURL()}}

	health, err := client.Health(ctx)
	if err != nil {
		return data, NewCommandError("status", "support service unavailable at "+client.BaseURL(), err)
	}
	data.Service.Status = health.Status
	data.Service.Version = health.Version

	metrics, err := client.Dashboard(ctx)
	if err != nil {
		return data, NewCommandError("status", "could not load dashboard", err)
	}
	tickets, err := client.Tickets(ctx)
	if err != nil {
		return data, NewCommandError("status", "could not load tickets", err)
	}
	agents, err := client.Agents(ctx)
	if err != nil {
		return data, NewCommandError("status", "could not load agents", err)
	}

	data.Tickets = summarizeTickets(tickets)
	data.Tickets.Active = metrics.ActiveTickets
	data.Tickets.ActiveTrend = metrics.ActiveTicketsTrend
	data.Agents = agents
	return data, nil
}

func summarizeTickets(tickets []model.Ticket) StatusTicketInfo {
	info := StatusTicketInfo{Total: len(tickets), ByStatus: make(map[string]int)}
	for _, t := range tickets {
		info.ByStatus[string(t.Status)]++
	}
	return info
}

var ticketStatusOrder = []model.TicketStatus{
	model.TicketOpen,
	model.TicketInProgress,
	model.TicketEscalated,
	model.TicketResolved,
}

func writeStatus(w io.Writer, data StatusData) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("supportdesk Status"))
	fmt.Fprintln(w, RenderSeparator(41))

	fmt.Fprintln(w, SectionStyle.Render("Service"))
	fmt.Fprintf(w, "  %s%s\n", RenderLabel("URL"), ValueStyle.Render(data.Service.URL))
	health := data.Service.Status
	if data.Service.Version != "" {
		health += " (v" + data.Service.Version + ")"
	}
	fmt.Fprintf(w, "  %s%s %s\n", RenderLabel("Health"), RenderStatus(data.Service.Status), ValueStyle.Render(health))

	fmt.Fprintln(w, SectionStyle.Render("Tickets"))
	fmt.Fprintf(w, "  %s%s\n", RenderLabel("Total"), ValueStyle.Render(fmt.Sprint(data.Tickets.Total)))
	for _, status := range ticketStatusOrder {
		fmt.Fprintf(w, "  %s%s\n", RenderLabel(status.DisplayName()), ValueStyle.Render(fmt.Sprint(data.Tickets.ByStatus[string(status)])))
	}
	active := fmt.Sprint(data.Tickets.Active)
	if data.Tickets.ActiveTrend != "" {
		active += " " + DimStyle.Render("("+data.Tickets.ActiveTrend+")")
	}
	fmt.Fprintf(w, "  %s%s\n", RenderLabel("Active"), active)

	fmt.Fprintln(w, SectionStyle.Render("Agents"))
	if len(data.Agents) == 0 {
		fmt.Fprintln(w, "  "+DimStyle.Render("no agents reported"))
	}
	for _, a := range data.Agents {
		fmt.Fprintf(w, "  %s %s%s\n",
			RenderStatus(string(a.Status)),
			RenderLabel(a.Name),
			DimStyle.Render(fmt.Sprintf("%s, %d tasks", a.Status.DisplayName(), a.TasksCompleted)))
	}
	fmt.Fprintln(w)
}
