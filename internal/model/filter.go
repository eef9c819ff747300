// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"

	"golang.org/x/text/cases"
)

// FilterTickets returns the tickets whose subject or customer contains query
// (case-insensitive) or whose ID contains query verbatim.
// A blank query returns every ticket. The input slice is not modified.
func FilterTickets(tickets []Ticket, query string) []Ticket {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]Ticket, len(tickets))
		copy(out, tickets)
		return out
	}

	fold := cases.Fold()
	needle := fold.String(query)

	out := make([]Ticket, 0, len(tickets))
	for _, t := range tickets {
		switch {
		case strings.Contains(fold.String(t.Subject), needle),
			strings.Contains(fold.String(t.Customer), needle),
			strings.Contains(t.ID, query):
			out = append(out, t)
		}
	}
	return out
}
