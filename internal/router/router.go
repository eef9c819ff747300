// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/supportdesk-tui/internal/model"
)

// Sentinel errors for easy checking.
var (
	// ErrEmptyInput is returned when the default target is asked to send blank text.
	ErrEmptyInput = errors.New("nothing to send")

	// ErrUnknownTarget is returned for targets outside the closed set.
	ErrUnknownTarget = errors.New("unknown agent target")
)

const (
	// PlaceholderRequest stands in for the request when an agent is invoked
	// with an empty input and no earlier user turn.
	PlaceholderRequest = "Please review this support conversation and help the customer."

	// ContinueInstruction stands in for the request when an agent is invoked
	// with an empty input after the customer has already spoken.
	ContinueInstruction = "Continue helping the customer based on the conversation above."

	historyHeader    = "Conversation so far:"
	emptyHistory     = "(no previous messages)"
	requestDelimiter = "=== Current request ==="
)

// Router resolves chat actions into dispatches. It performs no I/O.
type Router struct {
	routes Routes
}

// New creates a router. Targets missing from routes fall back to DefaultRoutes.
func New(routes Routes) *Router {
	merged := DefaultRoutes()
	for target, route := range routes {
		if target.Valid() && strings.TrimSpace(route) != "" {
			merged[target] = route
		}
	}
	return &Router{routes: merged}
}

// Route returns the backend path for target.
func (r *Router) Route(target AgentTarget) (string, error) {
	route, ok := r.routes[target]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}
	return route, nil
}

// Routes returns a copy of the route table.
func (r *Router) Routes() Routes {
	out := make(Routes, len(r.routes))
	for k, v := range r.routes {
		out[k] = v
	}
	return out
}

// Dispatch resolves target and input against the prior transcript.
//
// For the default target the payload and echo are the raw input. Every other
// target receives the whole transcript followed by a delimited request, and
// never fails for lack of input.
func (r *Router) Dispatch(target AgentTarget, input string, history []*model.Message) (Dispatch, error) {
	route, err := r.Route(target)
	if err != nil {
		return Dispatch{}, err
	}

	if target.IsDefault() {
		if strings.TrimSpace(input) == "" {
			return Dispatch{}, ErrEmptyInput
		}
		return Dispatch{
			Target:  target,
			Route:   route,
			Payload: input,
			Echo:    input,
		}, nil
	}

	text := strings.TrimSpace(input)
	lastUser := lastUserContent(history)

	var request, echo string
	switch {
	case text != "":
		request = text
		echo = fmt.Sprintf("%s (requesting %s)", text, target)
	case lastUser != "":
		request = ContinueInstruction
		echo = fmt.Sprintf("(requesting %s about: \"%s\")", target, lastUser)
	default:
		request = PlaceholderRequest
		echo = fmt.Sprintf("%s (requesting %s)", PlaceholderRequest, target)
	}

	return Dispatch{
		Target:  target,
		Route:   route,
		Payload: buildPayload(history, request),
		Echo:    echo,
	}, nil
}

// buildPayload renders the transcript and appends the delimited request.
func buildPayload(history []*model.Message, request string) string {
	var b strings.Builder
	b.WriteString(historyHeader)
	b.WriteString("\n")

	if len(history) == 0 {
		b.WriteString(emptyHistory)
	} else {
		lines := make([]string, 0, len(history))
		for _, msg := range history {
			if msg == nil {
				continue
			}
			lines = append(lines, msg.Transcript())
		}
		b.WriteString(strings.Join(lines, "\n"))
	}

	b.WriteString("\n\n")
	b.WriteString(requestDelimiter)
	b.WriteString("\n")
	b.WriteString(request)
	return b.String()
}

// lastUserContent returns the most recent non-blank user turn.
func lastUserContent(history []*model.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg != nil && msg.Role == model.RoleUser && strings.TrimSpace(msg.Content) != "" {
			return msg.Content
		}
	}
	return ""
}

// SplitPayload separates a payload built by Dispatch into its transcript and
// its request. Text without the request delimiter is returned as the request.
func SplitPayload(payload string) (history, request string) {
	before, after, found := strings.Cut(payload, requestDelimiter)
	if !found {
		return "", strings.TrimSpace(payload)
	}
	history = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(before), historyHeader))
	if history == emptyHistory {
		history = ""
	}
	return history, strings.TrimSpace(after)
}
