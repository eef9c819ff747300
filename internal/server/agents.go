// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jeranaias/supportdesk-tui/internal/model"
	"github.com/jeranaias/supportdesk-tui/internal/router"
	"github.com/jeranaias/supportdesk-tui/internal/util"
)

// ============================================================================
// KNOWLEDGE BASE
// ============================================================================

type faqEntry struct {
	keywords []string
	answer   string
}

var faq = []faqEntry{
	{[]string{"track", "tracking", "rastrear"}, "To track your order, use the link in your confirmation email."},
	{[]string{"cancel", "cancelar"}, "Orders can be cancelled up to 2 hours after purchase from the \"My Orders\" page. After that, contact us and we will help."},
	{[]string{"return", "refund", "devolução", "reembolso"}, "For returns, open \"My Orders\", select the item and follow the return steps. You have 7 days from delivery."},
	{[]string{"payment", "pay", "pagamento", "pix"}, "We accept credit card, bank slip and Pix."},
}

var orderStatuses = []string{"Processing", "Shipped", "In transit", "Delivered", "Delayed", "Cancelled"}

var orderIDPattern = regexp.MustCompile(`\b\d{5}\b`)

var (
	negations     = []string{"not solved", "didn't solve", "não resolveu"}
	positiveWords = []string{"great", "excellent", "good", "fast", "solved", "thanks", "thank you", "ótimo", "excelente", "bom", "rápido", "resolveu", "obrigado"}
	negativeWords = []string{"bad", "terrible", "slow", "late", "problem", "awful", "ruim", "péssimo", "lento", "demorou", "problema", "horrível"}
)

// ============================================================================
// RESPONDER
// ============================================================================

// Turn is one call of an agent route.
type Turn struct {
	Agent     router.AgentTarget
	SessionID string
	Message   string
	// Count is the session's number of calls to this agent, this one included
	Count int
}

// Responder produces the canned reply of each agent.
type Responder struct {
	store *Store
}

// NewResponder creates a responder that files escalations in store.
func NewResponder(store *Store) *Responder {
	return &Responder{store: store}
}

// Reply answers one turn.
func (r *Responder) Reply(ctx context.Context, turn Turn) (string, error) {
	history, request := router.SplitPayload(turn.Message)

	switch turn.Agent {
	case router.TargetDefault:
		return attend(request, turn.Count), nil
	case router.TargetDiagnostics:
		return diagnose(request), nil
	case router.TargetEscalation:
		return r.escalate(ctx, turn, history, request)
	case router.TargetFeedback:
		return feedback(customerLines(history) + "\n" + request), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownAgent, turn.Agent)
	}
}

func attend(request string, count int) string {
	lower := strings.ToLower(request)

	if id := orderIDPattern.FindString(request); id != "" {
		return orderStatus(id)
	}
	for _, entry := range faq {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.answer
			}
		}
	}

	if count <= 1 {
		return "Thanks for contacting us! Could you describe the problem and, if it concerns an order, share the 5-digit order number?"
	}
	return "I could not find a direct answer in our FAQ. Could you give me a few more details? You can also ask for technical diagnostics or escalation to a human agent."
}

// orderStatus reports a deterministic status for a 5-digit order id.
func orderStatus(id string) string {
	sum := 0
	for _, c := range id {
		sum += int(c - '0')
	}
	status := orderStatuses[sum%len(orderStatuses)]

	detail := "Waiting for shipment."
	switch status {
	case "Delayed":
		detail = "There was a logistics problem. Estimated delay: 3 business days."
	case "Delivered":
		detail = fmt.Sprintf("Delivered on %d/%d.", sum%28+1, sum%12+1)
	case "Shipped", "In transit":
		detail = fmt.Sprintf("Last update on %d/%d.", sum%28+1, sum%12+1)
	case "Cancelled":
		detail = "The order was cancelled. Any charge will be refunded."
	}
	return fmt.Sprintf("**Order %s**: %s. %s", id, status, detail)
}

func diagnose(request string) string {
	problem := util.TruncateRunes(util.SingleLine(request), 120)
	var b strings.Builder
	fmt.Fprintf(&b, "Let's troubleshoot: *%s*\n\n", problem)
	b.WriteString("1. Restart the app or device and try again.\n")
	b.WriteString("2. Check your internet connection and clear the app cache.\n")
	b.WriteString("3. Make sure you are on the latest version.\n")
	b.WriteString("4. If an error message appears, send it to us exactly as shown.\n\n")
	b.WriteString("If none of these steps help, ask for escalation and a human agent will take over.")
	return b.String()
}

func (r *Responder) escalate(ctx context.Context, turn Turn, history, request string) (string, error) {
	summary := util.TruncateRunes(util.SingleLine(request), 160)
	if history != "" && (request == router.ContinueInstruction || request == router.PlaceholderRequest) {
		summary = util.TruncateRunes(util.SingleLine(history), 160)
	}

	ticket, err := r.store.CreateTicket(ctx, model.Ticket{
		Customer:  "Chat " + turn.SessionID,
		Subject:   util.TruncateRunes(summary, 48),
		Message:   summary,
		Status:    model.TicketEscalated,
		Priority:  model.PriorityHigh,
		Timestamp: "just now",
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Ticket #%s created for a human agent. Summary: \"Customer reports: %s\". Our team will contact you shortly.", ticket.ID, summary), nil
}

// Sentiment classifies text as positive, negative or neutral.
func Sentiment(text string) string {
	lower := strings.ToLower(text)
	for _, w := range negations {
		if strings.Contains(lower, w) {
			return "Negative"
		}
	}
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			return "Positive"
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			return "Negative"
		}
	}
	return "Neutral"
}

// customerLines keeps the customer's turns of a transcript.
func customerLines(history string) string {
	prefix := model.RoleUser.DisplayName() + ": "
	var lines []string
	for _, line := range strings.Split(history, "\n") {
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			lines = append(lines, rest)
		}
	}
	return strings.Join(lines, "\n")
}

func feedback(conversation string) string {
	return fmt.Sprintf("Thank you for contacting us! [Sentiment: %s]. To help us improve, could you rate our support from 1 to 5?", Sentiment(conversation))
}
