// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the supportdesk TUI.
//
// This file implements non-blocking toasts. They appear in the bottom-right
// corner and auto-dismiss, so the user can keep working while a notice
// (settings saved, config reloaded, refresh failed) is on screen.
package components

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/supportdesk-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastKindStatus is an informational toast (cyan color)
	ToastKindStatus ToastKind = iota
	// ToastKindError is an error toast (rose/red color)
	ToastKindError
	// ToastKindWarning is a warning toast (amber color)
	ToastKindWarning
	// ToastKindSuccess is a success toast (emerald color)
	ToastKindSuccess
)

// DefaultToastDuration is the default auto-dismiss duration for status toasts.
const DefaultToastDuration = 4 * time.Second

// ErrorToastDuration is the auto-dismiss duration for error toasts (longer to read).
const ErrorToastDuration = 8 * time.Second

// WarningToastDuration is the auto-dismiss duration for warning toasts.
const WarningToastDuration = 6 * time.Second

// maxToasts caps how many toasts are visible at once.
const maxToasts = 4

// Toast is a single notification.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// Expired reports whether the toast should be dismissed at now.
func (t Toast) Expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

func durationFor(kind ToastKind) time.Duration {
	switch kind {
	case ToastKindError:
		return ErrorToastDuration
	case ToastKindWarning:
		return WarningToastDuration
	default:
		return DefaultToastDuration
	}
}

// =============================================================================
// TOAST STACK
// =============================================================================

// Toasts is the stack of visible toasts, newest first.
// It is a value type owned by the root model.
type Toasts struct {
	items  []Toast
	nextID int
	now    func() time.Time
}

// NewToasts creates an empty stack. A nil clock means time.Now.
func NewToasts(clock func() time.Time) Toasts {
	if clock == nil {
		clock = time.Now
	}
	return Toasts{nextID: 1, now: clock}
}

// Add pushes a toast and returns the tick command that will expire it.
func (t Toasts) Add(kind ToastKind, message string) (Toasts, tea.Cmd) {
	if t.now == nil {
		t.now = time.Now
	}
	toast := Toast{
		ID:        t.nextID,
		Message:   message,
		Kind:      kind,
		CreatedAt: t.now(),
		Duration:  durationFor(kind),
	}
	t.nextID++

	items := make([]Toast, 0, len(t.items)+1)
	items = append(items, toast)
	items = append(items, t.items...)
	if len(items) > maxToasts {
		items = items[:maxToasts]
	}
	t.items = items

	return t, ToastTickCmd(toast.Duration)
}

// Update drops expired toasts on ToastTickMsg.
func (t Toasts) Update(msg tea.Msg) Toasts {
	if _, ok := msg.(ToastTickMsg); !ok {
		return t
	}
	if t.now == nil {
		t.now = time.Now
	}
	now := t.now()
	active := make([]Toast, 0, len(t.items))
	for _, toast := range t.items {
		if !toast.Expired(now) {
			active = append(active, toast)
		}
	}
	t.items = active
	return t
}

// Items returns the visible toasts, newest first.
func (t Toasts) Items() []Toast {
	out := make([]Toast, len(t.items))
	copy(out, t.items)
	return out
}

// Len returns the number of visible toasts.
func (t Toasts) Len() int { return len(t.items) }

// =============================================================================
// TOAST MESSAGES
// =============================================================================

// ToastTickMsg asks the stack to drop expired toasts.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd fires once after d.
func ToastTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// RenderToast renders a single toast notification.
func RenderToast(toast Toast, width int) string {
	maxWidth := 60
	if width > 0 && width-8 < maxWidth {
		maxWidth = width - 8
	}
	if maxWidth < 30 {
		maxWidth = 30
	}

	var color lipgloss.AdaptiveColor
	var icon string
	switch toast.Kind {
	case ToastKindError:
		color, icon = styles.Rose, styles.StatusIndicators.Error
	case ToastKindWarning:
		color, icon = styles.Amber, styles.StatusIndicators.Warning
	case ToastKindSuccess:
		color, icon = styles.Emerald, styles.StatusIndicators.Success
	default:
		color, icon = styles.Cyan, styles.StatusIndicators.Info
	}

	iconStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	messageStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 8)

	content := lipgloss.JoinHorizontal(lipgloss.Top,
		iconStyle.Render(icon+" "),
		messageStyle.Render(strings.TrimSpace(toast.Message)))

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 2).
		MaxWidth(maxWidth).
		Render(content)
}

// RenderToastStack renders the toasts stacked vertically, right aligned.
func RenderToastStack(toasts []Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for i := len(toasts) - 1; i >= 0; i-- {
		rendered = append(rendered, RenderToast(toasts[i], width))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)

	if width > 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
	}
	return stack
}
