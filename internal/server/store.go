// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jeranaias/supportdesk-tui/internal/model"
	"github.com/jeranaias/supportdesk-tui/internal/router"
)

// MemoryDB opens a private in-memory database.
const MemoryDB = ":memory:"

// ErrUnknownAgent is returned when a turn names an agent that is not seeded.
var ErrUnknownAgent = errors.New("unknown agent")

// Store keeps tickets, agents, metrics, settings and session turn counts in
// SQLite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the database at path and seeds it on first use.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	dsn := MemoryDB
	if path != MemoryDB {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection serializes writers and keeps an in-memory database alive.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	if err := s.seed(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed database: %w", err)
	}
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS tickets (
		id INTEGER PRIMARY KEY,
		customer TEXT NOT NULL,
		subject TEXT NOT NULL,
		message TEXT NOT NULL,
		status TEXT NOT NULL,
		priority TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agents (
		agent_key TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		status TEXT NOT NULL,
		tasks_completed INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS metrics (
		metric_key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		trend TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		body TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_turns (
		session_id TEXT NOT NULL,
		agent_key TEXT NOT NULL,
		turns INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (session_id, agent_key)
	);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// =============================================================================
// SEED DATA
// =============================================================================

type seedAgent struct {
	key    router.AgentTarget
	status model.AgentStatus
}

var seedAgents = []seedAgent{
	{router.TargetDefault, model.AgentStatus{Name: "Atendimento Inicial", Description: "Answers common questions and collects details", Status: model.AgentActive, TasksCompleted: 142}},
	{router.TargetDiagnostics, model.AgentStatus{Name: "Diagnóstico Técnico", Description: "Troubleshoots problems through internal APIs", Status: model.AgentProcessing, TasksCompleted: 87}},
	{router.TargetEscalation, model.AgentStatus{Name: "Escalonamento", Description: "Hands complex cases over to humans", Status: model.AgentActive, TasksCompleted: 34}},
	{router.TargetFeedback, model.AgentStatus{Name: "Feedback", Description: "Requests ratings and analyzes sentiment", Status: model.AgentIdle, TasksCompleted: 156}},
}

var seedTickets = []model.Ticket{
	{ID: "1001", Customer: "João Silva", Subject: "Order never arrived", Message: "My order has not arrived after 10 days. I would like to know its status.", Status: model.TicketOpen, Priority: model.PriorityHigh, Timestamp: "5 min ago"},
	{ID: "1002", Customer: "Maria Santos", Subject: "Payment problem", Message: "I was charged twice for the same order. I need help urgently.", Status: model.TicketInProgress, Priority: model.PriorityHigh, Timestamp: "15 min ago"},
	{ID: "1003", Customer: "Pedro Costa", Subject: "Product question", Message: "I would like to know whether this product works with my device.", Status: model.TicketInProgress, Priority: model.PriorityMedium, Timestamp: "30 min ago"},
	{ID: "1004", Customer: "Ana Oliveira", Subject: "Refund request", Message: "The product arrived defective and I would like a refund.", Status: model.TicketEscalated, Priority: model.PriorityHigh, Timestamp: "1h ago"},
	{ID: "1005", Customer: "Carlos Lima", Subject: "Address update", Message: "I need to update the delivery address of an order in progress.", Status: model.TicketResolved, Priority: model.PriorityLow, Timestamp: "2h ago"},
}

const (
	metricActiveTickets   = "active_tickets"
	metricResolvedToday   = "resolved_today"
	metricAvgResponseTime = "avg_response_time"
	metricSatisfaction    = "satisfaction"
)

var seedMetrics = [][3]string{
	{metricActiveTickets, "23", "+12%"},
	{metricResolvedToday, "87", "+8%"},
	{metricAvgResponseTime, "4.2m", "-15%"},
	{metricSatisfaction, "94%", "+3%"},
}

// seed fills an empty database with the demo fixtures.
func (s *Store) seed(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agents`).Scan(&n); err != nil {
		return fmt.Errorf("count agents: %w", err)
	}
	if n > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for i, a := range seedAgents {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO agents (agent_key, position, name, description, status, tasks_completed) VALUES (?, ?, ?, ?, ?, ?)`,
			a.key.String(), i, a.status.Name, a.status.Description, string(a.status.Status), a.status.TasksCompleted)
		if err != nil {
			return fmt.Errorf("insert agent %s: %w", a.key, err)
		}
	}
	for _, t := range seedTickets {
		id, _ := strconv.Atoi(t.ID)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tickets (id, customer, subject, message, status, priority, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, t.Customer, t.Subject, t.Message, string(t.Status), string(t.Priority), t.Timestamp)
		if err != nil {
			return fmt.Errorf("insert ticket %s: %w", t.ID, err)
		}
	}
	for _, m := range seedMetrics {
		if _, err := tx.ExecContext(ctx, `INSERT INTO metrics (metric_key, value, trend) VALUES (?, ?, ?)`, m[0], m[1], m[2]); err != nil {
			return fmt.Errorf("insert metric %s: %w", m[0], err)
		}
	}
	body, err := json.Marshal(model.DefaultSettings())
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO settings (id, body, updated_at) VALUES (1, ?, ?)`, string(body), time.Now().Unix()); err != nil {
		return fmt.Errorf("insert settings: %w", err)
	}

	return tx.Commit()
}

// =============================================================================
// QUERIES
// =============================================================================

// Tickets returns all tickets in id order.
func (s *Store) Tickets(ctx context.Context) ([]model.Ticket, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer, subject, message, status, priority, timestamp FROM tickets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]model.Ticket, 0)
	for rows.Next() {
		var (
			t                model.Ticket
			id               int64
			status, priority string
		)
		if err := rows.Scan(&id, &t.Customer, &t.Subject, &t.Message, &status, &priority, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan ticket row: %w", err)
		}
		t.ID = strconv.FormatInt(id, 10)
		t.Status = model.TicketStatus(status)
		t.Priority = model.TicketPriority(priority)
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// Agents returns the roster in display order.
func (s *Store) Agents(ctx context.Context) ([]model.AgentStatus, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, description, status, tasks_completed FROM agents ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query agents: %w", err)
	}
	defer rows.Close()

	agents := make([]model.AgentStatus, 0, len(seedAgents))
	for rows.Next() {
		var (
			a      model.AgentStatus
			status string
		)
		if err := rows.Scan(&a.Name, &a.Description, &status, &a.TasksCompleted); err != nil {
			return nil, fmt.Errorf("scan agent row: %w", err)
		}
		a.Status = model.AgentState(status)
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// Dashboard returns the headline metrics and the agent roster.
func (s *Store) Dashboard(ctx context.Context) (model.DashboardMetrics, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT metric_key, value, trend FROM metrics`)
	if err != nil {
		return model.DashboardMetrics{}, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	var d model.DashboardMetrics
	for rows.Next() {
		var key, value, trend string
		if err := rows.Scan(&key, &value, &trend); err != nil {
			return model.DashboardMetrics{}, fmt.Errorf("scan metric row: %w", err)
		}
		switch key {
		case metricActiveTickets:
			d.ActiveTickets, _ = strconv.Atoi(value)
			d.ActiveTicketsTrend = trend
		case metricResolvedToday:
			d.ResolvedToday, _ = strconv.Atoi(value)
			d.ResolvedTodayTrend = trend
		case metricAvgResponseTime:
			d.AvgResponseTime = value
			d.AvgResponseTimeTrend = trend
		case metricSatisfaction:
			d.Satisfaction = value
			d.SatisfactionTrend = trend
		}
	}
	if err := rows.Err(); err != nil {
		return model.DashboardMetrics{}, err
	}
	rows.Close()

	d.Agents, err = s.Agents(ctx)
	if err != nil {
		return model.DashboardMetrics{}, err
	}
	return d, nil
}

// Settings returns the stored settings.
func (s *Store) Settings(ctx context.Context) (model.Settings, error) {
	var body string
	if err := s.db.QueryRowContext(ctx, `SELECT body FROM settings WHERE id = 1`).Scan(&body); err != nil {
		return model.Settings{}, fmt.Errorf("query settings: %w", err)
	}
	var settings model.Settings
	if err := json.Unmarshal([]byte(body), &settings); err != nil {
		return model.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}

// SaveSettings replaces the stored settings.
func (s *Store) SaveSettings(ctx context.Context, settings model.Settings) (model.Settings, error) {
	body, err := json.Marshal(settings)
	if err != nil {
		return model.Settings{}, fmt.Errorf("encode settings: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO settings (id, body, updated_at) VALUES (1, ?, ?)
	ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		string(body), time.Now().Unix())
	if err != nil {
		return model.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return settings, nil
}

// RecordTurn counts one call of agent for sessionID and bumps the agent's
// task counter. It returns the session's turn count with that agent.
func (s *Store) RecordTurn(ctx context.Context, sessionID string, agent router.AgentTarget) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin turn: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE agents SET tasks_completed = tasks_completed + 1 WHERE agent_key = ?`, agent.String())
	if err != nil {
		return 0, fmt.Errorf("bump agent counter: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAgent, agent)
	}

	now := time.Now().Unix()
	_, err = tx.ExecContext(ctx, `
	INSERT INTO session_turns (session_id, agent_key, turns, updated_at) VALUES (?, ?, 1, ?)
	ON CONFLICT(session_id, agent_key) DO UPDATE SET turns = turns + 1, updated_at = excluded.updated_at`,
		sessionID, agent.String(), now)
	if err != nil {
		return 0, fmt.Errorf("record turn: %w", err)
	}

	var turns int
	err = tx.QueryRowContext(ctx,
		`SELECT turns FROM session_turns WHERE session_id = ? AND agent_key = ?`, sessionID, agent.String()).Scan(&turns)
	if err != nil {
		return 0, fmt.Errorf("read turns: %w", err)
	}
	return turns, tx.Commit()
}

// CreateTicket stores t under the next free id and counts it as active.
func (s *Store) CreateTicket(ctx context.Context, t model.Ticket) (model.Ticket, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("begin ticket: %w", err)
	}
	defer tx.Rollback()

	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 1000) + 1 FROM tickets`).Scan(&id); err != nil {
		return model.Ticket{}, fmt.Errorf("next ticket id: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO tickets (id, customer, subject, message, status, priority, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, t.Customer, t.Subject, t.Message, string(t.Status), string(t.Priority), t.Timestamp)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("insert ticket: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE metrics SET value = CAST(CAST(value AS INTEGER) + 1 AS TEXT) WHERE metric_key = ?`, metricActiveTickets)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("bump active tickets: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Ticket{}, fmt.Errorf("commit ticket: %w", err)
	}

	t.ID = strconv.FormatInt(id, 10)
	return t, nil
}
