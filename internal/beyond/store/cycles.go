package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Cycle is one journaled command cycle.
type Cycle struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Utterance string
	Kind      string
	Source    string
	Intent    string
	Handler   string
	Success   bool
	Clarified bool
	Response  string
}

// IntentCount is a row of CycleStats.
type IntentCount struct {
	Intent string
	Total  int
	Failed int
}

// RecordCycle inserts c. Cycle IDs are unique; recording the same ID twice
// is an error.
func (s *Store) RecordCycle(ctx context.Context, c Cycle) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cycles (id, started_at, duration_ms, utterance, kind, source, intent, handler, success, clarified, response)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.StartedAt.UTC(), c.Duration.Milliseconds(), c.Utterance, c.Kind,
		nullable(c.Source), nullable(c.Intent), nullable(c.Handler),
		c.Success, c.Clarified, nullable(c.Response))
	if err != nil {
		return fmt.Errorf("failed to record cycle %s: %w", c.ID, err)
	}
	return nil
}

// RecentCycles returns up to limit cycles, newest first.
func (s *Store) RecentCycles(ctx context.Context, limit int) ([]Cycle, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ms, utterance, kind, source, intent, handler, success, clarified, response
		FROM cycles
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycles: %w", err)
	}
	defer rows.Close()

	var out []Cycle
	for rows.Next() {
		var (
			c                                 Cycle
			durationMS                        int64
			source, intent, handler, response sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.StartedAt, &durationMS, &c.Utterance, &c.Kind,
			&source, &intent, &handler, &c.Success, &c.Clarified, &response); err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		c.Duration = time.Duration(durationMS) * time.Millisecond
		c.Source = source.String
		c.Intent = intent.String
		c.Handler = handler.String
		c.Response = response.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// CycleStats counts dispatched cycles per intent since the given time.
func (s *Store) CycleStats(ctx context.Context, since time.Time) ([]IntentCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT intent, COUNT(*), SUM(CASE WHEN success THEN 0 ELSE 1 END)
		FROM cycles
		WHERE intent IS NOT NULL AND started_at >= ?
		GROUP BY intent
		ORDER BY COUNT(*) DESC, intent
	`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query cycle stats: %w", err)
	}
	defer rows.Close()

	var out []IntentCount
	for rows.Next() {
		var ic IntentCount
		if err := rows.Scan(&ic.Intent, &ic.Total, &ic.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan cycle stats: %w", err)
		}
		out = append(out, ic)
	}
	return out, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
