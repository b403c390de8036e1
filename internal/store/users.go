package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
)

// DefaultUsername is used when a request names no user.
const DefaultUsername = "default"

// HistoryLimit is the number of searches /api/history returns.
const HistoryLimit = 20

func normalizeUser(username string) string {
	username = strings.TrimSpace(username)
	if username == "" {
		return DefaultUsername
	}
	return username
}

// EnsureUser creates the user row if it is missing.
func (s *Store) EnsureUser(ctx context.Context, username string) error {
	_, err := s.exec(ctx, `INSERT INTO users (username, created_at) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		normalizeUser(username), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// CustomIndustries lists the industries username added, oldest first.
func (s *Store) CustomIndustries(ctx context.Context, username string) ([]string, error) {
	rows, err := s.query(ctx, `SELECT industry FROM user_industries WHERE username = ? ORDER BY created_at, industry`,
		normalizeUser(username))
	if err != nil {
		return nil, fmt.Errorf("select industries: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []string
	for rows.Next() {
		var ind string
		if err := rows.Scan(&ind); err != nil {
			return nil, fmt.Errorf("scan industry: %w", err)
		}
		out = append(out, ind)
	}
	return out, rows.Err()
}

// AddIndustry tracks industry for username. It reports false when the
// industry was already tracked.
func (s *Store) AddIndustry(ctx context.Context, username, industry string) (bool, error) {
	username = normalizeUser(username)
	if err := s.EnsureUser(ctx, username); err != nil {
		return false, err
	}
	res, err := s.exec(ctx, `INSERT INTO user_industries (username, industry, created_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		username, industry, formatTime(time.Now()))
	if err != nil {
		return false, fmt.Errorf("insert industry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteIndustry untracks industry, matching case-insensitively.
func (s *Store) DeleteIndustry(ctx context.Context, username, industry string) error {
	res, err := s.exec(ctx, `DELETE FROM user_industries WHERE username = ? AND LOWER(industry) = LOWER(?)`,
		normalizeUser(username), industry)
	if err != nil {
		return fmt.Errorf("delete industry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordSearch appends a dashboard search to username's history.
func (s *Store) RecordSearch(ctx context.Context, username, q string, at time.Time) error {
	_, err := s.exec(ctx, `INSERT INTO search_history (username, query, searched_at) VALUES (?, ?, ?)`,
		normalizeUser(username), q, formatTime(at))
	if err != nil {
		return fmt.Errorf("record search: %w", err)
	}
	return nil
}

// History returns the most recent searches of username, newest first.
func (s *Store) History(ctx context.Context, username string, limit int) ([]model.SearchEntry, error) {
	if limit <= 0 {
		limit = HistoryLimit
	}
	rows, err := s.query(ctx, `SELECT username, query, searched_at FROM search_history
		WHERE username = ? ORDER BY searched_at DESC, id DESC LIMIT ?`, normalizeUser(username), limit)
	if err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []model.SearchEntry
	for rows.Next() {
		var e model.SearchEntry
		var at string
		if err := rows.Scan(&e.Username, &e.Query, &at); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.SearchedAt = parseTime(at)
		out = append(out, e)
	}
	return out, rows.Err()
}
