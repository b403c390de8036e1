package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
)

// SaveReport records a generated report.
func (s *Store) SaveReport(ctx context.Context, r model.Report) error {
	sections, err := json.Marshal(r.Sections)
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}
	_, err = s.exec(ctx, `INSERT INTO reports (id, company_name, sections, format, schedule, blob_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CompanyName, string(sections), r.Format, r.Schedule, r.BlobKey, formatTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Report returns the report with id.
func (s *Store) Report(ctx context.Context, id string) (model.Report, error) {
	var r model.Report
	var sections, created string
	err := s.queryRow(ctx, `SELECT id, company_name, sections, format, schedule, blob_key, created_at
		FROM reports WHERE id = ?`, id).
		Scan(&r.ID, &r.CompanyName, &sections, &r.Format, &r.Schedule, &r.BlobKey, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNotFound
	}
	if err != nil {
		return r, fmt.Errorf("select report: %w", err)
	}
	if err := json.Unmarshal([]byte(sections), &r.Sections); err != nil {
		return r, fmt.Errorf("decode sections: %w", err)
	}
	r.CreatedAt = parseTime(created)
	return r, nil
}

// SaveCountyData replaces the stored county metrics with data.
func (s *Store) SaveCountyData(ctx context.Context, data model.CountyData) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM county_metrics`); err != nil {
		return fmt.Errorf("clear county metrics: %w", err)
	}
	q := s.rebind(`INSERT INTO county_metrics (county_key, payload, updated_at) VALUES (?, ?, ?)`)
	now := formatTime(time.Now())
	for key, m := range data {
		payload, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, q, key, string(payload), now); err != nil {
			return fmt.Errorf("insert %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// CountyData loads every stored county metric.
func (s *Store) CountyData(ctx context.Context) (model.CountyData, error) {
	rows, err := s.query(ctx, `SELECT county_key, payload FROM county_metrics`)
	if err != nil {
		return nil, fmt.Errorf("select county metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()
	data := model.CountyData{}
	for rows.Next() {
		var key, payload string
		if err := rows.Scan(&key, &payload); err != nil {
			return nil, fmt.Errorf("scan county metric: %w", err)
		}
		var m model.CountyMetric
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		data[key] = &m
	}
	return data, rows.Err()
}
