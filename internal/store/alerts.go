package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
)

// CreateAlert inserts a.
func (s *Store) CreateAlert(ctx context.Context, a model.Alert) error {
	_, err := s.exec(ctx, `INSERT INTO alerts (id, username, company_name, metric, condition, threshold,
		notify_email, notify_sms, notify_dashboard, email, phone, created_at, last_checked_at, last_triggered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, normalizeUser(a.Username), a.CompanyName, a.Metric, a.Condition, a.Threshold,
		boolInt(a.NotifyEmail), boolInt(a.NotifySMS), boolInt(a.NotifyDashboard), a.Email, a.Phone,
		formatTime(a.CreatedAt), formatTime(a.LastCheckedAt), formatTime(a.LastTriggeredAt))
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// Alerts lists every alert, oldest first.
func (s *Store) Alerts(ctx context.Context) ([]model.Alert, error) {
	rows, err := s.query(ctx, `SELECT id, username, company_name, metric, condition, threshold,
		notify_email, notify_sms, notify_dashboard, email, phone, created_at, last_checked_at, last_triggered_at
		FROM alerts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select alerts: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []model.Alert
	for rows.Next() {
		var a model.Alert
		var email, sms, dash int
		var created, checked, triggered string
		if err := rows.Scan(&a.ID, &a.Username, &a.CompanyName, &a.Metric, &a.Condition, &a.Threshold,
			&email, &sms, &dash, &a.Email, &a.Phone, &created, &checked, &triggered); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.NotifyEmail, a.NotifySMS, a.NotifyDashboard = email != 0, sms != 0, dash != 0
		a.CreatedAt, a.LastCheckedAt, a.LastTriggeredAt = parseTime(created), parseTime(checked), parseTime(triggered)
		out = append(out, a)
	}
	return out, rows.Err()
}

// MarkAlertChecked records a check of alert id, and a trigger when
// triggered is true.
func (s *Store) MarkAlertChecked(ctx context.Context, id string, at time.Time, triggered bool) error {
	q := `UPDATE alerts SET last_checked_at = ? WHERE id = ?`
	args := []any{formatTime(at), id}
	if triggered {
		q = `UPDATE alerts SET last_checked_at = ?, last_triggered_at = ? WHERE id = ?`
		args = []any{formatTime(at), formatTime(at), id}
	}
	res, err := s.exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddNotification stores a dashboard notification and returns its ID.
func (s *Store) AddNotification(ctx context.Context, n model.Notification) (int64, error) {
	var id int64
	err := s.queryRow(ctx, `INSERT INTO notifications (alert_id, message, created_at, is_read)
		VALUES (?, ?, ?, ?) RETURNING id`,
		n.AlertID, n.Message, formatTime(n.CreatedAt), boolInt(n.Read)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}
	return id, nil
}

// Notifications lists notifications newest first.
func (s *Store) Notifications(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	q := `SELECT id, alert_id, message, created_at, is_read FROM notifications`
	if unreadOnly {
		q += ` WHERE is_read = 0`
	}
	q += ` ORDER BY id DESC`
	rows, err := s.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("select notifications: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		var created string
		var read int
		if err := rows.Scan(&n.ID, &n.AlertID, &n.Message, &created, &read); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.CreatedAt = parseTime(created)
		n.Read = read != 0
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead flags one notification as read.
func (s *Store) MarkNotificationRead(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("update notification: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
