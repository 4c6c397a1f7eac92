package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Import log statuses.
const (
	ImportRunning = "running"
	ImportSuccess = "success"
	ImportError   = "error"
)

// ImportLog records one run of the legacy importer.
type ImportLog struct {
	ID               int64     `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	Source           string    `json:"source"`
	Status           string    `json:"status"`
	PlansRead        int       `json:"plans_read"`
	PlansInserted    int       `json:"plans_inserted"`
	WorkoutsRead     int       `json:"workouts_read"`
	WorkoutsInserted int       `json:"workouts_inserted"`
	DurationMs       *int      `json:"duration_ms"`
	ErrorMessage     *string   `json:"error_message"`
}

// InsertImportLog creates a new import log entry and returns its ID.
func (db *DB) InsertImportLog(ctx context.Context, log ImportLog) (int64, error) {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	var id int64
	err := db.sql.QueryRowContext(ctx, db.rebind(
		`INSERT INTO import_logs (created_at, source, status, plans_read, plans_inserted,
		 workouts_read, workouts_inserted, duration_ms, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		formatDate(log.CreatedAt), log.Source, log.Status, log.PlansRead, log.PlansInserted,
		log.WorkoutsRead, log.WorkoutsInserted, log.DurationMs, log.ErrorMessage,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting import log: %w", err)
	}
	return id, nil
}

// UpdateImportLog updates an existing import log entry (typically from "running" to "success" or "error").
func (db *DB) UpdateImportLog(ctx context.Context, id int64, log ImportLog) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.sql.ExecContext(ctx, db.rebind(
		`UPDATE import_logs SET
		 status = ?, plans_read = ?, plans_inserted = ?,
		 workouts_read = ?, workouts_inserted = ?, duration_ms = ?, error_message = ?
		 WHERE id = ?`),
		log.Status, log.PlansRead, log.PlansInserted,
		log.WorkoutsRead, log.WorkoutsInserted, log.DurationMs, log.ErrorMessage, id,
	)
	if err != nil {
		return fmt.Errorf("updating import log %d: %w", id, err)
	}
	return nil
}

// QueryImportLogs returns the most recent import logs.
func (db *DB) QueryImportLogs(ctx context.Context, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.sql.QueryContext(ctx, db.rebind(
		`SELECT id, created_at, source, status, plans_read, plans_inserted,
		 workouts_read, workouts_inserted, duration_ms, error_message
		 FROM import_logs
		 ORDER BY id DESC
		 LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	result := []ImportLog{}
	for rows.Next() {
		var (
			l         ImportLog
			createdAt string
			duration  sql.NullInt64
			errMsg    sql.NullString
		)
		if err := rows.Scan(&l.ID, &createdAt, &l.Source, &l.Status,
			&l.PlansRead, &l.PlansInserted, &l.WorkoutsRead, &l.WorkoutsInserted,
			&duration, &errMsg); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		if l.CreatedAt, err = parseDate(createdAt); err != nil {
			return nil, err
		}
		if duration.Valid {
			d := int(duration.Int64)
			l.DurationMs = &d
		}
		if errMsg.Valid {
			l.ErrorMessage = &errMsg.String
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
