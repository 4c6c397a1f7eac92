package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/claude/liftlog/internal/models"
)

// Legacy reads the workouts1 and workoutPlans1 tables written by the
// original mobile app. The file is opened read-only.
type Legacy struct {
	sql *sql.DB
	log *slog.Logger
}

// OpenLegacy opens an exported app database at path.
func OpenLegacy(ctx context.Context, path string, log *slog.Logger) (*Legacy, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening legacy database: %w", err)
	}
	dsn := (&url.URL{Scheme: "file", Opaque: path, RawQuery: "mode=ro"}).String()
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening legacy database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging legacy database: %w", err)
	}
	return &Legacy{sql: conn, log: log}, nil
}

// Close closes the database handle.
func (l *Legacy) Close() error {
	return l.sql.Close()
}

// ListWorkoutPlans reads every legacy plan. Corrupt rows are skipped.
func (l *Legacy) ListWorkoutPlans(ctx context.Context) ([]models.WorkoutPlan, error) {
	rows, err := l.sql.QueryContext(ctx, `SELECT id, name, date, exercises FROM workoutPlans1`)
	if err != nil {
		return nil, fmt.Errorf("querying legacy workout plans: %w", err)
	}
	defer rows.Close()
	return scanPlanRows(rows, l.log.Warn)
}

// ListWorkouts reads every legacy workout. Corrupt rows are skipped.
func (l *Legacy) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	rows, err := l.sql.QueryContext(ctx,
		`SELECT id, name, date, workoutPlanId, exercises, photo FROM workouts1`)
	if err != nil {
		return nil, fmt.Errorf("querying legacy workouts: %w", err)
	}
	defer rows.Close()
	return scanWorkoutRows(rows, l.log.Warn)
}
