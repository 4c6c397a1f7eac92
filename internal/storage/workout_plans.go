package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// SaveWorkoutPlan inserts a plan. An existing id yields ErrDuplicateKey.
func (db *DB) SaveWorkoutPlan(ctx context.Context, p models.WorkoutPlan) error {
	exercises, err := EncodeExercises(p.Exercises)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	_, err = db.sql.ExecContext(ctx, db.rebind(
		`INSERT INTO workout_plans (id, name, date, exercises) VALUES (?, ?, ?, ?)`),
		p.ID, p.Name, formatDate(p.Date), exercises)
	if err != nil {
		return fmt.Errorf("inserting workout plan: %w", translateError(err))
	}
	return nil
}

// ListWorkoutPlans returns every stored plan sorted by name. Rows that
// cannot be decoded are skipped and logged.
func (db *DB) ListWorkoutPlans(ctx context.Context) ([]models.WorkoutPlan, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.sql.QueryContext(ctx, `SELECT id, name, date, exercises FROM workout_plans`)
	if err != nil {
		return nil, fmt.Errorf("querying workout plans: %w", err)
	}
	defer rows.Close()

	return scanPlanRows(rows, db.log.Warn)
}

// DeleteWorkoutPlan removes a plan by id. A missing id is not an error.
// Workouts referencing the plan are left untouched.
func (db *DB) DeleteWorkoutPlan(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.sql.ExecContext(ctx, db.rebind(`DELETE FROM workout_plans WHERE id = ?`), id); err != nil {
		return fmt.Errorf("deleting workout plan: %w", err)
	}
	return nil
}

func scanPlanRows(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}, warn func(msg string, args ...any)) ([]models.WorkoutPlan, error) {
	result := []models.WorkoutPlan{}
	skipped := 0
	for rows.Next() {
		var id, name, date, exercises string
		if err := rows.Scan(&id, &name, &date, &exercises); err != nil {
			return nil, fmt.Errorf("scanning workout plan: %w", err)
		}
		p, err := decodePlan(id, name, date, exercises)
		if err != nil {
			warn("skipping corrupt workout plan", "id", id, "error", err)
			skipped++
			continue
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading workout plans: %w", err)
	}
	if skipped > 0 {
		warn("workout plans skipped", "count", skipped)
	}

	models.SortPlans(result)
	return result, nil
}

func decodePlan(id, name, date, exercises string) (models.WorkoutPlan, error) {
	d, err := parseDate(date)
	if err != nil {
		return models.WorkoutPlan{}, err
	}
	ex, err := DecodeExercises(exercises)
	if err != nil {
		return models.WorkoutPlan{}, err
	}
	p := models.WorkoutPlan{ID: id, Name: name, Date: d, Exercises: ex}
	if err := p.Validate(); err != nil {
		return models.WorkoutPlan{}, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	return p, nil
}
