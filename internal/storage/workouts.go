package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// SaveWorkout inserts a completed workout. An existing id yields ErrDuplicateKey.
func (db *DB) SaveWorkout(ctx context.Context, w models.Workout) error {
	exercises, err := EncodeExercises(w.Exercises)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	_, err = db.sql.ExecContext(ctx, db.rebind(
		`INSERT INTO workouts (id, name, date, "workoutPlanId", exercises, photo)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		w.ID, w.Name, formatDate(w.Date), w.WorkoutPlanID, exercises, w.Photo)
	if err != nil {
		return fmt.Errorf("inserting workout: %w", translateError(err))
	}
	return nil
}

// ListWorkouts returns every stored workout, most recent first. Rows that
// cannot be decoded are skipped and logged.
func (db *DB) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, name, date, "workoutPlanId", exercises, photo FROM workouts`)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	return scanWorkoutRows(rows, db.log.Warn)
}

// DeleteWorkout removes a workout by id. A missing id is not an error.
func (db *DB) DeleteWorkout(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.sql.ExecContext(ctx, db.rebind(`DELETE FROM workouts WHERE id = ?`), id); err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	return nil
}

func scanWorkoutRows(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}, warn func(msg string, args ...any)) ([]models.Workout, error) {
	result := []models.Workout{}
	skipped := 0
	for rows.Next() {
		var (
			id, name, date, planID, exercises string
			photo                             sql.NullString
		)
		if err := rows.Scan(&id, &name, &date, &planID, &exercises, &photo); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		w, err := decodeWorkout(id, name, date, planID, exercises, photo.String)
		if err == nil {
			result = append(result, w)
			continue
		}
		warn("skipping corrupt workout", "id", id, "error", err)
		skipped++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading workouts: %w", err)
	}
	if skipped > 0 {
		warn("workouts skipped", "count", skipped)
	}

	models.SortWorkouts(result)
	return result, nil
}

func decodeWorkout(id, name, date, planID, exercises, photo string) (models.Workout, error) {
	d, err := parseDate(date)
	if err != nil {
		return models.Workout{}, err
	}
	ex, err := DecodeExercises(exercises)
	if err != nil {
		return models.Workout{}, err
	}
	w := models.Workout{
		ID:            id,
		Date:          d,
		Name:          name,
		WorkoutPlanID: planID,
		Exercises:     ex,
		Photo:         photo,
	}
	if err := w.Validate(); err != nil {
		return models.Workout{}, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	return w, nil
}
