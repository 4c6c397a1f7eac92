package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// Unavailable stands in for a database that could not be opened. Every
// operation fails with ErrStorageUnavailable, so callers keep empty
// collections and their drafts stay in memory.
type Unavailable struct {
	Err error
}

func (u Unavailable) err() error {
	if u.Err == nil {
		return ErrStorageUnavailable
	}
	if errors.Is(u.Err, ErrStorageUnavailable) {
		return u.Err
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, u.Err)
}

func (u Unavailable) ListWorkouts(context.Context) ([]models.Workout, error) { return nil, u.err() }

func (u Unavailable) ListWorkoutPlans(context.Context) ([]models.WorkoutPlan, error) {
	return nil, u.err()
}

func (u Unavailable) SaveWorkout(context.Context, models.Workout) error { return u.err() }

func (u Unavailable) SaveWorkoutPlan(context.Context, models.WorkoutPlan) error { return u.err() }

func (u Unavailable) DeleteWorkout(context.Context, string) error { return u.err() }

func (u Unavailable) DeleteWorkoutPlan(context.Context, string) error { return u.err() }
