// Package importer copies plans and workouts from the mobile app's database
// into a LiftLog store.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// Source yields the records to import.
type Source interface {
	ListWorkoutPlans(ctx context.Context) ([]models.WorkoutPlan, error)
	ListWorkouts(ctx context.Context) ([]models.Workout, error)
}

// Destination receives imported records.
type Destination interface {
	SaveWorkoutPlan(ctx context.Context, p models.WorkoutPlan) error
	SaveWorkout(ctx context.Context, w models.Workout) error
}

var (
	_ Source      = (*storage.Legacy)(nil)
	_ Destination = (*storage.DB)(nil)
)

// Stats tracks import progress.
type Stats struct {
	PlansRead       int
	PlansInserted   int
	PlansDuplicated int

	WorkoutsRead       int
	WorkoutsInserted   int
	WorkoutsDuplicated int

	// Invalid counts records that decoded but break the set-count rules.
	Invalid int
}

// Importer copies records into a destination store.
type Importer struct {
	dst    Destination
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer.
func New(dst Destination, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{dst: dst, log: log, dryRun: dryRun}
}

// Import copies every plan, then every workout. Records already present are
// counted as duplicates, so running an import twice is safe.
func (imp *Importer) Import(ctx context.Context, src Source) (*Stats, error) {
	plans, err := src.ListWorkoutPlans(ctx)
	if err != nil {
		return &imp.stats, fmt.Errorf("reading workout plans: %w", err)
	}
	imp.stats.PlansRead = len(plans)
	for _, p := range plans {
		if err := p.Validate(); err != nil {
			imp.log.Warn("skipping invalid workout plan", "id", p.ID, "error", err)
			imp.stats.Invalid++
			continue
		}
		dup, err := imp.save(ctx, func(ctx context.Context) error { return imp.dst.SaveWorkoutPlan(ctx, p) })
		if err != nil {
			return &imp.stats, fmt.Errorf("importing workout plan %s: %w", p.ID, err)
		}
		if dup {
			imp.stats.PlansDuplicated++
		} else {
			imp.stats.PlansInserted++
		}
	}

	workouts, err := src.ListWorkouts(ctx)
	if err != nil {
		return &imp.stats, fmt.Errorf("reading workouts: %w", err)
	}
	imp.stats.WorkoutsRead = len(workouts)
	for _, w := range workouts {
		if err := w.Validate(); err != nil {
			imp.log.Warn("skipping invalid workout", "id", w.ID, "error", err)
			imp.stats.Invalid++
			continue
		}
		dup, err := imp.save(ctx, func(ctx context.Context) error { return imp.dst.SaveWorkout(ctx, w) })
		if err != nil {
			return &imp.stats, fmt.Errorf("importing workout %s: %w", w.ID, err)
		}
		if dup {
			imp.stats.WorkoutsDuplicated++
		} else {
			imp.stats.WorkoutsInserted++
		}
	}

	return &imp.stats, nil
}

// save runs fn unless in dry-run mode and reports whether the record
// already existed.
func (imp *Importer) save(ctx context.Context, fn func(context.Context) error) (bool, error) {
	if imp.dryRun {
		return false, nil
	}
	err := fn(ctx)
	if errors.Is(err, storage.ErrDuplicateKey) {
		return true, nil
	}
	return false, err
}
