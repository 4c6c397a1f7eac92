package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/liftlog/internal/models"
)

// BeginPlan starts drafting a new plan. Confirming a new name while already
// drafting replaces the previous draft.
func (t *Tracker) BeginPlan(name string) (models.WorkoutPlan, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		return models.WorkoutPlan{}, ErrEmptyName
	}
	if _, ok := t.phase.(Active); ok {
		return models.WorkoutPlan{}, fmt.Errorf("%w: finish the active workout first", ErrInvalidTransition)
	}

	plan := models.WorkoutPlan{
		ID:        t.newID(),
		Name:      name,
		Date:      t.timestamp(),
		Exercises: []models.Exercise{},
	}
	t.phase = Drafting{Plan: plan}
	return plan.Clone(), nil
}

// AddExercise appends an exercise with no sets to the draft.
func (t *Tracker) AddExercise(name string, amountOfSets int) (models.Exercise, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	d, ok := t.phase.(Drafting)
	if !ok {
		return models.Exercise{}, ErrNoDraft
	}
	if strings.TrimSpace(name) == "" {
		return models.Exercise{}, ErrEmptyName
	}
	if amountOfSets < 1 || amountOfSets > models.MaxSets {
		return models.Exercise{}, fmt.Errorf("%w: got %d", ErrInvalidSetCount, amountOfSets)
	}

	e := models.NewExercise(t.newID, name, amountOfSets)
	d.Plan.Exercises = append(d.Plan.Exercises, e)
	t.phase = d
	return e.Clone(), nil
}

// RemoveExercise drops an exercise from the draft. An unknown id is a no-op.
func (t *Tracker) RemoveExercise(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	d, ok := t.phase.(Drafting)
	if !ok {
		return ErrNoDraft
	}

	kept := make([]models.Exercise, 0, len(d.Plan.Exercises))
	for _, e := range d.Plan.Exercises {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	d.Plan.Exercises = kept
	t.phase = d
	return nil
}

// DiscardPlan drops the draft without saving it.
func (t *Tracker) DiscardPlan() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.phase.(Drafting); !ok {
		return ErrNoDraft
	}
	t.phase = Idle{}
	return nil
}

// CommitPlan saves the draft, clears it and re-reads the stored plans. If
// saving fails the draft is kept for another attempt.
func (t *Tracker) CommitPlan(ctx context.Context) (models.WorkoutPlan, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	d, ok := t.phase.(Drafting)
	if !ok {
		return models.WorkoutPlan{}, ErrNoDraft
	}
	if len(d.Plan.Exercises) == 0 {
		return models.WorkoutPlan{}, ErrEmptyPlan
	}
	if err := d.Plan.Validate(); err != nil {
		return models.WorkoutPlan{}, err
	}

	plan := d.Plan.Clone()
	if err := t.insert(ctx, "save workout plan", plan.ID, func(ctx context.Context) error {
		return t.store.SaveWorkoutPlan(ctx, plan)
	}); err != nil {
		return models.WorkoutPlan{}, err
	}
	t.phase = Idle{}
	t.log.Info("workout plan saved", "id", plan.ID, "name", plan.Name, "exercises", len(plan.Exercises))

	if err := t.refreshPlans(ctx); err != nil {
		t.log.Warn("workout plans not refreshed after save", "error", err)
	}
	return plan.Clone(), nil
}

// DeletePlan removes a stored plan and re-reads the plans. Workouts that
// came from the plan keep their workoutPlanId.
func (t *Tracker) DeletePlan(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.run(ctx, "delete workout plan", func(ctx context.Context) error {
		return t.store.DeleteWorkoutPlan(ctx, id)
	}); err != nil {
		return err
	}
	t.log.Info("workout plan deleted", "id", id)
	return t.refreshPlans(ctx)
}
