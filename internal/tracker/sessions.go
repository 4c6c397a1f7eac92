package tracker

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// Field names a column of a recorded set.
type Field string

const (
	FieldReps   Field = "reps"
	FieldWeight Field = "weight"
)

// BeginSession starts a workout from a stored plan. It reports false, and
// changes nothing, when no plan has that id.
func (t *Tracker) BeginSession(planID string) (models.Workout, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.phase.(type) {
	case Drafting:
		return models.Workout{}, false, fmt.Errorf("%w: save or discard the draft plan first", ErrInvalidTransition)
	case Active:
		return models.Workout{}, false, fmt.Errorf("%w: a workout is already active", ErrInvalidTransition)
	}

	plan, ok := t.findPlan(planID)
	if !ok {
		return models.Workout{}, false, nil
	}

	w := models.NewWorkout(t.newID, plan, t.timestamp())
	t.phase = Active{Workout: w}
	t.log.Info("workout started", "id", w.ID, "plan", plan.ID)
	return w.Clone(), true, nil
}

// RecordSet writes one field of one set. It reports false when the session
// has no exercise with that id.
func (t *Tracker) RecordSet(exerciseID string, setIndex int, field Field, value string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.phase.(Active)
	if !ok {
		return false, ErrNoSession
	}
	if field != FieldReps && field != FieldWeight {
		return false, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	i := a.Workout.Exercise(exerciseID)
	if i < 0 {
		return false, nil
	}
	sets := a.Workout.Exercises[i].Sets
	if setIndex < 0 || setIndex >= len(sets) {
		return false, fmt.Errorf("%w: %d of %d", ErrSetIndex, setIndex, len(sets))
	}

	switch field {
	case FieldReps:
		sets[setIndex].Reps = value
	case FieldWeight:
		sets[setIndex].Weight = value
	}
	return true, nil
}

// ReplaceSets overwrites every set of one exercise at once. The number of
// sets must match the exercise's target.
func (t *Tracker) ReplaceSets(exerciseID string, sets []models.ExerciseSet) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.phase.(Active)
	if !ok {
		return false, ErrNoSession
	}
	i := a.Workout.Exercise(exerciseID)
	if i < 0 {
		return false, nil
	}
	e := &a.Workout.Exercises[i]
	if len(sets) != e.AmountOfSets {
		return false, fmt.Errorf("%w: got %d sets, want %d", ErrSetIndex, len(sets), e.AmountOfSets)
	}
	e.Sets = append([]models.ExerciseSet(nil), sets...)
	return true, nil
}

// CurrentExercise returns the exercise under the session cursor.
func (t *Tracker) CurrentExercise() (models.Exercise, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.phase.(Active)
	if !ok {
		return models.Exercise{}, 0, ErrNoSession
	}
	if len(a.Workout.Exercises) == 0 {
		return models.Exercise{}, 0, nil
	}
	return a.Workout.Exercises[a.Cursor].Clone(), a.Cursor, nil
}

// NextExercise moves the cursor forward. It reports false on the last
// exercise.
func (t *Tracker) NextExercise() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.phase.(Active)
	if !ok {
		return false, ErrNoSession
	}
	if a.Cursor >= len(a.Workout.Exercises)-1 {
		return false, nil
	}
	a.Cursor++
	t.phase = a
	return true, nil
}

// ExerciseComplete reports whether every set of the exercise has reps and
// weight entered.
func (t *Tracker) ExerciseComplete(exerciseID string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.phase.(Active)
	if !ok {
		return false, ErrNoSession
	}
	i := a.Workout.Exercise(exerciseID)
	if i < 0 {
		return false, nil
	}
	return a.Workout.Exercises[i].Complete(), nil
}

// AttachPhoto sets the progress photo of the active session.
func (t *Tracker) AttachPhoto(uri string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.phase.(Active)
	if !ok {
		return ErrNoSession
	}
	a.Workout.Photo = uri
	t.phase = a
	return nil
}

// AbandonSession drops the active session without saving it.
func (t *Tracker) AbandonSession() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.phase.(Active); !ok {
		return ErrNoSession
	}
	t.phase = Idle{}
	return nil
}

// CompleteSession saves the active session, clears it and re-reads the
// stored workouts. If saving fails the session is kept for another attempt.
func (t *Tracker) CompleteSession(ctx context.Context) (models.Workout, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.phase.(Active)
	if !ok {
		return models.Workout{}, ErrNoSession
	}
	if err := a.Workout.Validate(); err != nil {
		return models.Workout{}, err
	}

	w := a.Workout.Clone()
	if err := t.insert(ctx, "save workout", w.ID, func(ctx context.Context) error {
		return t.store.SaveWorkout(ctx, w)
	}); err != nil {
		return models.Workout{}, err
	}
	t.phase = Idle{}
	t.log.Info("workout saved", "id", w.ID, "name", w.Name)

	if err := t.refreshWorkouts(ctx); err != nil {
		t.log.Warn("workouts not refreshed after save", "error", err)
	}
	return w.Clone(), nil
}

// DeleteWorkout removes a stored workout and re-reads the workouts.
func (t *Tracker) DeleteWorkout(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.run(ctx, "delete workout", func(ctx context.Context) error {
		return t.store.DeleteWorkout(ctx, id)
	}); err != nil {
		return err
	}
	t.log.Info("workout deleted", "id", id)
	return t.refreshWorkouts(ctx)
}
