package mcp

import (
	"context"
	"errors"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/tracker"
)

// ErrNotFound is returned when a plan or exercise id does not match.
var ErrNotFound = errors.New("not found")

// DataSource abstracts the tracker for MCP tools. Both TrackerSource (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	WorkoutPlans(ctx context.Context) ([]models.WorkoutPlan, error)
	Workouts(ctx context.Context) ([]models.Workout, error)
	State(ctx context.Context) (tracker.State, error)
	BeginPlan(ctx context.Context, name string) (models.WorkoutPlan, error)
	AddExercise(ctx context.Context, name string, amountOfSets int) (models.Exercise, error)
	CommitPlan(ctx context.Context) (models.WorkoutPlan, error)
	StartSession(ctx context.Context, planID string) (models.Workout, error)
	RecordSet(ctx context.Context, exerciseID string, index int, field, value string) (models.Workout, error)
	CompleteSession(ctx context.Context) (models.Workout, error)
}

// TrackerSource serves MCP tools from an in-process tracker.
type TrackerSource struct {
	T *tracker.Tracker
}

// Compile-time check: TrackerSource satisfies DataSource.
var _ DataSource = TrackerSource{}

func (s TrackerSource) WorkoutPlans(context.Context) ([]models.WorkoutPlan, error) {
	return s.T.WorkoutPlans(), nil
}

func (s TrackerSource) Workouts(context.Context) ([]models.Workout, error) {
	return s.T.Workouts(), nil
}

func (s TrackerSource) State(context.Context) (tracker.State, error) {
	return s.T.Snapshot(), nil
}

func (s TrackerSource) BeginPlan(_ context.Context, name string) (models.WorkoutPlan, error) {
	return s.T.BeginPlan(name)
}

func (s TrackerSource) AddExercise(_ context.Context, name string, amountOfSets int) (models.Exercise, error) {
	return s.T.AddExercise(name, amountOfSets)
}

func (s TrackerSource) CommitPlan(ctx context.Context) (models.WorkoutPlan, error) {
	return s.T.CommitPlan(ctx)
}

func (s TrackerSource) StartSession(_ context.Context, planID string) (models.Workout, error) {
	w, ok, err := s.T.BeginSession(planID)
	if err != nil {
		return models.Workout{}, err
	}
	if !ok {
		return models.Workout{}, ErrNotFound
	}
	return w, nil
}

func (s TrackerSource) RecordSet(_ context.Context, exerciseID string, index int, field, value string) (models.Workout, error) {
	ok, err := s.T.RecordSet(exerciseID, index, tracker.Field(field), value)
	if err != nil {
		return models.Workout{}, err
	}
	if !ok {
		return models.Workout{}, ErrNotFound
	}
	w, _ := s.T.CurrentWorkout()
	return w, nil
}

func (s TrackerSource) CompleteSession(ctx context.Context) (models.Workout, error) {
	return s.T.CompleteSession(ctx)
}
