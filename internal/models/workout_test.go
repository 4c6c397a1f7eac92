package models

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func seqID() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// TestNewExerciseHasNoSets verifies plan exercises start with an empty,
// non-nil set list so they encode as [] rather than null.
func TestNewExerciseHasNoSets(t *testing.T) {
	e := NewExercise(seqID(), "Bench", 3)
	if e.ID != "id-1" {
		t.Errorf("id = %q, want %q", e.ID, "id-1")
	}
	if e.Sets == nil || len(e.Sets) != 0 {
		t.Errorf("sets = %#v, want empty slice", e.Sets)
	}
}

// TestNewWorkoutExpandsSets verifies each exercise gets AmountOfSets blank sets
// and that the plan is not shared with the workout.
func TestNewWorkoutExpandsSets(t *testing.T) {
	ids := seqID()
	plan := WorkoutPlan{
		ID:   "plan",
		Name: "Push Day",
		Exercises: []Exercise{
			NewExercise(ids, "Bench", 3),
			NewExercise(ids, "OHP", 2),
		},
	}
	now := time.Date(2024, 3, 9, 18, 0, 0, 0, time.Local)

	w := NewWorkout(ids, plan, now)

	if w.WorkoutPlanID != "plan" {
		t.Errorf("workoutPlanId = %q, want %q", w.WorkoutPlanID, "plan")
	}
	if w.Name != "Push Day - 3/9/2024" {
		t.Errorf("name = %q, want %q", w.Name, "Push Day - 3/9/2024")
	}
	for i, want := range []int{3, 2} {
		if got := len(w.Exercises[i].Sets); got != want {
			t.Errorf("exercise %d sets = %d, want %d", i, got, want)
		}
		for j, s := range w.Exercises[i].Sets {
			if s.Reps != "" || s.Weight != "" {
				t.Errorf("exercise %d set %d = %+v, want blank", i, j, s)
			}
		}
	}
	if err := w.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	w.Exercises[0].Name = "Incline"
	if plan.Exercises[0].Name != "Bench" {
		t.Error("renaming a workout exercise changed the plan")
	}
	if len(plan.Exercises[0].Sets) != 0 {
		t.Error("plan exercise gained sets")
	}
}

// TestValidate covers the set-count rules for plans and workouts.
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		plan    WorkoutPlan
		wantErr bool
	}{
		{"ok", WorkoutPlan{ID: "p", Exercises: []Exercise{{ID: "e", AmountOfSets: 3}}}, false},
		{"empty", WorkoutPlan{ID: "p"}, false},
		{"missing id", WorkoutPlan{}, true},
		{"recorded sets", WorkoutPlan{ID: "p", Exercises: []Exercise{{ID: "e", AmountOfSets: 1, Sets: []ExerciseSet{{}}}}}, true},
		{"zero target", WorkoutPlan{ID: "p", Exercises: []Exercise{{ID: "e"}}}, true},
		{"negative target", WorkoutPlan{ID: "p", Exercises: []Exercise{{ID: "e", AmountOfSets: -1}}}, true},
		{"huge target", WorkoutPlan{ID: "p", Exercises: []Exercise{{ID: "e", AmountOfSets: 1 << 62}}}, true},
	}
	for _, tt := range tests {
		t.Run("plan "+tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidPlan) {
				t.Errorf("Validate() = %v, want ErrInvalidPlan", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}

	workouts := []struct {
		name string
		w    Workout
	}{
		{"short", Workout{ID: "w", Exercises: []Exercise{{ID: "e", AmountOfSets: 2, Sets: []ExerciseSet{{}}}}}},
		{"negative target", Workout{ID: "w", Exercises: []Exercise{{ID: "e", AmountOfSets: -1}}}},
		{"over max", Workout{ID: "w", Exercises: []Exercise{{ID: "e", AmountOfSets: MaxSets + 1, Sets: make([]ExerciseSet, MaxSets+1)}}}},
	}
	for _, tt := range workouts {
		t.Run("workout "+tt.name, func(t *testing.T) {
			if err := tt.w.Validate(); !errors.Is(err, ErrInvalidWorkout) {
				t.Errorf("Validate() = %v, want ErrInvalidWorkout", err)
			}
		})
	}
}

// TestInstantiateClampsTarget verifies an out-of-range target never panics.
func TestInstantiateClampsTarget(t *testing.T) {
	for _, n := range []int{-1, 1 << 62} {
		got := Exercise{ID: "e", AmountOfSets: n}.Instantiate()
		if len(got.Sets) > MaxSets {
			t.Errorf("AmountOfSets %d: got %d sets, want at most %d", n, len(got.Sets), MaxSets)
		}
	}
}

// TestExerciseComplete verifies a set counts as complete only with both fields.
func TestExerciseComplete(t *testing.T) {
	tests := []struct {
		name string
		sets []ExerciseSet
		want bool
	}{
		{"no sets", nil, true},
		{"all filled", []ExerciseSet{{"8", "60"}, {"8", "60"}}, true},
		{"missing weight", []ExerciseSet{{"8", "60"}, {"8", ""}}, false},
		{"missing reps", []ExerciseSet{{"", "60"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Exercise{Sets: tt.sets}
			if got := e.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestSortPlans verifies plans are ordered by name, case-insensitively.
func TestSortPlans(t *testing.T) {
	plans := []WorkoutPlan{{Name: "pull"}, {Name: "Legs"}, {Name: "arms"}, {Name: "Push"}}
	SortPlans(plans)
	want := []string{"arms", "Legs", "pull", "Push"}
	for i, p := range plans {
		if p.Name != want[i] {
			t.Errorf("plans[%d] = %q, want %q", i, p.Name, want[i])
		}
	}
}

// TestSortWorkouts verifies workouts are ordered most recent first.
func TestSortWorkouts(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	workouts := []Workout{
		{ID: "a", Date: base},
		{ID: "c", Date: base.Add(48 * time.Hour)},
		{ID: "b", Date: base.Add(24 * time.Hour)},
	}
	SortWorkouts(workouts)
	for i, want := range []string{"c", "b", "a"} {
		if workouts[i].ID != want {
			t.Errorf("workouts[%d] = %q, want %q", i, workouts[i].ID, want)
		}
	}
}
