package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidPlan    = errors.New("invalid workout plan")
	ErrInvalidWorkout = errors.New("invalid workout")
)

// SessionDateLayout is the date part of a derived workout name.
const SessionDateLayout = "1/2/2006"

// IDFunc generates a unique entity identifier.
type IDFunc func() string

// NewID returns a random (version 4) UUID string.
func NewID() string {
	return uuid.NewString()
}

// ExerciseSet is one performed set. Both fields hold user-entered text and
// are never parsed here.
type ExerciseSet struct {
	Reps   string `json:"reps"`
	Weight string `json:"weight"`
}

// Complete reports whether both reps and weight were entered.
func (s ExerciseSet) Complete() bool {
	return s.Reps != "" && s.Weight != ""
}

// Exercise is a named movement with a target set count. Inside a plan Sets
// is empty; inside a workout it holds exactly AmountOfSets entries.
type Exercise struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	AmountOfSets int           `json:"amountOfSets"`
	Sets         []ExerciseSet `json:"sets"`
}

// MaxSets bounds AmountOfSets.
const MaxSets = 100

// NewExercise creates a plan exercise with no sets.
func NewExercise(newID IDFunc, name string, amountOfSets int) Exercise {
	return Exercise{
		ID:           newID(),
		Name:         name,
		AmountOfSets: amountOfSets,
		Sets:         []ExerciseSet{},
	}
}

// Clone returns a deep copy.
func (e Exercise) Clone() Exercise {
	c := e
	c.Sets = make([]ExerciseSet, len(e.Sets))
	copy(c.Sets, e.Sets)
	return c
}

// Instantiate returns a copy of e with AmountOfSets blank sets, ready to be
// recorded during a session.
func (e Exercise) Instantiate() Exercise {
	c := e
	n := min(max(e.AmountOfSets, 0), MaxSets)
	c.Sets = make([]ExerciseSet, n)
	return c
}

// Complete reports whether every set of e has reps and weight.
func (e Exercise) Complete() bool {
	for _, s := range e.Sets {
		if !s.Complete() {
			return false
		}
	}
	return true
}

// WorkoutPlan is a reusable template of exercises.
type WorkoutPlan struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Date      time.Time  `json:"date"`
	Exercises []Exercise `json:"exercises"`
}

// Clone returns a deep copy.
func (p WorkoutPlan) Clone() WorkoutPlan {
	c := p
	c.Exercises = cloneExercises(p.Exercises)
	return c
}

// Validate checks that every exercise in the plan targets between 1 and
// MaxSets sets and has none recorded.
func (p WorkoutPlan) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidPlan)
	}
	for _, e := range p.Exercises {
		if e.AmountOfSets < 1 || e.AmountOfSets > MaxSets {
			return fmt.Errorf("%w: exercise %s targets %d sets", ErrInvalidPlan, e.ID, e.AmountOfSets)
		}
		if len(e.Sets) != 0 {
			return fmt.Errorf("%w: exercise %s has %d sets", ErrInvalidPlan, e.ID, len(e.Sets))
		}
	}
	return nil
}

// Workout is one session instantiated from a plan.
type Workout struct {
	ID            string     `json:"id"`
	Date          time.Time  `json:"date"`
	Name          string     `json:"name"`
	WorkoutPlanID string     `json:"workoutPlanId"`
	Exercises     []Exercise `json:"exercises"`
	Photo         string     `json:"photo"`
}

// NewWorkout instantiates a session from plan. The exercises are copied by
// value so later changes to the plan never reach the workout.
func NewWorkout(newID IDFunc, plan WorkoutPlan, now time.Time) Workout {
	exercises := make([]Exercise, len(plan.Exercises))
	for i, e := range plan.Exercises {
		exercises[i] = e.Instantiate()
	}
	return Workout{
		ID:            newID(),
		Date:          now,
		Name:          SessionName(plan.Name, now),
		WorkoutPlanID: plan.ID,
		Exercises:     exercises,
	}
}

// SessionName derives a workout name from its plan and start time.
func SessionName(planName string, t time.Time) string {
	return planName + " - " + t.Local().Format(SessionDateLayout)
}

// Clone returns a deep copy.
func (w Workout) Clone() Workout {
	c := w
	c.Exercises = cloneExercises(w.Exercises)
	return c
}

// Validate checks that every exercise holds exactly AmountOfSets sets,
// between 1 and MaxSets.
func (w Workout) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidWorkout)
	}
	for _, e := range w.Exercises {
		if e.AmountOfSets < 1 || e.AmountOfSets > MaxSets {
			return fmt.Errorf("%w: exercise %s targets %d sets", ErrInvalidWorkout, e.ID, e.AmountOfSets)
		}
		if len(e.Sets) != e.AmountOfSets {
			return fmt.Errorf("%w: exercise %s has %d sets, want %d",
				ErrInvalidWorkout, e.ID, len(e.Sets), e.AmountOfSets)
		}
	}
	return nil
}

// Exercise returns the index of the exercise with the given id, or -1.
func (w Workout) Exercise(id string) int {
	for i, e := range w.Exercises {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func cloneExercises(in []Exercise) []Exercise {
	if in == nil {
		return nil
	}
	out := make([]Exercise, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}
