package tracker

import "github.com/claude/liftlog/internal/models"

// Phase is the tracker's current mode: Idle, Drafting or Active. Only one
// can hold at a time, so a draft and a session never coexist.
type Phase interface {
	Name() string
	isPhase()
}

// Idle has neither a draft plan nor an active session.
type Idle struct{}

// Drafting holds a plan under construction that has not been persisted.
type Drafting struct {
	Plan models.WorkoutPlan
}

// Active holds a session in progress. Cursor is the exercise being recorded.
type Active struct {
	Workout models.Workout
	Cursor  int
}

func (Idle) Name() string     { return "idle" }
func (Drafting) Name() string { return "drafting" }
func (Active) Name() string   { return "active" }

func (Idle) isPhase()     {}
func (Drafting) isPhase() {}
func (Active) isPhase()   {}
