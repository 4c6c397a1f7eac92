// Package tracker owns the workout state: the stored plans and workouts,
// plus at most one draft plan or one active session, and keeps the store in
// sync as transitions happen.
package tracker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/retry"
	"github.com/claude/liftlog/internal/storage"
)

// Store persists whole plans and workouts.
type Store interface {
	ListWorkouts(ctx context.Context) ([]models.Workout, error)
	ListWorkoutPlans(ctx context.Context) ([]models.WorkoutPlan, error)
	SaveWorkout(ctx context.Context, w models.Workout) error
	SaveWorkoutPlan(ctx context.Context, p models.WorkoutPlan) error
	DeleteWorkout(ctx context.Context, id string) error
	DeleteWorkoutPlan(ctx context.Context, id string) error
}

var _ Store = (*storage.DB)(nil)
var _ Store = storage.Unavailable{}

// Tracker is the state container. Transitions are serialized: one that
// touches the store holds the lock until the store call resolves, and its
// in-memory effect is applied only on success.
type Tracker struct {
	mu     sync.Mutex
	store  Store
	newID  models.IDFunc
	now    func() time.Time
	policy retry.Policy
	log    *slog.Logger

	phase    Phase
	workouts []models.Workout
	plans    []models.WorkoutPlan
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithIDFunc sets the identifier generator used for every new entity.
func WithIDFunc(f models.IDFunc) Option {
	return func(t *Tracker) { t.newID = f }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithPolicy sets the retry policy for store calls.
func WithPolicy(p retry.Policy) Option {
	return func(t *Tracker) { t.policy = p }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(t *Tracker) { t.log = log }
}

// New creates an idle tracker with empty collections. Call Load to read the
// store.
func New(store Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:    store,
		newID:    models.NewID,
		now:      time.Now,
		policy:   retry.DefaultPolicy,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		phase:    Idle{},
		workouts: []models.Workout{},
		plans:    []models.WorkoutPlan{},
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.policy.Permanent == nil {
		t.policy.Permanent = storage.IsPermanent
	}
	return t
}

// Load fetches both collections. On failure the affected collection stays
// as it was (empty at startup) and the error is returned.
func (t *Tracker) Load(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return errors.Join(t.refreshPlans(ctx), t.refreshWorkouts(ctx))
}

// State is a point-in-time copy of the tracker.
type State struct {
	Phase              string               `json:"phase"`
	Workouts           []models.Workout     `json:"workouts"`
	WorkoutPlans       []models.WorkoutPlan `json:"workoutPlans"`
	CurrentWorkoutPlan *models.WorkoutPlan  `json:"currentWorkoutPlan,omitempty"`
	CurrentWorkout     *models.Workout      `json:"currentWorkout,omitempty"`
	ExerciseIndex      int                  `json:"exerciseIndex"`
}

// Snapshot returns a deep copy of the whole state.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := State{
		Phase:        t.phase.Name(),
		Workouts:     cloneWorkouts(t.workouts),
		WorkoutPlans: clonePlans(t.plans),
	}
	switch p := t.phase.(type) {
	case Drafting:
		plan := p.Plan.Clone()
		s.CurrentWorkoutPlan = &plan
	case Active:
		w := p.Workout.Clone()
		s.CurrentWorkout = &w
		s.ExerciseIndex = p.Cursor
	}
	return s
}

// Phase returns the current phase. The value is a copy.
func (t *Tracker) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch p := t.phase.(type) {
	case Drafting:
		return Drafting{Plan: p.Plan.Clone()}
	case Active:
		return Active{Workout: p.Workout.Clone(), Cursor: p.Cursor}
	}
	return Idle{}
}

// Workouts returns the stored workouts, most recent first.
func (t *Tracker) Workouts() []models.Workout {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneWorkouts(t.workouts)
}

// WorkoutPlans returns the stored plans sorted by name.
func (t *Tracker) WorkoutPlans() []models.WorkoutPlan {
	t.mu.Lock()
	defer t.mu.Unlock()
	return clonePlans(t.plans)
}

// Plan looks up a stored plan by id.
func (t *Tracker) Plan(id string) (models.WorkoutPlan, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p, ok := t.findPlan(id); ok {
		return p.Clone(), true
	}
	return models.WorkoutPlan{}, false
}

// CurrentWorkoutPlan returns the draft plan, if any.
func (t *Tracker) CurrentWorkoutPlan() (models.WorkoutPlan, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if d, ok := t.phase.(Drafting); ok {
		return d.Plan.Clone(), true
	}
	return models.WorkoutPlan{}, false
}

// CurrentWorkout returns the active session, if any.
func (t *Tracker) CurrentWorkout() (models.Workout, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if a, ok := t.phase.(Active); ok {
		return a.Workout.Clone(), true
	}
	return models.Workout{}, false
}

func (t *Tracker) timestamp() time.Time {
	return t.now().UTC().Truncate(time.Millisecond)
}

func (t *Tracker) findPlan(id string) (models.WorkoutPlan, bool) {
	for _, p := range t.plans {
		if p.ID == id {
			return p, true
		}
	}
	return models.WorkoutPlan{}, false
}

// run wraps a store call in the retry policy and logs failures.
func (t *Tracker) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return t.report(t.policy.Do(ctx, op, fn))
}

// insert is run for insert-only saves. A duplicate key on a retry means an
// earlier attempt was committed and only its acknowledgement was lost, so
// the record is in the store.
func (t *Tracker) insert(ctx context.Context, op, id string, fn func(ctx context.Context) error) error {
	res := t.policy.Do(ctx, op, fn)
	if res.Attempts > 1 && errors.Is(res.Err, storage.ErrDuplicateKey) {
		t.log.Warn("insert acknowledged late", "op", op, "id", id, "attempts", res.Attempts)
		return nil
	}
	return t.report(res)
}

func (t *Tracker) report(res retry.Result) error {
	if res.OK() {
		return nil
	}
	t.log.Error("store operation failed", "op", res.Op, "attempts", res.Attempts, "error", res.Err)
	return &OpError{Result: res}
}

func (t *Tracker) refreshPlans(ctx context.Context) error {
	var plans []models.WorkoutPlan
	err := t.run(ctx, "list workout plans", func(ctx context.Context) error {
		var err error
		plans, err = t.store.ListWorkoutPlans(ctx)
		return err
	})
	if err != nil {
		return err
	}
	valid := make([]models.WorkoutPlan, 0, len(plans))
	for _, p := range plans {
		if err := p.Validate(); err != nil {
			t.log.Warn("skipping invalid workout plan", "id", p.ID, "error", err)
			continue
		}
		valid = append(valid, p)
	}
	models.SortPlans(valid)
	t.plans = valid
	return nil
}

func (t *Tracker) refreshWorkouts(ctx context.Context) error {
	var workouts []models.Workout
	err := t.run(ctx, "list workouts", func(ctx context.Context) error {
		var err error
		workouts, err = t.store.ListWorkouts(ctx)
		return err
	})
	if err != nil {
		return err
	}
	valid := make([]models.Workout, 0, len(workouts))
	for _, w := range workouts {
		if err := w.Validate(); err != nil {
			t.log.Warn("skipping invalid workout", "id", w.ID, "error", err)
			continue
		}
		valid = append(valid, w)
	}
	models.SortWorkouts(valid)
	t.workouts = valid
	return nil
}

func cloneWorkouts(in []models.Workout) []models.Workout {
	out := make([]models.Workout, len(in))
	for i, w := range in {
		out[i] = w.Clone()
	}
	return out
}

func clonePlans(in []models.WorkoutPlan) []models.WorkoutPlan {
	out := make([]models.WorkoutPlan, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
