package tracker

import (
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/retry"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNoDraft           = errors.New("no workout plan is being drafted")
	ErrNoSession         = errors.New("no active workout")
	ErrEmptyName         = errors.New("name is required")
	ErrInvalidSetCount   = fmt.Errorf("amount of sets must be between 1 and %d", models.MaxSets)
	ErrEmptyPlan         = errors.New("workout plan has no exercises")
	ErrSetIndex          = errors.New("set index out of range")
	ErrUnknownField      = errors.New("unknown set field")
)

// OpError reports a store operation that did not take effect. The
// in-memory state is unchanged, so the caller may retry.
type OpError struct {
	Result retry.Result
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s failed after %d attempt(s): %v", e.Result.Op, e.Result.Attempts, e.Result.Err)
}

func (e *OpError) Unwrap() error {
	return e.Result.Err
}
