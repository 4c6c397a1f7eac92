package mcp

import (
	"context"
	"errors"

	"github.com/claude/liftlog/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListWorkoutPlans = mcp.NewTool("list_workout_plans",
	mcp.WithDescription("List saved workout plans sorted by name. Each plan has exercises with a target number of sets."),
)

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List completed workouts, most recent first, with the reps and weight recorded for every set."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of workouts to return. Defaults to all.")),
)

var toolGetCurrentSession = mcp.NewTool("get_current_session",
	mcp.WithDescription("Get the tracker phase (idle, drafting or active) and the workout in progress, including the exercise currently being recorded."),
)

var toolBeginPlan = mcp.NewTool("begin_plan",
	mcp.WithDescription("Start drafting a new workout plan. Any plan already being drafted is replaced. Add exercises with add_exercise, then save with commit_plan."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Plan name, e.g. 'Push Day'")),
)

var toolAddExercise = mcp.NewTool("add_exercise",
	mcp.WithDescription("Add an exercise to the plan being drafted."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Exercise name, e.g. 'Bench Press'")),
	mcp.WithNumber("amount_of_sets", mcp.Required(), mcp.Description("Target number of sets"), mcp.Min(1), mcp.Max(models.MaxSets)),
)

var toolCommitPlan = mcp.NewTool("commit_plan",
	mcp.WithDescription("Save the drafted plan so sessions can be started from it. If saving fails the draft is kept and the call can be retried."),
)

var toolStartSession = mcp.NewTool("start_session",
	mcp.WithDescription("Start a workout from a saved plan. Every exercise gets its target number of blank sets."),
	mcp.WithString("plan_id", mcp.Required(), mcp.Description("ID of the workout plan (see list_workout_plans)")),
)

var toolRecordSet = mcp.NewTool("record_set",
	mcp.WithDescription("Record reps or weight for one set of the active workout. Values are free text, e.g. '8' or '62.5'."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise ID within the active workout")),
	mcp.WithNumber("set_index", mcp.Required(), mcp.Description("Zero-based set index")),
	mcp.WithString("field", mcp.Required(), mcp.Description("Which value to record"), mcp.Enum("reps", "weight")),
	mcp.WithString("value", mcp.Required(), mcp.Description("The value as entered")),
)

var toolCompleteSession = mcp.NewTool("complete_session",
	mcp.WithDescription("Save the active workout and clear it. If saving fails the workout stays active and the call can be retried."),
)

// --- Tool handlers ---

func (h *handlers) listWorkoutPlans(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plans, err := h.ds.WorkoutPlans(ctx)
	if err != nil {
		h.log.Error("mcp list_workout_plans", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(plans)
}

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workouts, err := h.ds.Workouts(ctx)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if limit := req.GetInt("limit", 0); limit > 0 && limit < len(workouts) {
		workouts = workouts[:limit]
	}
	return jsonResult(workouts)
}

func (h *handlers) getCurrentSession(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := h.ds.State(ctx)
	if err != nil {
		h.log.Error("mcp get_current_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(map[string]any{
		"phase":         st.Phase,
		"workout":       st.CurrentWorkout,
		"exerciseIndex": st.ExerciseIndex,
	})
}

func (h *handlers) beginPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name parameter is required"), nil
	}
	p, err := h.ds.BeginPlan(ctx, name)
	if err != nil {
		return mcp.NewToolResultError("begin plan failed: " + err.Error()), nil
	}
	return jsonResult(p)
}

func (h *handlers) addExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name parameter is required"), nil
	}
	sets, err := req.RequireInt("amount_of_sets")
	if err != nil {
		return mcp.NewToolResultError("amount_of_sets parameter is required"), nil
	}
	e, err := h.ds.AddExercise(ctx, name, sets)
	if err != nil {
		return mcp.NewToolResultError("add exercise failed: " + err.Error()), nil
	}
	return jsonResult(e)
}

func (h *handlers) commitPlan(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := h.ds.CommitPlan(ctx)
	if err != nil {
		h.log.Error("mcp commit_plan", "error", err)
		return mcp.NewToolResultError("commit plan failed: " + err.Error()), nil
	}
	h.log.Info("mcp plan saved", "id", p.ID, "name", p.Name)
	return jsonResult(p)
}

func (h *handlers) startSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	planID, err := req.RequireString("plan_id")
	if err != nil {
		return mcp.NewToolResultError("plan_id parameter is required"), nil
	}

	w, err := h.ds.StartSession(ctx, planID)
	if errors.Is(err, ErrNotFound) {
		return mcp.NewToolResultError("no workout plan with id " + planID), nil
	}
	if err != nil {
		return mcp.NewToolResultError("start session failed: " + err.Error()), nil
	}
	h.log.Info("mcp session started", "id", w.ID, "plan", planID)
	return jsonResult(w)
}

func (h *handlers) recordSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	index, err := req.RequireInt("set_index")
	if err != nil {
		return mcp.NewToolResultError("set_index parameter is required"), nil
	}
	field, err := req.RequireString("field")
	if err != nil {
		return mcp.NewToolResultError("field parameter is required"), nil
	}
	value, err := req.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError("value parameter is required"), nil
	}

	w, err := h.ds.RecordSet(ctx, exerciseID, index, field, value)
	if errors.Is(err, ErrNotFound) {
		return mcp.NewToolResultError("no exercise with id " + exerciseID + " in the active workout"), nil
	}
	if err != nil {
		return mcp.NewToolResultError("record set failed: " + err.Error()), nil
	}
	return jsonResult(w)
}

func (h *handlers) completeSession(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, err := h.ds.CompleteSession(ctx)
	if err != nil {
		h.log.Error("mcp complete_session", "error", err)
		return mcp.NewToolResultError("complete session failed: " + err.Error()), nil
	}
	h.log.Info("mcp session completed", "id", w.ID)
	return jsonResult(w)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
