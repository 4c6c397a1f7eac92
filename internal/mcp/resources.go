package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// recentWorkoutCount caps the recent_workouts resource.
const recentWorkoutCount = 10

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	workouts, err := h.ds.Workouts(ctx)
	if err != nil {
		return nil, err
	}
	if len(workouts) > recentWorkoutCount {
		workouts = workouts[:recentWorkoutCount]
	}
	return jsonContents(req.Params.URI, workouts)
}

func (h *handlers) plans(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	plans, err := h.ds.WorkoutPlans(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, plans)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
