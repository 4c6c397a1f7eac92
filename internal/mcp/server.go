package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog workout tracker. List, draft and save workout plans, review past workouts, start a session from a plan, record reps and weight per set, and complete the session to save it."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListWorkoutPlans, Handler: h.listWorkoutPlans},
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetCurrentSession, Handler: h.getCurrentSession},
		server.ServerTool{Tool: toolBeginPlan, Handler: h.beginPlan},
		server.ServerTool{Tool: toolAddExercise, Handler: h.addExercise},
		server.ServerTool{Tool: toolCommitPlan, Handler: h.commitPlan},
		server.ServerTool{Tool: toolStartSession, Handler: h.startSession},
		server.ServerTool{Tool: toolRecordSet, Handler: h.recordSet},
		server.ServerTool{Tool: toolCompleteSession, Handler: h.completeSession},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resPlans, Handler: h.plans},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRecentWorkouts = mcp.NewResource(
	"liftlog://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("The most recent completed workouts with every recorded set"),
	mcp.WithMIMEType("application/json"),
)

var resPlans = mcp.NewResource(
	"liftlog://plans",
	"Workout Plans",
	mcp.WithResourceDescription("All saved workout plans sorted by name"),
	mcp.WithMIMEType("application/json"),
)
