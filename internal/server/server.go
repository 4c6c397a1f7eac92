package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/photos"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	tracker  *tracker.Tracker
	photos   *photos.Dir
	log      *slog.Logger
	apiKey   string
	identity func(http.Handler) http.Handler
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(tr *tracker.Tracker, photoDir *photos.Dir, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		tracker:  tr,
		photos:   photoDir,
		log:      log,
		apiKey:   apiKey,
		identity: DevIdentity,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.identity(next).ServeHTTP(w, r)
		})
	})

	// Read-only endpoints (no auth, tsnet handles access)
	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/state", s.handleState)
	s.router.Get("/api/v1/plans", s.handleListPlans)
	s.router.Get("/api/v1/workouts", s.handleListWorkouts)

	// State transitions (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))

		r.Delete("/api/v1/plans/{id}", s.handleDeletePlan)
		r.Delete("/api/v1/workouts/{id}", s.handleDeleteWorkout)

		r.Route("/api/v1/draft", func(r chi.Router) {
			r.Post("/", s.handleBeginPlan)
			r.Delete("/", s.handleDiscardPlan)
			r.Post("/exercises", s.handleAddExercise)
			r.Delete("/exercises/{id}", s.handleRemoveExercise)
			r.Post("/commit", s.handleCommitPlan)
		})

		r.Route("/api/v1/session", func(r chi.Router) {
			r.Post("/", s.handleBeginSession)
			r.Delete("/", s.handleAbandonSession)
			r.Put("/exercises/{id}/sets/{index}", s.handleRecordSet)
			r.Put("/exercises/{id}/sets", s.handleReplaceSets)
			r.Post("/next", s.handleNextExercise)
			r.Post("/photo", s.handleAttachPhoto)
			r.Post("/complete", s.handleCompleteSession)
		})
	})
}

// SetTailscale switches request identity to Tailscale WhoIs lookups.
func (s *Server) SetTailscale(lc WhoIsClient) {
	s.identity = TailscaleIdentity(lc, s.log)
}

// SetMCP mounts the MCP handler at /mcp behind the API key.
func (s *Server) SetMCP(h http.Handler) {
	s.router.With(APIKeyAuth(s.apiKey)).Handle("/mcp", h)
}
