package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/photos"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/go-chi/chi/v5"
)

type beginPlanRequest struct {
	Name string `json:"name"`
}

type addExerciseRequest struct {
	Name         string `json:"name"`
	AmountOfSets int    `json:"amountOfSets"`
}

type beginSessionRequest struct {
	PlanID string `json:"planId"`
}

type recordSetRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type attachPhotoRequest struct {
	URI string `json:"uri"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Snapshot())
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.WorkoutPlans())
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Workouts())
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeletePlan(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteWorkout(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBeginPlan(w http.ResponseWriter, r *http.Request) {
	var req beginPlanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	plan, err := s.tracker.BeginPlan(req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleDiscardPlan(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DiscardPlan(); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var req addExerciseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e, err := s.tracker.AddExercise(req.Name, req.AmountOfSets)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.RemoveExercise(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCommitPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.tracker.CommitPlan(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleBeginSession(w http.ResponseWriter, r *http.Request) {
	var req beginSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	workout, ok, err := s.tracker.BeginSession(req.PlanID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout plan not found"})
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.AbandonSession(); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecordSet(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set index"})
		return
	}
	var req recordSetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ok, err := s.tracker.RecordSet(chi.URLParam(r, "id"), index, tracker.Field(req.Field), req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	s.writeCurrentWorkout(w)
}

func (s *Server) handleReplaceSets(w http.ResponseWriter, r *http.Request) {
	var sets []models.ExerciseSet
	if !decodeBody(w, r, &sets) {
		return
	}
	ok, err := s.tracker.ReplaceSets(chi.URLParam(r, "id"), sets)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	s.writeCurrentWorkout(w)
}

func (s *Server) handleNextExercise(w http.ResponseWriter, r *http.Request) {
	moved, err := s.tracker.NextExercise()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	e, index, err := s.tracker.CurrentExercise()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"moved":         moved,
		"exerciseIndex": index,
		"exercise":      e,
	})
}

// handleAttachPhoto accepts either {"uri": "..."} or the raw image bytes,
// which are stored in the photo directory first.
func (s *Server) handleAttachPhoto(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req attachPhotoRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := s.tracker.AttachPhoto(req.URI); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeCurrentWorkout(w)
		return
	}

	if _, ok := s.tracker.CurrentWorkout(); !ok {
		s.writeError(w, r, tracker.ErrNoSession)
		return
	}
	uri, err := s.photos.Save(http.MaxBytesReader(w, r.Body, photos.MaxSize+1), mediaType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.tracker.AttachPhoto(uri); err != nil {
		if rmErr := s.photos.Remove(uri); rmErr != nil {
			s.log.Warn("orphaned photo not removed", "uri", uri, "error", rmErr)
		}
		s.writeError(w, r, err)
		return
	}
	s.log.Info("photo attached", "uri", uri, "user", userInfoFromContext(r).Login)
	s.writeCurrentWorkout(w)
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	workout, err := s.tracker.CompleteSession(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

func (s *Server) writeCurrentWorkout(w http.ResponseWriter) {
	workout, ok := s.tracker.CurrentWorkout()
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]string{"error": tracker.ErrNoSession.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

// writeError maps tracker, storage and photo errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	var opErr *tracker.OpError
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		return http.StatusConflict
	case errors.As(err, &opErr):
		return http.StatusServiceUnavailable
	case errors.Is(err, tracker.ErrInvalidTransition),
		errors.Is(err, tracker.ErrNoDraft),
		errors.Is(err, tracker.ErrNoSession):
		return http.StatusConflict
	case errors.Is(err, photos.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, photos.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, tracker.ErrEmptyName),
		errors.Is(err, tracker.ErrInvalidSetCount),
		errors.Is(err, tracker.ErrEmptyPlan),
		errors.Is(err, tracker.ErrSetIndex),
		errors.Is(err, tracker.ErrUnknownField),
		errors.Is(err, models.ErrInvalidPlan),
		errors.Is(err, models.ErrInvalidWorkout),
		errors.Is(err, photos.ErrEmpty):
		return http.StatusBadRequest
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
