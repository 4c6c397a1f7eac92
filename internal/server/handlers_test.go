package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/photos"
	"github.com/claude/liftlog/internal/retry"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/tracker"
)

const testAPIKey = "test-key"

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer wires a server over a fresh SQLite database.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "liftlog.db")
	db, err := storage.Open(context.Background(), storage.Options{
		Driver:       storage.DriverSQLite,
		DSN:          path,
		MigrationURL: "sqlite://" + path,
	}, quietLog())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return newServerWithStore(t, db)
}

func newServerWithStore(t *testing.T, store tracker.Store) *Server {
	t.Helper()
	photoDir, err := photos.New(filepath.Join(t.TempDir(), "photos"))
	if err != nil {
		t.Fatalf("photos.New: %v", err)
	}
	tr := tracker.New(store, tracker.WithPolicy(retry.Policy{MaxAttempts: 1}))
	return New(tr, photoDir, testAPIKey, quietLog())
}

// do sends a request with the API key and decodes a JSON response into out.
func do(t *testing.T, s *Server, method, path string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode error: %v", method, path, err)
		}
	}
	return rec.Code
}

// createPushDay drafts and commits a two-exercise plan over HTTP.
func createPushDay(t *testing.T, s *Server) models.WorkoutPlan {
	t.Helper()
	if code := do(t, s, http.MethodPost, "/api/v1/draft", beginPlanRequest{Name: "Push Day"}, nil); code != http.StatusCreated {
		t.Fatalf("begin plan status = %d", code)
	}
	for _, name := range []string{"Bench", "OHP"} {
		req := addExerciseRequest{Name: name, AmountOfSets: 3}
		if code := do(t, s, http.MethodPost, "/api/v1/draft/exercises", req, nil); code != http.StatusCreated {
			t.Fatalf("add exercise status = %d", code)
		}
	}
	var plan models.WorkoutPlan
	if code := do(t, s, http.MethodPost, "/api/v1/draft/commit", nil, &plan); code != http.StatusCreated {
		t.Fatalf("commit status = %d", code)
	}
	return plan
}

// TestHandleMeDefault verifies the /api/v1/me endpoint returns the dev user
// identity when no Tailscale middleware is active.
func TestHandleMeDefault(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "local", DisplayName: "Local Dev User"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
}

// TestWorkoutFlow drives a plan and a session end to end and checks the
// stored results.
func TestWorkoutFlow(t *testing.T) {
	s := newTestServer(t)
	plan := createPushDay(t, s)

	var plans []models.WorkoutPlan
	do(t, s, http.MethodGet, "/api/v1/plans", nil, &plans)
	if len(plans) != 1 || plans[0].Name != "Push Day" || len(plans[0].Exercises) != 2 {
		t.Fatalf("plans = %+v", plans)
	}

	var workout models.Workout
	if code := do(t, s, http.MethodPost, "/api/v1/session", beginSessionRequest{PlanID: plan.ID}, &workout); code != http.StatusCreated {
		t.Fatalf("begin session status = %d", code)
	}
	bench := workout.Exercises[0].ID

	path := fmt.Sprintf("/api/v1/session/exercises/%s/sets/0", bench)
	if code := do(t, s, http.MethodPut, path, recordSetRequest{Field: "reps", Value: "8"}, &workout); code != http.StatusOK {
		t.Fatalf("record set status = %d", code)
	}
	if workout.Exercises[0].Sets[0].Reps != "8" {
		t.Errorf("reps = %q, want 8", workout.Exercises[0].Sets[0].Reps)
	}

	sets := []models.ExerciseSet{{Reps: "5", Weight: "40"}, {Reps: "5", Weight: "40"}, {Reps: "4", Weight: "42.5"}}
	path = fmt.Sprintf("/api/v1/session/exercises/%s/sets", workout.Exercises[1].ID)
	if code := do(t, s, http.MethodPut, path, sets, &workout); code != http.StatusOK {
		t.Fatalf("replace sets status = %d", code)
	}

	var next struct {
		Moved         bool `json:"moved"`
		ExerciseIndex int  `json:"exerciseIndex"`
	}
	do(t, s, http.MethodPost, "/api/v1/session/next", nil, &next)
	if !next.Moved || next.ExerciseIndex != 1 {
		t.Errorf("next = %+v", next)
	}

	if code := do(t, s, http.MethodPost, "/api/v1/session/photo", attachPhotoRequest{URI: "file://x.jpg"}, nil); code != http.StatusOK {
		t.Fatalf("attach photo status = %d", code)
	}
	if code := do(t, s, http.MethodPost, "/api/v1/session/complete", nil, nil); code != http.StatusCreated {
		t.Fatalf("complete status = %d", code)
	}

	var workouts []models.Workout
	do(t, s, http.MethodGet, "/api/v1/workouts", nil, &workouts)
	if len(workouts) != 1 {
		t.Fatalf("got %d workouts, want 1", len(workouts))
	}
	got := workouts[0]
	if got.Photo != "file://x.jpg" || got.WorkoutPlanID != plan.ID {
		t.Errorf("workout = %+v", got)
	}
	if got.Exercises[1].Sets[2].Weight != "42.5" {
		t.Errorf("replaced sets not stored: %+v", got.Exercises[1].Sets)
	}

	// Deleting the plan leaves the workout in place.
	if code := do(t, s, http.MethodDelete, "/api/v1/plans/"+plan.ID, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete plan status = %d", code)
	}
	workouts = nil
	do(t, s, http.MethodGet, "/api/v1/workouts", nil, &workouts)
	if len(workouts) != 1 || workouts[0].WorkoutPlanID != plan.ID {
		t.Errorf("workouts after plan delete = %+v", workouts)
	}

	for i := 0; i < 2; i++ {
		if code := do(t, s, http.MethodDelete, "/api/v1/workouts/"+got.ID, nil, nil); code != http.StatusNoContent {
			t.Fatalf("delete workout #%d status = %d", i+1, code)
		}
	}
	var st tracker.State
	do(t, s, http.MethodGet, "/api/v1/state", nil, &st)
	if st.Phase != "idle" || len(st.Workouts) != 0 || len(st.WorkoutPlans) != 0 {
		t.Errorf("state = %+v", st)
	}
}

// TestUploadPhoto verifies a raw image body is stored and attached.
func TestUploadPhoto(t *testing.T) {
	s := newTestServer(t)
	plan := createPushDay(t, s)
	do(t, s, http.MethodPost, "/api/v1/session", beginSessionRequest{PlanID: plan.ID}, nil)

	img := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/photo", bytes.NewReader(img))
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var w models.Workout
	json.NewDecoder(rec.Body).Decode(&w)
	u, err := url.Parse(w.Photo)
	if err != nil || u.Scheme != "file" {
		t.Fatalf("photo = %q", w.Photo)
	}
	if _, err := os.Stat(u.Path); err != nil {
		t.Errorf("photo file missing: %v", err)
	}
}

// TestUploadPhotoRejected verifies unsupported images and missing sessions.
func TestUploadPhotoRejected(t *testing.T) {
	s := newTestServer(t)

	send := func(contentType string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/session/photo", bytes.NewReader([]byte("GIF89a")))
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-API-Key", testAPIKey)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("image/gif"); code != http.StatusConflict {
		t.Errorf("no session: status = %d, want 409", code)
	}
	plan := createPushDay(t, s)
	do(t, s, http.MethodPost, "/api/v1/session", beginSessionRequest{PlanID: plan.ID}, nil)
	if code := send("image/gif"); code != http.StatusUnsupportedMediaType {
		t.Errorf("gif: status = %d, want 415", code)
	}
}

// TestErrorStatuses verifies transition failures map to client statuses.
func TestErrorStatuses(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"commit without draft", http.MethodPost, "/api/v1/draft/commit", nil, http.StatusConflict},
		{"empty plan name", http.MethodPost, "/api/v1/draft", beginPlanRequest{}, http.StatusBadRequest},
		{"record without session", http.MethodPut, "/api/v1/session/exercises/x/sets/0", recordSetRequest{Field: "reps", Value: "1"}, http.StatusConflict},
		{"bad set index", http.MethodPut, "/api/v1/session/exercises/x/sets/first", recordSetRequest{}, http.StatusBadRequest},
		{"unknown plan", http.MethodPost, "/api/v1/session", beginSessionRequest{PlanID: "missing"}, http.StatusNotFound},
		{"complete without session", http.MethodPost, "/api/v1/session/complete", nil, http.StatusConflict},
		{"malformed body", http.MethodPost, "/api/v1/draft", "not an object", http.StatusBadRequest},
		{"start draft", http.MethodPost, "/api/v1/draft", beginPlanRequest{Name: "Legs"}, http.StatusCreated},
		{"too many sets", http.MethodPost, "/api/v1/draft/exercises", addExerciseRequest{Name: "Squat", AmountOfSets: models.MaxSets + 1}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := do(t, s, tt.method, tt.path, tt.body, nil); code != tt.want {
				t.Errorf("status = %d, want %d", code, tt.want)
			}
		})
	}
}

// TestMutationsRequireAPIKey verifies transitions are guarded and reads are not.
func TestMutationsRequireAPIKey(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/draft", bytes.NewReader([]byte(`{"name":"Legs"}`)))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("POST without key: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/state", nil)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET without key: status = %d, want 200", rec.Code)
	}
}

// TestUnavailableStore verifies commits report 503 and keep the draft.
func TestUnavailableStore(t *testing.T) {
	s := newServerWithStore(t, storage.Unavailable{})

	do(t, s, http.MethodPost, "/api/v1/draft", beginPlanRequest{Name: "Legs"}, nil)
	do(t, s, http.MethodPost, "/api/v1/draft/exercises", addExerciseRequest{Name: "Squat", AmountOfSets: 5}, nil)
	if code := do(t, s, http.MethodPost, "/api/v1/draft/commit", nil, nil); code != http.StatusServiceUnavailable {
		t.Errorf("commit status = %d, want 503", code)
	}

	var st tracker.State
	do(t, s, http.MethodGet, "/api/v1/state", nil, &st)
	if st.CurrentWorkoutPlan == nil || len(st.CurrentWorkoutPlan.Exercises) != 1 {
		t.Errorf("draft lost: %+v", st.CurrentWorkoutPlan)
	}
}

// TestStatusFor covers error to status mapping not reached by the flows above.
func TestStatusFor(t *testing.T) {
	dup := &tracker.OpError{Result: retry.Result{Op: "save", Attempts: 1, Err: storage.ErrDuplicateKey}}
	tests := []struct {
		err  error
		want int
	}{
		{dup, http.StatusConflict},
		{&tracker.OpError{Result: retry.Result{Err: errors.New("timeout")}}, http.StatusServiceUnavailable},
		{photos.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{fmt.Errorf("wrapped: %w", tracker.ErrSetIndex), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
