package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/tracker"
)

// HTTPClient implements DataSource by calling the LiftLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the tracker lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. The API
// key is sent on every request.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// do sends a request and decodes the JSON response into out. A 404 maps to
// ErrNotFound.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpclient: encode body: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("httpclient: %s: %w", path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, apiError(data))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

// apiError extracts the message from an {"error": "..."} body.
func apiError(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

func (c *HTTPClient) WorkoutPlans(ctx context.Context) ([]models.WorkoutPlan, error) {
	var plans []models.WorkoutPlan
	if err := c.do(ctx, http.MethodGet, "/api/v1/plans", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (c *HTTPClient) Workouts(ctx context.Context) ([]models.Workout, error) {
	var workouts []models.Workout
	if err := c.do(ctx, http.MethodGet, "/api/v1/workouts", nil, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (c *HTTPClient) State(ctx context.Context) (tracker.State, error) {
	var st tracker.State
	err := c.do(ctx, http.MethodGet, "/api/v1/state", nil, &st)
	return st, err
}

func (c *HTTPClient) BeginPlan(ctx context.Context, name string) (models.WorkoutPlan, error) {
	var p models.WorkoutPlan
	err := c.do(ctx, http.MethodPost, "/api/v1/draft", map[string]string{"name": name}, &p)
	return p, err
}

func (c *HTTPClient) AddExercise(ctx context.Context, name string, amountOfSets int) (models.Exercise, error) {
	var e models.Exercise
	body := map[string]any{"name": name, "amountOfSets": amountOfSets}
	err := c.do(ctx, http.MethodPost, "/api/v1/draft/exercises", body, &e)
	return e, err
}

func (c *HTTPClient) CommitPlan(ctx context.Context) (models.WorkoutPlan, error) {
	var p models.WorkoutPlan
	err := c.do(ctx, http.MethodPost, "/api/v1/draft/commit", nil, &p)
	return p, err
}

func (c *HTTPClient) StartSession(ctx context.Context, planID string) (models.Workout, error) {
	var w models.Workout
	err := c.do(ctx, http.MethodPost, "/api/v1/session", map[string]string{"planId": planID}, &w)
	return w, err
}

func (c *HTTPClient) RecordSet(ctx context.Context, exerciseID string, index int, field, value string) (models.Workout, error) {
	path := "/api/v1/session/exercises/" + url.PathEscape(exerciseID) + "/sets/" + strconv.Itoa(index)
	var w models.Workout
	err := c.do(ctx, http.MethodPut, path, map[string]string{"field": field, "value": value}, &w)
	return w, err
}

func (c *HTTPClient) CompleteSession(ctx context.Context) (models.Workout, error) {
	var w models.Workout
	err := c.do(ctx, http.MethodPost, "/api/v1/session/complete", nil, &w)
	return w, err
}
