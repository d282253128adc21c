package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"assignment-service/internal/app"
	"assignment-service/internal/auth"
	"assignment-service/internal/config"
	"assignment-service/internal/domain"
	"assignment-service/internal/infra/memory"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	server  *httptest.Server
	service *app.Service
	auth    *auth.Authenticator
	clock   *testClock
	teacher domain.Identity
	student domain.Identity
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := &testClock{now: t0}
	store := memory.NewStore()
	service := app.NewServiceWithClock(store, store, memory.NewAttemptStore(), memory.NewDraftStore(), clock.Now)

	cfg := config.Auth{Secret: "test-secret", TokenTTL: "24h"}
	cfg.Teacher.Name = "Teacher"
	cfg.Teacher.Mobile = "9137831800"
	cfg.Students = []config.Student{{Name: "Pratibha", StudentID: "mongodb"}}
	authenticator := auth.NewAuthenticator(cfg)

	srv := NewServer(service, authenticator, Options{})
	srv.ws.tick = 5 * time.Millisecond
	server := httptest.NewServer(srv.Handler())
	t.Cleanup(server.Close)

	return &testEnv{
		server:  server,
		service: service,
		auth:    authenticator,
		clock:   clock,
		teacher: domain.Identity{Role: domain.RoleTeacher, Name: "Teacher", Mobile: "9137831800"},
		student: domain.Identity{Role: domain.RoleStudent, Name: "Pratibha", StudentID: "mongodb"},
	}
}

func (e *testEnv) token(t *testing.T, id domain.Identity) string {
	t.Helper()
	token, err := e.auth.Issue(id)
	require.NoError(t, err)
	return token
}

func (e *testEnv) createAssignment(t *testing.T, kind domain.Kind, deadline time.Time, limit *int) domain.Assignment {
	t.Helper()
	a, err := e.service.CreateAssignment(context.Background(), e.teacher, domain.NewAssignment{
		Title:       "Essay " + string(kind),
		Description: "Write about Go",
		Kind:        kind,
		VisibleFrom: t0.Add(-time.Hour),
		Deadline:    deadline,
		TimeLimit:   limit,
	})
	require.NoError(t, err)
	return a
}

type envelope struct {
	Status  string            `json:"status"`
	Data    json.RawMessage   `json:"data"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func intPtr(v int) *int {
	return &v
}
