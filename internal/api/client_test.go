package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/ajramos/mailpilot/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deadURL returns the address of a server that has already shut down
func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func jsonHandler(t *testing.T, status int, v any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}
}

func TestListEmails_Success(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.StatusOK, []models.Email{
		{ID: "1", Subject: "Hello", Timestamp: "2024-03-18T09:12:00"},
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithTimeout(5*time.Second))
	emails, err := c.ListEmails(context.Background())
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, "Hello", emails[0].Subject)
}

func TestListEmails_EmptyIsNotNil(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.StatusOK, []models.Email{}))
	defer srv.Close()

	emails, err := NewClient(srv.URL).ListEmails(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, emails)
	assert.Empty(t, emails)
}

func TestListEmails_FallsBackToSnapshot(t *testing.T) {
	c := NewClient(deadURL(t), WithTimeout(2*time.Second))

	first, err := c.ListEmails(context.Background())
	require.NoError(t, err)
	second, err := c.ListEmails(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second, "snapshot fallback must be deterministic")
	for i, e := range first {
		assert.Equal(t, SnapshotID(i), e.ID)
		assert.False(t, e.IsRead)
		assert.False(t, e.Processed)
	}
	assert.Equal(t, "Q3 roadmap review moved to Thursday", first[0].Subject)
}

func TestListEmails_FallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.StatusInternalServerError, map[string]string{"detail": "db down"}))
	defer srv.Close()

	emails, err := NewClient(srv.URL).ListEmails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SnapshotID(0), emails[0].ID)
}

func TestListEmails_NoFallbackWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(deadURL(t)).ListEmails(ctx)
	require.Error(t, err)
	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.True(t, re.IsTransport())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListEmails_MalformedSnapshot(t *testing.T) {
	fsys := fstest.MapFS{"inbox.json": {Data: []byte("{not json")}}
	c := NewClient(deadURL(t), WithSnapshot(fsys, "inbox.json"))

	_, err := c.ListEmails(context.Background())
	assert.ErrorIs(t, err, ErrFallbackExhausted)
}

func TestListEmails_MissingSnapshot(t *testing.T) {
	c := NewClient(deadURL(t), WithSnapshot(fstest.MapFS{}, "absent.json"))

	_, err := c.ListEmails(context.Background())
	assert.ErrorIs(t, err, ErrFallbackExhausted)
}

func TestGetEmail_SnapshotLookup(t *testing.T) {
	c := NewClient(deadURL(t))

	email, err := c.GetEmail(context.Background(), SnapshotID(2))
	require.NoError(t, err)
	assert.Equal(t, SnapshotID(2), email.ID)

	_, err = c.GetEmail(context.Background(), "6601f0c2e4b0a1b2c3d4e5f6")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, ErrFallbackExhausted)
}

func TestGetEmail_EscapesID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		jsonHandler(t, http.StatusOK, models.Email{ID: "a/b"})(w, r)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetEmail(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/api/emails/a%2Fb", gotPath)
}

func TestWriteEndpoints_DoNotFallBack(t *testing.T) {
	c := NewClient(deadURL(t))
	ctx := context.Background()
	tmpl := "t"

	checks := map[string]error{
		OpIngestEmails: c.IngestEmails(ctx),
		OpSeedPrompts:  c.SeedPrompts(ctx),
	}
	_, checks[OpListPrompts] = c.ListPrompts(ctx)
	_, checks[OpUpdatePrompt] = c.UpdatePrompt(ctx, "p1", models.PromptUpdate{Template: &tmpl})
	_, checks[OpChat] = c.Chat(ctx, models.ChatRequest{Message: "hi"})
	_, checks[OpGenerateDraft] = c.GenerateDraft(ctx, models.DraftRequest{Email: &models.Email{ID: "1"}})
	_, checks[OpListDrafts] = c.ListDrafts(ctx)
	_, checks[OpDeleteDraft] = c.DeleteDraft(ctx, "d1")

	for op, err := range checks {
		var re *RequestError
		require.ErrorAs(t, err, &re, op)
		assert.Equal(t, op, re.Op)
		assert.True(t, re.IsTransport(), op)
		assert.NotErrorIs(t, err, ErrFallbackExhausted, op)
	}
}

func TestRequestError_CarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.StatusNotFound, map[string]string{"detail": "Draft not found"}))
	defer srv.Close()

	_, err := NewClient(srv.URL).DeleteDraft(context.Background(), "d1")
	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusNotFound, re.Status)
	assert.Equal(t, http.MethodDelete, re.Method)
	assert.Equal(t, "/api/agent/drafts/d1", re.Path)
	assert.Contains(t, re.Body, "Draft not found")
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
	assert.Contains(t, err.Error(), "delete_draft")
}

func TestRequestError_DecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>proxy error</html>")
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListPrompts(context.Background())
	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusOK, re.Status)
	assert.Error(t, re.Err)
}

func TestUpdatePrompt_SendsOnlyTemplate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/prompts/p1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		jsonHandler(t, http.StatusOK, models.Prompt{ID: "p1", Template: "new"})(w, r)
	}))
	defer srv.Close()

	tmpl := "new"
	p, err := NewClient(srv.URL).UpdatePrompt(context.Background(), "p1", models.PromptUpdate{Template: &tmpl})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"template": "new"}, body)
	assert.Equal(t, "new", p.Template)
}

func TestUpdatePrompt_EmptyBodyIsZeroPrompt(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.StatusOK, map[string]any{}))
	defer srv.Close()

	tmpl := "new"
	p, err := NewClient(srv.URL).UpdatePrompt(context.Background(), "p1", models.PromptUpdate{Template: &tmpl})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Empty(t, p.ID)
}

func TestChat_RequestShape(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/agent/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		jsonHandler(t, http.StatusOK, models.ChatResponse{Response: "hello back"})(w, r)
	}))
	defer srv.Close()

	reply, err := NewClient(srv.URL).Chat(context.Background(), models.ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello back", reply)
	assert.Equal(t, map[string]any{"message": "hello"}, body)
}

func TestClient_UserAgentAndBaseURL(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", WithUserAgent("test-agent"))
	assert.Equal(t, srv.URL, c.BaseURL())
	require.NoError(t, c.IngestEmails(context.Background()))
	assert.Equal(t, "test-agent", ua)

	assert.Equal(t, DefaultBaseURL, NewClient("  ").BaseURL())
}

func TestClient_Metrics(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.StatusOK, []models.Prompt{}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	c := NewClient(srv.URL, WithMetrics(reg))
	_, err := c.ListPrompts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.requests.WithLabelValues(OpListPrompts, "200")))

	dead := NewClient(deadURL(t), WithMetrics(prometheus.NewRegistry()))
	_, err = dead.ListEmails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(dead.metrics.requests.WithLabelValues(OpListEmails, "0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(dead.metrics.fallbacks.WithLabelValues(OpListEmails, "served")))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, 0, StatusOf(errors.New("plain")))
	assert.Equal(t, 502, StatusOf(&RequestError{Status: 502}))
}
