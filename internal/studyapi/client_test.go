package studyapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/studyflow/studyflow/internal/job"
)

func TestClient_ListJobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/jobs" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Fatalf("missing bearer token, got %q", got)
		}
		_ = json.NewEncoder(w).Encode([]job.Job{
			{ID: "j1", Status: job.StatusProcessing, Progress: 40},
			{ID: "j2", Status: job.StatusCompleted, Progress: 100},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	jobs, err := c.ListJobs(context.Background())
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID != "j1" || jobs[1].Status != job.StatusCompleted {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}
}

func TestClient_RetryJob(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if err := c.RetryJob(context.Background(), "j1"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/v1/jobs/j1/retry" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
}

func TestClient_ErrorIncludesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "job is still processing"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.GetQuizQuestions(context.Background(), "j1")
	if err == nil {
		t.Fatalf("expected error for 409 response")
	}
	if got := err.Error(); got != "studyapi: status 409: job is still processing" {
		t.Fatalf("unexpected error message: %q", got)
	}
}

func TestClient_GetFlashcards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/jobs/j7/flashcards" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"id":"c1","question":"Q","answer":"A"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	cards, err := c.GetFlashcards(context.Background(), "j7")
	if err != nil {
		t.Fatalf("get flashcards: %v", err)
	}
	if len(cards) != 1 || cards[0].ID != "c1" || cards[0].Answer != "A" {
		t.Fatalf("unexpected cards: %+v", cards)
	}
}
