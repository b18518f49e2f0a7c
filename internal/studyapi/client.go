package studyapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/studyflow/studyflow/internal/flashcard"
	"github.com/studyflow/studyflow/internal/job"
	"github.com/studyflow/studyflow/internal/quiz"
)

// Client talks to the remote content service. The service owns the job
// store and the generation pipeline; this client only reads state and
// requests retries.
type Client struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type apiError struct {
	Detail string `json:"detail"`
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	if c.Client == nil {
		return errors.New("studyapi: http client is nil")
	}

	url := fmt.Sprintf("%s%s", c.BaseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e apiError
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Detail != "" {
			return fmt.Errorf("studyapi: status %d: %s", resp.StatusCode, e.Detail)
		}
		return fmt.Errorf("studyapi: status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ListJobs returns every job visible to the service token. Idempotent and
// side-effect-free, as the poller requires.
func (c *Client) ListJobs(ctx context.Context) ([]job.Job, error) {
	var jobs []job.Job
	if err := c.do(ctx, http.MethodGet, "/api/v1/jobs", &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (c *Client) GetJob(ctx context.Context, id string) (job.Job, error) {
	var j job.Job
	if err := c.do(ctx, http.MethodGet, "/api/v1/jobs/"+id, &j); err != nil {
		return job.Job{}, err
	}
	return j, nil
}

// RetryJob asks the server to restart a stuck or failed job. The server
// resets progress and status; the next poll observes the result.
func (c *Client) RetryJob(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/jobs/"+id+"/retry", nil)
}

// GetQuizQuestions is a one-shot fetch when entering an assessment
// session; it is never polled.
func (c *Client) GetQuizQuestions(ctx context.Context, jobID string) ([]quiz.Question, error) {
	var qs []quiz.Question
	if err := c.do(ctx, http.MethodGet, "/api/v1/jobs/"+jobID+"/quiz", &qs); err != nil {
		return nil, err
	}
	return qs, nil
}

// GetFlashcards is a one-shot fetch when entering a review session.
func (c *Client) GetFlashcards(ctx context.Context, jobID string) ([]flashcard.Card, error) {
	var cards []flashcard.Card
	if err := c.do(ctx, http.MethodGet, "/api/v1/jobs/"+jobID+"/flashcards", &cards); err != nil {
		return nil, err
	}
	return cards, nil
}
