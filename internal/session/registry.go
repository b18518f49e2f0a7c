package session

import (
	"errors"
	"sync"

	"github.com/studyflow/studyflow/internal/flashcard"
	"github.com/studyflow/studyflow/internal/quiz"
)

var ErrNotFound = errors.New("session not found")

// Registry owns every live session. Sessions are ephemeral: they exist
// only here, are never persisted, and are dropped on exit. A session
// belonging to another user is reported as not found, not as forbidden.
type Registry struct {
	mu      sync.RWMutex
	quizzes map[string]*quiz.Session
	reviews map[string]*flashcard.Session
}

func NewRegistry() *Registry {
	return &Registry{
		quizzes: make(map[string]*quiz.Session),
		reviews: make(map[string]*flashcard.Session),
	}
}

func (r *Registry) PutQuiz(s *quiz.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizzes[s.ID] = s
}

func (r *Registry) Quiz(id string, userID uint64) (*quiz.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.quizzes[id]
	if !ok || s.UserID != userID {
		return nil, ErrNotFound
	}
	return s, nil
}

func (r *Registry) DropQuiz(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.quizzes, id)
}

func (r *Registry) PutReview(s *flashcard.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews[s.ID] = s
}

func (r *Registry) Review(id string, userID uint64) (*flashcard.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.reviews[id]
	if !ok || s.UserID != userID {
		return nil, ErrNotFound
	}
	return s, nil
}

func (r *Registry) DropReview(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reviews, id)
}
