package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/studyflow/studyflow/internal/flashcard"
	"github.com/studyflow/studyflow/internal/quiz"
)

// Cached artifacts expire well before a regeneration could matter; the
// cache only exists so a session restart does not refetch the set.
const artifactTTL = time.Hour

const maxNotices = 50

type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func NewFromClient(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

func quizKey(jobID string) string       { return "artifacts:quiz:" + jobID }
func flashcardsKey(jobID string) string { return "artifacts:flashcards:" + jobID }
func noticesKey(userID uint64) string   { return fmt.Sprintf("notices:%d", userID) }

func (s *Store) CacheQuiz(ctx context.Context, jobID string, qs []quiz.Question) error {
	b, err := json.Marshal(qs)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, quizKey(jobID), b, artifactTTL).Err()
}

func (s *Store) GetQuiz(ctx context.Context, jobID string) ([]quiz.Question, bool, error) {
	b, err := s.rdb.Get(ctx, quizKey(jobID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var qs []quiz.Question
	if err := json.Unmarshal(b, &qs); err != nil {
		return nil, false, err
	}
	return qs, true, nil
}

func (s *Store) CacheFlashcards(ctx context.Context, jobID string, cards []flashcard.Card) error {
	b, err := json.Marshal(cards)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, flashcardsKey(jobID), b, artifactTTL).Err()
}

func (s *Store) GetFlashcards(ctx context.Context, jobID string) ([]flashcard.Card, bool, error) {
	b, err := s.rdb.Get(ctx, flashcardsKey(jobID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var cards []flashcard.Card
	if err := json.Unmarshal(b, &cards); err != nil {
		return nil, false, err
	}
	return cards, true, nil
}

// Notice is a dismissible line surfaced to the user when a job finishes
// or fails between two polls.
type Notice struct {
	JobID     string    `json:"job_id"`
	Title     string    `json:"title"`
	Kind      string    `json:"kind"` // completed | failed
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Store) PushNotice(ctx context.Context, userID uint64, n Notice) error {
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	key := noticesKey(userID)
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, key, b)
	pipe.LTrim(ctx, key, 0, maxNotices-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) Notices(ctx context.Context, userID uint64) ([]Notice, error) {
	vals, err := s.rdb.LRange(ctx, noticesKey(userID), 0, maxNotices-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Notice, 0, len(vals))
	for _, v := range vals {
		var n Notice
		if err := json.Unmarshal([]byte(v), &n); err != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *Store) ClearNotices(ctx context.Context, userID uint64) error {
	return s.rdb.Del(ctx, noticesKey(userID)).Err()
}
