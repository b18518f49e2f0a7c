package history

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&QuizAttempt{}, &ReviewPass{})
}

func (r *Repo) CreateQuizAttempt(ctx context.Context, a *QuizAttempt) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// ListQuizAttempts returns attempts in DESC creation order (newest first).
func (r *Repo) ListQuizAttempts(ctx context.Context, userID uint64, limit int) ([]QuizAttempt, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var out []QuizAttempt
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) CreateReviewPass(ctx context.Context, p *ReviewPass) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repo) ListReviewPasses(ctx context.Context, userID uint64, limit int) ([]ReviewPass, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var out []ReviewPass
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
