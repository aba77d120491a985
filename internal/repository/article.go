package repository

import (
	"context"

	"blog-api/internal/domain"
)

// ArticleRepository exposes persistence operations for articles and their
// aggregated read views.
type ArticleRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, article *domain.Article) error
	Update(ctx context.Context, article *domain.Article) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Article, error)
	GetView(ctx context.Context, id string) (*domain.ArticleView, error)
	FindFeatured(ctx context.Context, filter domain.ArticleFilter) ([]domain.ArticleView, error)
	FindByOwner(ctx context.Context, userID int64) ([]domain.ArticleView, error)
}

// EngagementRepository stores comments, likes and shares.
type EngagementRepository interface {
	Init(ctx context.Context) error
	CreateComment(ctx context.Context, comment *domain.Comment) error
	LikeExists(ctx context.Context, articleID string, userID int64) (bool, error)
	CreateLike(ctx context.Context, like *domain.Like) error
	CreateShare(ctx context.Context, share *domain.Share) error
}
