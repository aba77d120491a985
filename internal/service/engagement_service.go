package service

import (
	"context"
	"errors"
	"strings"

	"blog-api/internal/domain"
	"blog-api/internal/repository"
)

// EngagementService records comments, likes and shares on existing articles.
// Any authenticated user may engage with any article that exists.
type EngagementService interface {
	AddComment(ctx context.Context, actor *domain.User, articleID, body string) (*domain.Comment, error)
	AddLike(ctx context.Context, actor *domain.User, articleID string) (*domain.Like, error)
	AddShare(ctx context.Context, actor *domain.User, articleID string) (*domain.Share, error)
}

type engagementService struct {
	articles   repository.ArticleRepository
	engagement repository.EngagementRepository
}

func NewEngagementService(articles repository.ArticleRepository, engagement repository.EngagementRepository) EngagementService {
	return &engagementService{
		articles:   articles,
		engagement: engagement,
	}
}

func (s *engagementService) AddComment(ctx context.Context, actor *domain.User, articleID, body string) (*domain.Comment, error) {
	if err := s.requireArticle(ctx, articleID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(body) == "" {
		verr := &ValidationError{}
		verr.Add("comment", "This field is required.")
		return nil, verr
	}

	comment := &domain.Comment{
		ArticleID: articleID,
		UserID:    actor.ID,
		Comment:   body,
	}
	if err := s.engagement.CreateComment(ctx, comment); err != nil {
		return nil, notFound(err)
	}
	return comment, nil
}

// AddLike checks for an existing like first; the store's UNIQUE(article,
// user) constraint catches the concurrent duplicate that slips past it.
func (s *engagementService) AddLike(ctx context.Context, actor *domain.User, articleID string) (*domain.Like, error) {
	if err := s.requireArticle(ctx, articleID); err != nil {
		return nil, err
	}

	exists, err := s.engagement.LikeExists(ctx, articleID, actor.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyLiked
	}

	like := &domain.Like{
		ArticleID: articleID,
		UserID:    actor.ID,
	}
	if err := s.engagement.CreateLike(ctx, like); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyLiked
		}
		return nil, notFound(err)
	}
	return like, nil
}

func (s *engagementService) AddShare(ctx context.Context, actor *domain.User, articleID string) (*domain.Share, error) {
	if err := s.requireArticle(ctx, articleID); err != nil {
		return nil, err
	}

	share := &domain.Share{
		ArticleID: articleID,
		UserID:    actor.ID,
	}
	if err := s.engagement.CreateShare(ctx, share); err != nil {
		return nil, notFound(err)
	}
	return share, nil
}

func (s *engagementService) requireArticle(ctx context.Context, id string) error {
	if _, err := s.articles.Get(ctx, id); err != nil {
		return notFound(err)
	}
	return nil
}
