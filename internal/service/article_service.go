package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"blog-api/internal/access"
	"blog-api/internal/domain"
	"blog-api/internal/repository"
)

const maxCharField = 250

// ArticleInput carries the client-editable fields of an article. A nil
// Featured keeps the current value on update and defaults to true on create.
type ArticleInput struct {
	Title    string
	Tags     string
	Body     string
	Featured *bool
}

// ArticleService implements article CRUD gated by ownership, and the
// aggregated read views.
type ArticleService interface {
	ListFeatured(ctx context.Context, filter domain.ArticleFilter) ([]domain.ArticleView, error)
	ListMine(ctx context.Context, actor *domain.User) ([]domain.ArticleView, error)
	Create(ctx context.Context, actor *domain.User, in ArticleInput) (*domain.ArticleView, error)
	Get(ctx context.Context, actor *domain.User, id string) (*domain.ArticleView, error)
	Update(ctx context.Context, actor *domain.User, id string, in ArticleInput) (*domain.ArticleView, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
}

type articleService struct {
	articles repository.ArticleRepository
}

func NewArticleService(articles repository.ArticleRepository) ArticleService {
	return &articleService{articles: articles}
}

// ParseArticleFilter validates the query parameters of the featured listing.
func ParseArticleFilter(tags, publishedDate string) (domain.ArticleFilter, error) {
	filter := domain.ArticleFilter{Tags: strings.TrimSpace(tags)}
	publishedDate = strings.TrimSpace(publishedDate)
	if publishedDate != "" {
		d, err := time.Parse(time.DateOnly, publishedDate)
		if err != nil {
			verr := &ValidationError{}
			verr.Add("published_date", "Enter a valid date in YYYY-MM-DD format.")
			return domain.ArticleFilter{}, verr
		}
		filter.PublishedDate = d.Format(time.DateOnly)
	}
	return filter, nil
}

func (s *articleService) ListFeatured(ctx context.Context, filter domain.ArticleFilter) ([]domain.ArticleView, error) {
	return s.articles.FindFeatured(ctx, filter)
}

func (s *articleService) ListMine(ctx context.Context, actor *domain.User) ([]domain.ArticleView, error) {
	return s.articles.FindByOwner(ctx, actor.ID)
}

func (s *articleService) Create(ctx context.Context, actor *domain.User, in ArticleInput) (*domain.ArticleView, error) {
	if err := validateArticle(in); err != nil {
		return nil, err
	}

	article := &domain.Article{
		UserID:   actor.ID,
		Title:    strings.TrimSpace(in.Title),
		Tags:     strings.TrimSpace(in.Tags),
		Body:     in.Body,
		Featured: true,
	}
	if in.Featured != nil {
		article.Featured = *in.Featured
	}

	if err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}
	return s.articles.GetView(ctx, article.ID)
}

func (s *articleService) Get(ctx context.Context, actor *domain.User, id string) (*domain.ArticleView, error) {
	article, err := s.authorize(ctx, actor, id, access.OpRead)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, article.ID)
}

func (s *articleService) Update(ctx context.Context, actor *domain.User, id string, in ArticleInput) (*domain.ArticleView, error) {
	article, err := s.authorize(ctx, actor, id, access.OpUpdate)
	if err != nil {
		return nil, err
	}
	if err := validateArticle(in); err != nil {
		return nil, err
	}

	article.Title = strings.TrimSpace(in.Title)
	article.Tags = strings.TrimSpace(in.Tags)
	article.Body = in.Body
	if in.Featured != nil {
		article.Featured = *in.Featured
	}
	if err := s.articles.Update(ctx, article); err != nil {
		return nil, notFound(err)
	}
	return s.view(ctx, article.ID)
}

func (s *articleService) Delete(ctx context.Context, actor *domain.User, id string) error {
	article, err := s.authorize(ctx, actor, id, access.OpDelete)
	if err != nil {
		return err
	}
	return notFound(s.articles.Delete(ctx, article.ID))
}

// authorize loads the article and runs the access gate. Articles the actor
// may not see are indistinguishable from missing ones.
func (s *articleService) authorize(ctx context.Context, actor *domain.User, id string, op access.Operation) (*domain.Article, error) {
	article, err := s.articles.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	decision := access.Authorize(actor.ID, *article, op)
	if decision.Allowed {
		return article, nil
	}
	if decision.Reason == access.ReasonNotVisible {
		return nil, ErrArticleNotFound
	}
	return nil, ErrForbidden
}

func (s *articleService) view(ctx context.Context, id string) (*domain.ArticleView, error) {
	view, err := s.articles.GetView(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return view, nil
}

func validateArticle(in ArticleInput) error {
	verr := &ValidationError{}
	checkChar := func(field, value string) {
		value = strings.TrimSpace(value)
		switch {
		case value == "":
			verr.Add(field, "This field is required.")
		case len([]rune(value)) > maxCharField:
			verr.Add(field, "Ensure this field has no more than 250 characters.")
		}
	}
	checkChar("title", in.Title)
	checkChar("tags", in.Tags)
	if strings.TrimSpace(in.Body) == "" {
		verr.Add("body", "This field is required.")
	}
	return verr.OrNil()
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrArticleNotFound
	}
	return err
}
