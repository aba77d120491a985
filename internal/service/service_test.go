package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"blog-api/internal/domain"
	"blog-api/internal/repository"
	"blog-api/internal/repository/sqlite"
)

type fixture struct {
	users      UserService
	articles   ArticleService
	engagement EngagementService
	tokens     TokenService

	articleRepo    repository.ArticleRepository
	engagementRepo repository.EngagementRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "service.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	userRepo := sqlite.NewUserRepository(db)
	articleRepo := sqlite.NewArticleRepository(db)
	engagementRepo := sqlite.NewEngagementRepository(db)
	tokenRepo := sqlite.NewTokenBlacklistRepository(db)
	if err := sqlite.Init(context.Background(), userRepo, articleRepo, engagementRepo, tokenRepo); err != nil {
		t.Fatalf("init: %v", err)
	}

	return &fixture{
		users:          NewUserService(userRepo),
		articles:       NewArticleService(articleRepo),
		engagement:     NewEngagementService(articleRepo, engagementRepo),
		tokens:         NewTokenService(TokenConfig{Secret: "test-secret"}, tokenRepo),
		articleRepo:    articleRepo,
		engagementRepo: engagementRepo,
	}
}

func (f *fixture) register(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), name, name+"@example.com", "password123")
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return u
}

func boolPtr(v bool) *bool { return &v }

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.register(t, "alice")
	if u.PasswordHash != "" {
		t.Fatalf("registered user leaks password hash")
	}

	if _, err := f.users.Authenticate(ctx, "alice", "password123"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if _, err := f.users.Authenticate(ctx, "alice", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, err := f.users.Authenticate(ctx, "nobody", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: got %v", err)
	}

	_, err := f.users.Register(ctx, "alice", "another@example.com", "password123")
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Fields["username"]) == 0 {
		t.Fatalf("duplicate username: got %v", err)
	}
	_, err = f.users.Register(ctx, "carol", "alice@example.com", "password123")
	if !errors.As(err, &verr) || len(verr.Fields["email"]) == 0 {
		t.Fatalf("duplicate email: got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Register(context.Background(), " ", "not-an-email", "short")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"username", "email", "password"} {
		if len(verr.Fields[field]) == 0 {
			t.Fatalf("expected message for %s, got %v", field, verr.Fields)
		}
	}
}

func TestArticleVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner")
	other := f.register(t, "other")

	private, err := f.articles.Create(ctx, owner, ArticleInput{Title: "draft", Tags: "go", Body: "b", Featured: boolPtr(false)})
	if err != nil {
		t.Fatalf("create private: %v", err)
	}
	public, err := f.articles.Create(ctx, owner, ArticleInput{Title: "post", Tags: "go", Body: "b"})
	if err != nil {
		t.Fatalf("create public: %v", err)
	}
	if !public.Featured {
		t.Fatalf("articles should default to featured")
	}

	if _, err := f.articles.Get(ctx, owner, private.ID); err != nil {
		t.Fatalf("owner get private: %v", err)
	}
	if _, err := f.articles.Get(ctx, other, private.ID); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("other get private: got %v", err)
	}
	if _, err := f.articles.Get(ctx, other, public.ID); err != nil {
		t.Fatalf("other get public: %v", err)
	}

	in := ArticleInput{Title: "hijack", Tags: "x", Body: "x"}
	if _, err := f.articles.Update(ctx, other, public.ID, in); !errors.Is(err, ErrForbidden) {
		t.Fatalf("other update public: got %v", err)
	}
	if _, err := f.articles.Update(ctx, other, private.ID, in); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("other update private: got %v", err)
	}
	if err := f.articles.Delete(ctx, other, public.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("other delete public: got %v", err)
	}

	featured, err := f.articles.ListFeatured(ctx, domain.ArticleFilter{})
	if err != nil {
		t.Fatalf("list featured: %v", err)
	}
	if len(featured) != 1 || featured[0].ID != public.ID {
		t.Fatalf("featured listing = %+v", featured)
	}

	mine, err := f.articles.ListMine(ctx, other)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 0 {
		t.Fatalf("other owns nothing, got %d", len(mine))
	}
}

func TestArticleUpdateKeepsFeaturedWhenOmitted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner")

	a, err := f.articles.Create(ctx, owner, ArticleInput{Title: "t", Tags: "g", Body: "b", Featured: boolPtr(false)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := f.articles.Update(ctx, owner, a.ID, ArticleInput{Title: "t2", Tags: "g2", Body: "b2"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Featured || updated.Title != "t2" || !updated.PublishedDate.Equal(a.PublishedDate) {
		t.Fatalf("unexpected update result %+v", updated)
	}

	_, err = f.articles.Update(ctx, owner, a.ID, ArticleInput{Title: "", Tags: "g", Body: "b"})
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Fields["title"]) == 0 {
		t.Fatalf("expected title validation error, got %v", err)
	}
}

func TestParseArticleFilter(t *testing.T) {
	f, err := ParseArticleFilter(" news ", "2024-01-01")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Tags != "news" || f.PublishedDate != "2024-01-01" {
		t.Fatalf("filter = %+v", f)
	}

	_, err = ParseArticleFilter("", "01/01/2024")
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Fields["published_date"]) == 0 {
		t.Fatalf("expected date validation error, got %v", err)
	}
}

func TestLikeFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	u2 := f.register(t, "u2")

	a, err := f.articles.Create(ctx, u1, ArticleInput{Title: "A", Tags: "tech,news", Body: "b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.CommentsCount != 0 || a.LikesCount != 0 || a.SharesCount != 0 {
		t.Fatalf("fresh article has counts %+v", a)
	}

	if _, err := f.engagement.AddLike(ctx, u2, a.ID); err != nil {
		t.Fatalf("first like: %v", err)
	}
	if _, err := f.engagement.AddLike(ctx, u2, a.ID); !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("second like: got %v", err)
	}

	view, err := f.articles.Get(ctx, u2, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.LikesCount != 1 {
		t.Fatalf("likes = %d, want 1", view.LikesCount)
	}

	if err := f.articles.Delete(ctx, u1, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.articles.Get(ctx, u2, a.ID); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("get after delete: got %v", err)
	}
	if _, err := f.engagement.AddLike(ctx, u2, a.ID); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("like after delete: got %v", err)
	}
}

func TestCommentsAndShares(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner")
	other := f.register(t, "other")

	a, err := f.articles.Create(ctx, owner, ArticleInput{Title: "A", Tags: "t", Body: "b", Featured: boolPtr(false)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.engagement.AddComment(ctx, other, a.ID, "nice"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if _, err := f.engagement.AddComment(ctx, other, a.ID, "   "); err == nil {
		t.Fatalf("expected validation error for blank comment")
	}
	if _, err := f.engagement.AddComment(ctx, other, "missing", "x"); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("comment on missing: got %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := f.engagement.AddShare(ctx, other, a.ID); err != nil {
			t.Fatalf("share #%d: %v", i, err)
		}
	}

	view, err := f.articles.Get(ctx, owner, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.CommentsCount != 1 || view.SharesCount != 2 {
		t.Fatalf("counts = %d comments, %d shares", view.CommentsCount, view.SharesCount)
	}
	if len(view.Comments) != 1 || view.Comments[0].Username != "other" {
		t.Fatalf("comments = %+v", view.Comments)
	}
}

// racingLikes simulates a duplicate that lands between the existence
// check and the insert.
type racingLikes struct {
	repository.EngagementRepository
}

func (racingLikes) LikeExists(context.Context, string, int64) (bool, error) { return false, nil }

func (racingLikes) CreateLike(context.Context, *domain.Like) error {
	return &repository.ConflictError{Field: "article_id", Err: errors.New("UNIQUE constraint failed")}
}

func TestAddLikeTranslatesConstraintViolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner")
	a, err := f.articles.Create(ctx, owner, ArticleInput{Title: "A", Tags: "t", Body: "b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	svc := NewEngagementService(f.articleRepo, racingLikes{f.engagementRepo})
	if _, err := svc.AddLike(ctx, owner, a.ID); !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("expected ErrAlreadyLiked, got %v", err)
	}
}

func TestTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice")

	pair, err := f.tokens.Issue(u.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := f.tokens.ParseAccess(pair.Access)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if id, _ := claims.UserID(); id != u.ID {
		t.Fatalf("subject = %d, want %d", id, u.ID)
	}
	if _, err := f.tokens.ParseAccess(pair.Refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh accepted as access: %v", err)
	}
	if _, err := f.tokens.Refresh(ctx, pair.Access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access accepted as refresh: %v", err)
	}

	access, err := f.tokens.Refresh(ctx, pair.Refresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := f.tokens.ParseAccess(access); err != nil {
		t.Fatalf("parse refreshed access: %v", err)
	}

	if err := f.tokens.Blacklist(ctx, pair.Refresh); err != nil {
		t.Fatalf("blacklist: %v", err)
	}
	if _, err := f.tokens.Refresh(ctx, pair.Refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh after blacklist: got %v", err)
	}

	other := NewTokenService(TokenConfig{Secret: "other-secret"}, nil)
	if _, err := other.ParseAccess(pair.Access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign signature accepted: %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "s", AccessTTL: time.Minute}, nil).(*tokenService)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	pair, err := svc.Issue(1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	svc.now = time.Now
	if _, err := svc.ParseAccess(pair.Access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token accepted: %v", err)
	}
}
