package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"blog-api/internal/domain"
	"blog-api/internal/repository"
)

const createArticlesTable = `
CREATE TABLE IF NOT EXISTS articles (
	id TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	tags TEXT NOT NULL,
	body TEXT NOT NULL,
	featured INTEGER NOT NULL DEFAULT 1,
	published_date DATETIME NOT NULL,
	updated_date DATETIME NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_articles_user_id ON articles(user_id);
CREATE INDEX IF NOT EXISTS idx_articles_featured ON articles(featured);
`

// Counts are computed live from the child tables on every read.
const selectArticleViews = `
SELECT a.id, a.user_id, a.title, a.tags, a.body, a.featured, a.published_date, a.updated_date,
	u.username, u.email,
	(SELECT COUNT(*) FROM comments c WHERE c.article_id = a.id),
	(SELECT COUNT(*) FROM likes l WHERE l.article_id = a.id),
	(SELECT COUNT(*) FROM shares s WHERE s.article_id = a.id)
FROM articles a
JOIN users u ON u.id = a.user_id`

const orderArticles = `
ORDER BY a.updated_date DESC, a.rowid DESC`

type ArticleRepository struct {
	db *sql.DB
}

func NewArticleRepository(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createArticlesTable); err != nil {
		return fmt.Errorf("create articles table: %w", err)
	}
	return nil
}

func (r *ArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	now := time.Now().UTC()
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	article.PublishedDate = now
	article.UpdatedDate = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO articles (id, user_id, title, tags, body, featured, published_date, updated_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		article.ID,
		article.UserID,
		article.Title,
		article.Tags,
		article.Body,
		article.Featured,
		article.PublishedDate,
		article.UpdatedDate,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return conflict(err)
		}
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

// Update rewrites the client-editable columns. Owner and publish date never change.
func (r *ArticleRepository) Update(ctx context.Context, article *domain.Article) error {
	article.UpdatedDate = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE articles
SET title=?, tags=?, body=?, featured=?, updated_date=?
WHERE id=?`,
		article.Title,
		article.Tags,
		article.Body,
		article.Featured,
		article.UpdatedDate,
		article.ID,
	)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return requireAffected(res, "article")
}

// Delete removes the article; comments, likes and shares go with it via ON DELETE CASCADE.
func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return requireAffected(res, "article")
}

func (r *ArticleRepository) Get(ctx context.Context, id string) (*domain.Article, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, title, tags, body, featured, published_date, updated_date
FROM articles
WHERE id=?`,
		id,
	)

	var a domain.Article
	if err := row.Scan(&a.ID, &a.UserID, &a.Title, &a.Tags, &a.Body, &a.Featured, &a.PublishedDate, &a.UpdatedDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("article: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan article: %w", err)
	}
	return &a, nil
}

func (r *ArticleRepository) GetView(ctx context.Context, id string) (*domain.ArticleView, error) {
	row := r.db.QueryRowContext(ctx, selectArticleViews+`
WHERE a.id=?`, id)

	view, err := scanArticleView(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("article: %w", repository.ErrNotFound)
		}
		return nil, err
	}

	comments, err := queryComments(ctx, r.db, view.ID)
	if err != nil {
		return nil, err
	}
	view.Comments = comments
	return view, nil
}

func (r *ArticleRepository) FindFeatured(ctx context.Context, filter domain.ArticleFilter) ([]domain.ArticleView, error) {
	where, args := featuredPredicate(filter)
	return r.listViews(ctx, selectArticleViews+"\nWHERE "+where+orderArticles, args...)
}

func (r *ArticleRepository) FindByOwner(ctx context.Context, userID int64) ([]domain.ArticleView, error) {
	return r.listViews(ctx, selectArticleViews+"\nWHERE a.user_id = ?"+orderArticles, userID)
}

// featuredPredicate builds the WHERE clause of the featured listing.
// Tag and date conditions are alternatives: when both are given an article
// matching either one is returned.
func featuredPredicate(filter domain.ArticleFilter) (string, []any) {
	conds := []string{"a.featured = 1"}
	var (
		alts []string
		args []any
	)
	if filter.Tags != "" {
		alts = append(alts, "instr(lower(a.tags), lower(?)) > 0")
		args = append(args, filter.Tags)
	}
	if filter.PublishedDate != "" {
		alts = append(alts, "substr(a.published_date, 1, 10) = ?")
		args = append(args, filter.PublishedDate)
	}
	if len(alts) > 0 {
		conds = append(conds, "("+strings.Join(alts, " OR ")+")")
	}
	return strings.Join(conds, " AND "), args
}

func (r *ArticleRepository) listViews(ctx context.Context, query string, args ...any) ([]domain.ArticleView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}

	var views []domain.ArticleView
	for rows.Next() {
		view, err := scanArticleView(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		views = append(views, *view)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	// the pool holds a single connection: release it before loading comments.
	rows.Close()

	for i := range views {
		comments, err := queryComments(ctx, r.db, views[i].ID)
		if err != nil {
			return nil, err
		}
		views[i].Comments = comments
	}
	return views, nil
}

func scanArticleView(row scanner) (*domain.ArticleView, error) {
	var v domain.ArticleView
	if err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.Title,
		&v.Tags,
		&v.Body,
		&v.Featured,
		&v.PublishedDate,
		&v.UpdatedDate,
		&v.Owner.Username,
		&v.Owner.Email,
		&v.CommentsCount,
		&v.LikesCount,
		&v.SharesCount,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan article view: %w", err)
	}
	return &v, nil
}

func requireAffected(res sql.Result, what string) error {
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", what, err)
	}
	if aff == 0 {
		return fmt.Errorf("%s: %w", what, repository.ErrNotFound)
	}
	return nil
}
