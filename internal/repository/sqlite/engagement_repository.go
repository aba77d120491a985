package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"blog-api/internal/domain"
	"blog-api/internal/repository"
)

const createEngagementTables = `
CREATE TABLE IF NOT EXISTS comments (
	id TEXT PRIMARY KEY,
	article_id TEXT NOT NULL,
	user_id INTEGER NOT NULL,
	comment TEXT NOT NULL,
	created_date DATETIME NOT NULL,
	FOREIGN KEY(article_id) REFERENCES articles(id) ON DELETE CASCADE,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_comments_article_id ON comments(article_id);

CREATE TABLE IF NOT EXISTS likes (
	id TEXT PRIMARY KEY,
	article_id TEXT NOT NULL,
	user_id INTEGER NOT NULL,
	created_date DATETIME NOT NULL,
	UNIQUE(article_id, user_id),
	FOREIGN KEY(article_id) REFERENCES articles(id) ON DELETE CASCADE,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS shares (
	id TEXT PRIMARY KEY,
	article_id TEXT NOT NULL,
	user_id INTEGER NOT NULL,
	shared_date DATETIME NOT NULL,
	FOREIGN KEY(article_id) REFERENCES articles(id) ON DELETE CASCADE,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_shares_article_id ON shares(article_id);
`

type EngagementRepository struct {
	db *sql.DB
}

func NewEngagementRepository(db *sql.DB) repository.EngagementRepository {
	return &EngagementRepository{db: db}
}

func (r *EngagementRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createEngagementTables); err != nil {
		return fmt.Errorf("create engagement tables: %w", err)
	}
	return nil
}

func (r *EngagementRepository) CreateComment(ctx context.Context, comment *domain.Comment) error {
	comment.ID = uuid.NewString()
	comment.CreatedDate = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO comments (id, article_id, user_id, comment, created_date)
VALUES (?, ?, ?, ?, ?)`,
		comment.ID,
		comment.ArticleID,
		comment.UserID,
		comment.Comment,
		comment.CreatedDate,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("comment target: %w", repository.ErrNotFound)
		}
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *EngagementRepository) LikeExists(ctx context.Context, articleID string, userID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM likes WHERE article_id=? AND user_id=?`,
		articleID,
		userID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup like: %w", err)
	}
	return n > 0, nil
}

// CreateLike inserts the like. A duplicate (article, user) pair is rejected
// by the UNIQUE constraint and reported as repository.ErrConflict.
func (r *EngagementRepository) CreateLike(ctx context.Context, like *domain.Like) error {
	like.ID = uuid.NewString()
	like.CreatedDate = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO likes (id, article_id, user_id, created_date)
VALUES (?, ?, ?, ?)`,
		like.ID,
		like.ArticleID,
		like.UserID,
		like.CreatedDate,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return conflict(err)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("like target: %w", repository.ErrNotFound)
		}
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

func (r *EngagementRepository) CreateShare(ctx context.Context, share *domain.Share) error {
	share.ID = uuid.NewString()
	share.SharedDate = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO shares (id, article_id, user_id, shared_date)
VALUES (?, ?, ?, ?)`,
		share.ID,
		share.ArticleID,
		share.UserID,
		share.SharedDate,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("share target: %w", repository.ErrNotFound)
		}
		return fmt.Errorf("insert share: %w", err)
	}
	return nil
}

func queryComments(ctx context.Context, db *sql.DB, articleID string) ([]domain.CommentView, error) {
	rows, err := db.QueryContext(ctx, `
SELECT c.id, u.username, c.comment, c.created_date
FROM comments c
JOIN users u ON u.id = c.user_id
WHERE c.article_id=?
ORDER BY c.created_date DESC, c.rowid DESC`, articleID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.CommentView{}
	for rows.Next() {
		var c domain.CommentView
		if err := rows.Scan(&c.ID, &c.Username, &c.Comment, &c.CreatedDate); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
