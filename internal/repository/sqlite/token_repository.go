package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"blog-api/internal/repository"
)

const createTokenBlacklistTable = `
CREATE TABLE IF NOT EXISTS token_blacklist (
	jti TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL,
	expires_at DATETIME NOT NULL,
	blacklisted_at DATETIME NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
`

type TokenBlacklistRepository struct {
	db *sql.DB
}

func NewTokenBlacklistRepository(db *sql.DB) repository.TokenBlacklistRepository {
	return &TokenBlacklistRepository{db: db}
}

func (r *TokenBlacklistRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTokenBlacklistTable); err != nil {
		return fmt.Errorf("create token_blacklist table: %w", err)
	}
	return nil
}

// Add is idempotent: blacklisting the same jti twice is not an error.
func (r *TokenBlacklistRepository) Add(ctx context.Context, jti string, userID int64, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO token_blacklist (jti, user_id, expires_at, blacklisted_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(jti) DO NOTHING`,
		jti,
		userID,
		expiresAt.UTC(),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (r *TokenBlacklistRepository) Contains(ctx context.Context, jti string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM token_blacklist WHERE jti = ?`, jti).Scan(&n); err != nil {
		return false, fmt.Errorf("lookup blacklisted token: %w", err)
	}
	return n > 0, nil
}
