package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"blog-api/internal/repository"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// ErrInvalidToken is returned for malformed, expired, revoked or mistyped tokens.
var ErrInvalidToken = errors.New("token is invalid or expired")

// TokenPair is issued on login.
type TokenPair struct {
	Access  string
	Refresh string
}

// TokenClaims are the claims carried by every issued token.
type TokenClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID returns the subject as a user id.
func (c *TokenClaims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// TokenService issues and verifies signed access and refresh tokens.
type TokenService interface {
	Issue(userID int64) (TokenPair, error)
	ParseAccess(token string) (*TokenClaims, error)
	Refresh(ctx context.Context, refresh string) (string, error)
	Blacklist(ctx context.Context, refresh string) error
}

type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type tokenService struct {
	cfg       TokenConfig
	blacklist repository.TokenBlacklistRepository
	now       func() time.Time
}

func NewTokenService(cfg TokenConfig, blacklist repository.TokenBlacklistRepository) TokenService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 24 * time.Hour
	}
	return &tokenService{
		cfg:       cfg,
		blacklist: blacklist,
		now:       time.Now,
	}
}

func (s *tokenService) Issue(userID int64) (TokenPair, error) {
	refresh, err := s.sign(userID, tokenTypeRefresh, s.cfg.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	access, err := s.sign(userID, tokenTypeAccess, s.cfg.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *tokenService) ParseAccess(token string) (*TokenClaims, error) {
	return s.parse(token, tokenTypeAccess)
}

func (s *tokenService) Refresh(ctx context.Context, refresh string) (string, error) {
	claims, err := s.parse(refresh, tokenTypeRefresh)
	if err != nil {
		return "", err
	}
	revoked, err := s.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", ErrInvalidToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return "", err
	}
	return s.sign(userID, tokenTypeAccess, s.cfg.AccessTTL)
}

func (s *tokenService) Blacklist(ctx context.Context, refresh string) error {
	claims, err := s.parse(refresh, tokenTypeRefresh)
	if err != nil {
		return err
	}
	userID, err := claims.UserID()
	if err != nil {
		return err
	}
	return s.blacklist.Add(ctx, claims.ID, userID, claims.ExpiresAt.Time)
}

func (s *tokenService) sign(userID int64, typ string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := TokenClaims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (s *tokenService) parse(token, typ string) (*TokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Type != typ || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
