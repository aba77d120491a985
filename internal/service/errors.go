package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrArticleNotFound is returned for missing articles and for articles the
	// caller is not allowed to see.
	ErrArticleNotFound = errors.New("article not found")
	// ErrForbidden is returned when a visible article is mutated by a non-owner.
	ErrForbidden = errors.New("you do not have permission to perform this action")
	// ErrAlreadyLiked is returned when the user has already liked the article.
	ErrAlreadyLiked = errors.New("already liked this article")
)

// ValidationError carries field level messages for malformed input.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg against field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// OrNil returns e when it holds at least one message.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
