// Package access decides whether an identity may act on an article.
package access

import "blog-api/internal/domain"

// Operation is an action requested against a single article.
type Operation string

const (
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Reason explains a Decision.
type Reason string

const (
	ReasonOwner      Reason = "owner"
	ReasonFeatured   Reason = "featured"
	ReasonNotVisible Reason = "not_visible"
	ReasonNotOwner   Reason = "not_owner"
)

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Authorize evaluates op for actorID against article.
//
// Owners may do anything with their articles. Everybody else may only read
// featured ones. A non-owner denied on a non-featured article gets
// ReasonNotVisible, so callers can hide its existence.
func Authorize(actorID int64, article domain.Article, op Operation) Decision {
	if article.UserID == actorID {
		return Decision{Allowed: true, Reason: ReasonOwner}
	}
	if !article.Featured {
		return Decision{Allowed: false, Reason: ReasonNotVisible}
	}
	if op == OpRead {
		return Decision{Allowed: true, Reason: ReasonFeatured}
	}
	return Decision{Allowed: false, Reason: ReasonNotOwner}
}
