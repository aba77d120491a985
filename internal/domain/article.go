package domain

import "time"

// Article is a blog entry owned by exactly one user.
type Article struct {
	ID            string
	UserID        int64
	Title         string
	Tags          string
	Body          string
	Featured      bool
	PublishedDate time.Time
	UpdatedDate   time.Time
}

// Owner is the public projection of the article author.
type Owner struct {
	Username string
	Email    string
}

// ArticleView is an article composed with its owner and live engagement counts.
type ArticleView struct {
	Article
	Owner         Owner
	CommentsCount int
	LikesCount    int
	SharesCount   int
	Comments      []CommentView
}

// ArticleFilter narrows the featured listing. Zero values mean "not set".
type ArticleFilter struct {
	Tags          string
	PublishedDate string // YYYY-MM-DD, UTC
}

// IsZero reports whether no condition is set.
func (f ArticleFilter) IsZero() bool {
	return f.Tags == "" && f.PublishedDate == ""
}
