package domain

import "time"

// Comment is a user's remark on an article, newest first when listed.
type Comment struct {
	ID          string
	ArticleID   string
	UserID      int64
	Comment     string
	CreatedDate time.Time
}

// CommentView is a comment as embedded in an article view.
type CommentView struct {
	ID          string
	Username    string
	Comment     string
	CreatedDate time.Time
}

// Like records that a user liked an article. (ArticleID, UserID) is unique.
type Like struct {
	ID          string
	ArticleID   string
	UserID      int64
	CreatedDate time.Time
}

// Share records one share of an article; repeats are kept.
type Share struct {
	ID         string
	ArticleID  string
	UserID     int64
	SharedDate time.Time
}
