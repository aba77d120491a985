package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

type EngagementResponse struct {
	ID          string  `json:"id"`
	Article     string  `json:"article"`
	User        string  `json:"user"`
	Comment     *string `json:"comment,omitempty"`
	CreatedDate *string `json:"created_date,omitempty"`
	SharedDate  *string `json:"shared_date,omitempty"`
}

func (h *Handler) addComment(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}
	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}

	user := currentUser(c)
	comment, err := h.engagement.AddComment(c.Request.Context(), user, id, req.Comment)
	if err != nil {
		h.writeError(c, err)
		return
	}

	created := comment.CreatedDate.Format(time.RFC3339)
	c.JSON(http.StatusCreated, EngagementResponse{
		ID:          comment.ID,
		Article:     comment.ArticleID,
		User:        user.Username,
		Comment:     &comment.Comment,
		CreatedDate: &created,
	})
}

func (h *Handler) addLike(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	user := currentUser(c)
	like, err := h.engagement.AddLike(c.Request.Context(), user, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	created := like.CreatedDate.Format(time.RFC3339)
	c.JSON(http.StatusCreated, EngagementResponse{
		ID:          like.ID,
		Article:     like.ArticleID,
		User:        user.Username,
		CreatedDate: &created,
	})
}

func (h *Handler) addShare(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	user := currentUser(c)
	share, err := h.engagement.AddShare(c.Request.Context(), user, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	shared := share.SharedDate.Format(time.RFC3339)
	c.JSON(http.StatusCreated, EngagementResponse{
		ID:         share.ID,
		Article:    share.ArticleID,
		User:       user.Username,
		SharedDate: &shared,
	})
}
