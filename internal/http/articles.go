package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"blog-api/internal/domain"
	"blog-api/internal/service"
)

type articleRequest struct {
	Title    string `json:"title" binding:"required,max=250"`
	Tags     string `json:"tags" binding:"required,max=250"`
	Body     string `json:"body" binding:"required"`
	Featured *bool  `json:"featured"`
}

func (r articleRequest) input() service.ArticleInput {
	return service.ArticleInput{
		Title:    r.Title,
		Tags:     r.Tags,
		Body:     r.Body,
		Featured: r.Featured,
	}
}

// articleUpdateRequest carries no binding rules: the article is resolved and
// authorized before its fields are validated by the service.
type articleUpdateRequest struct {
	Title    string `json:"title"`
	Tags     string `json:"tags"`
	Body     string `json:"body"`
	Featured *bool  `json:"featured"`
}

func (r articleUpdateRequest) input() service.ArticleInput {
	return service.ArticleInput(r)
}

type UserResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type CommentResponse struct {
	User        string `json:"user"`
	Comment     string `json:"comment"`
	CreatedDate string `json:"created_date"`
}

type ArticleResponse struct {
	ID            string            `json:"id"`
	User          UserResponse      `json:"user"`
	Title         string            `json:"title"`
	Tags          string            `json:"tags"`
	Body          string            `json:"body"`
	Featured      bool              `json:"featured"`
	PublishedDate string            `json:"published_date"`
	UpdatedDate   string            `json:"updated_date"`
	CommentsCount int               `json:"comments_count"`
	LikesCount    int               `json:"likes_count"`
	SharesCount   int               `json:"shares_count"`
	Comments      []CommentResponse `json:"comments"`
}

func (h *Handler) listFeatured(c *gin.Context) {
	filter, err := service.ParseArticleFilter(c.Query("tags"), c.Query("published_date"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	views, err := h.articles.ListFeatured(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if len(views) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No featured articles."})
		return
	}
	c.JSON(http.StatusOK, articlesToResponse(views))
}

func (h *Handler) listMine(c *gin.Context) {
	views, err := h.articles.ListMine(c.Request.Context(), currentUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if len(views) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "You have no articles."})
		return
	}
	c.JSON(http.StatusOK, articlesToResponse(views))
}

func (h *Handler) createArticle(c *gin.Context) {
	var req articleRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.articles.Create(c.Request.Context(), currentUser(c), req.input())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, articleToResponse(*view))
}

func (h *Handler) getArticle(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	view, err := h.articles.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, articleToResponse(*view))
}

func (h *Handler) updateArticle(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}
	var req articleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeBindError(c, err)
		return
	}

	view, err := h.articles.Update(c.Request.Context(), currentUser(c), id, req.input())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, articleToResponse(*view))
}

func (h *Handler) deleteArticle(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	if err := h.articles.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// articleID reads the :id path parameter. Anything that is not a UUID cannot
// name an article and is reported as not found.
func articleID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": msgArticleNotFound})
		return "", false
	}
	return id.String(), true
}

func articlesToResponse(views []domain.ArticleView) []ArticleResponse {
	resp := make([]ArticleResponse, len(views))
	for i := range views {
		resp[i] = articleToResponse(views[i])
	}
	return resp
}

func articleToResponse(view domain.ArticleView) ArticleResponse {
	resp := ArticleResponse{
		ID: view.ID,
		User: UserResponse{
			Username: view.Owner.Username,
			Email:    view.Owner.Email,
		},
		Title:         view.Title,
		Tags:          view.Tags,
		Body:          view.Body,
		Featured:      view.Featured,
		PublishedDate: view.PublishedDate.Format(time.RFC3339),
		UpdatedDate:   view.UpdatedDate.Format(time.RFC3339),
		CommentsCount: view.CommentsCount,
		LikesCount:    view.LikesCount,
		SharesCount:   view.SharesCount,
		Comments:      make([]CommentResponse, len(view.Comments)),
	}
	for i := range view.Comments {
		resp.Comments[i] = CommentResponse{
			User:        view.Comments[i].Username,
			Comment:     view.Comments[i].Comment,
			CreatedDate: view.Comments[i].CreatedDate.Format(time.RFC3339),
		}
	}
	return resp
}
