package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"blog-api/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users      service.UserService
	tokens     service.TokenService
	articles   service.ArticleService
	engagement service.EngagementService
	logger     *logrus.Logger
}

func NewHandler(users service.UserService, tokens service.TokenService, articles service.ArticleService, engagement service.EngagementService, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:      users,
		tokens:     tokens,
		articles:   articles,
		engagement: engagement,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	useJSONFieldNames()
	router.Use(corsMiddleware())
	router.Use(requestLogger(h.logger))

	router.GET("/api/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	account := router.Group("/api/account")
	{
		account.POST("/register/", h.register)
		account.POST("/login/", h.login)
		account.POST("/token/obtain/", h.login)
		account.POST("/token/refresh/", h.refreshToken)
		account.POST("/token/blacklist/", h.blacklistToken)
	}

	blog := router.Group("/", h.authMiddleware())
	{
		blog.GET("/featured-articles/", h.listFeatured)
		blog.GET("/articles/", h.listMine)
		blog.POST("/articles/", h.createArticle)
		blog.GET("/article/:id/", h.getArticle)
		blog.PUT("/article/:id/", h.updateArticle)
		blog.DELETE("/article/:id/", h.deleteArticle)
		blog.POST("/articles/:id/comment/", h.addComment)
		blog.POST("/articles/:id/like/", h.addLike)
		blog.POST("/articles/:id/share/", h.addShare)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
