package comment

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"arcstride/internal/apperr"
	"arcstride/internal/auth"
	"arcstride/pkg/models"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/titles/:id/comments", h.listByTitle)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/titles/:id/comments", h.create)
	rg.DELETE("/comments/:id", h.delete)
}

type createReq struct {
	Body        string `json:"body"`
	SpoilerFlag bool   `json:"spoiler_flag"`
	ParentID    *int64 `json:"parent_id"`
}

func (h *Handler) create(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	titleID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body required"})
		return
	}

	created, err := h.Repo.Create(c.Request.Context(), models.Comment{
		TitleID:     titleID,
		UserID:      claims.UserID,
		Body:        req.Body,
		SpoilerFlag: req.SpoilerFlag,
		ParentID:    req.ParentID,
	})
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) listByTitle(c *gin.Context) {
	titleID, ok := parseID(c, "id")
	if !ok {
		return
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, err := h.Repo.ListByTitle(c.Request.Context(), titleID, limit, offset)
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) delete(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	commentID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.Repo.Delete(c.Request.Context(), claims.UserID, commentID); err != nil {
		apperr.JSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
