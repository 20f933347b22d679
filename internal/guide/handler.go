package guide

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
	rg.GET("/guides", h.listPublic)
	rg.GET("/guides/:id", h.detail)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/guides", h.create)
	rg.PATCH("/guides/:id", h.update)
	rg.DELETE("/guides/:id", h.delete)
}

type createReq struct {
	TargetType string `json:"target_type"`
	TargetID   int64  `json:"target_id"`
	GuideTitle string `json:"guide_title"`
	Content    string `json:"content"`
	Visibility string `json:"visibility"`
}

func (h *Handler) create(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	kind, ok := models.ParseTargetType(strings.TrimSpace(req.TargetType))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target_type"})
		return
	}
	if req.TargetID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target_id"})
		return
	}

	req.GuideTitle = strings.TrimSpace(req.GuideTitle)
	if req.GuideTitle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guide_title required"})
		return
	}

	visibility := models.VisibilityPublic
	if v := strings.TrimSpace(req.Visibility); v != "" {
		parsed, ok := models.ParseVisibility(v)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid visibility"})
			return
		}
		visibility = parsed
	}

	created, err := h.Repo.Create(c.Request.Context(), claims.UserID, kind, req.TargetID, models.Guide{
		GuideTitle: req.GuideTitle,
		Content:    req.Content,
		Visibility: visibility,
	})
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) listPublic(c *gin.Context) {
	kind, ok := models.ParseTargetType(strings.TrimSpace(c.Query("target_type")))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target_type"})
		return
	}
	targetID, err := strconv.ParseInt(strings.TrimSpace(c.Query("target_id")), 10, 64)
	if err != nil || targetID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target_id"})
		return
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, err := h.Repo.ListPublic(c.Request.Context(), kind, targetID, limit, offset)
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

func (h *Handler) detail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	g, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		apperr.JSON(c, err)
		return
	}
	if g == nil || g.Status != models.StatusActive || g.Visibility != models.VisibilityPublic {
		c.JSON(http.StatusNotFound, gin.H{"error": "guide not found"})
		return
	}

	c.JSON(http.StatusOK, g)
}

type updateReq struct {
	GuideTitle *string `json:"guide_title"`
	Content    *string `json:"content"`
	Visibility *string `json:"visibility"`
}

func (h *Handler) update(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var patch Patch
	if req.GuideTitle != nil {
		trimmed := strings.TrimSpace(*req.GuideTitle)
		if trimmed == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "guide_title cannot be empty"})
			return
		}
		patch.GuideTitle = &trimmed
	}
	patch.Content = req.Content
	if req.Visibility != nil {
		parsed, ok := models.ParseVisibility(strings.TrimSpace(*req.Visibility))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid visibility"})
			return
		}
		patch.Visibility = &parsed
	}

	updated, err := h.Repo.Update(c.Request.Context(), claims.UserID, id, patch)
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *Handler) delete(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.Repo.Delete(c.Request.Context(), claims.UserID, id); err != nil {
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
