package memo

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

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/me/memos", h.create)
	rg.GET("/me/memos", h.listMine)
	rg.PATCH("/me/memos/:id", h.update)
	rg.DELETE("/me/memos/:id", h.delete)
}

type createReq struct {
	TargetType  string `json:"target_type"`
	TargetID    int64  `json:"target_id"`
	MemoText    string `json:"memo_text"`
	SpoilerFlag bool   `json:"spoiler_flag"`
	Visibility  string `json:"visibility"`
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

	req.MemoText = strings.TrimSpace(req.MemoText)
	if req.MemoText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "memo_text required"})
		return
	}

	visibility := models.VisibilityPrivate
	if v := strings.TrimSpace(req.Visibility); v != "" {
		parsed, ok := models.ParseVisibility(v)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid visibility"})
			return
		}
		visibility = parsed
	}

	created, err := h.Repo.Create(c.Request.Context(), claims.UserID, kind, req.TargetID, models.Memo{
		MemoText:    req.MemoText,
		SpoilerFlag: req.SpoilerFlag,
		Visibility:  visibility,
	})
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) listMine(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var (
		kind     *models.TargetType
		targetID int64
	)
	if raw := strings.TrimSpace(c.Query("target_type")); raw != "" {
		parsed, ok := models.ParseTargetType(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target_type"})
			return
		}
		kind = &parsed

		id, err := strconv.ParseInt(strings.TrimSpace(c.Query("target_id")), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target_id"})
			return
		}
		targetID = id
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, err := h.Repo.ListMine(c.Request.Context(), claims.UserID, kind, targetID, limit, offset)
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

type updateReq struct {
	MemoText    *string `json:"memo_text"`
	SpoilerFlag *bool   `json:"spoiler_flag"`
	Visibility  *string `json:"visibility"`
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
	if req.MemoText != nil {
		trimmed := strings.TrimSpace(*req.MemoText)
		if trimmed == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "memo_text cannot be empty"})
			return
		}
		patch.MemoText = &trimmed
	}
	patch.SpoilerFlag = req.SpoilerFlag
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
