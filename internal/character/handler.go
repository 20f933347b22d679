package character

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
	rg.GET("/titles/:id/characters", h.listByTitle)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/titles/:id/characters", h.create)
}

type createReq struct {
	OriginalName string  `json:"original_name"`
	KoreanName   *string `json:"korean_name"`
	ImageURL     string  `json:"image_url"`
	IsExplicit   bool    `json:"is_explicit"`
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
	if strings.TrimSpace(req.OriginalName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "original_name required"})
		return
	}

	created, err := h.Repo.Create(c.Request.Context(), models.Character{
		TitleID:      titleID,
		OriginalName: strings.TrimSpace(req.OriginalName),
		KoreanName:   req.KoreanName,
		ImageURL:     strings.TrimSpace(req.ImageURL),
		IsExplicit:   req.IsExplicit,
		CreatedBy:    claims.UserID,
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

	items, err := h.Repo.ListByTitle(c.Request.Context(), titleID)
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
