package unit

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
	rg.GET("/titles/:id/units", h.listByTitle)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/titles/:id/units", h.create)
	rg.PATCH("/units/:id", h.patchSortOrder)
}

type createReq struct {
	UnitType    string `json:"unit_type"`
	UnitKey     string `json:"unit_key"`
	DisplayName string `json:"display_name"`
	SortOrder   *int   `json:"sort_order"`
	ReleaseDate string `json:"release_date"`
	CharacterID *int64 `json:"character_id"`
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

	unitType, ok := models.ParseUnitType(req.UnitType)
	if !ok {
		apperr.JSON(c, apperr.Invalid("invalid unit type: %s", req.UnitType))
		return
	}
	unitKey := strings.TrimSpace(req.UnitKey)
	if unitKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unit_key required"})
		return
	}

	created, err := h.Repo.Create(c.Request.Context(), models.Unit{
		TitleID:     titleID,
		UnitType:    unitType,
		UnitKey:     unitKey,
		DisplayName: strings.TrimSpace(req.DisplayName),
		SortOrder:   req.SortOrder,
		ReleaseDate: strings.TrimSpace(req.ReleaseDate),
		CharacterID: req.CharacterID,
		CreatedBy:   claims.UserID,
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

	var unitType *models.UnitType
	if raw := c.Query("type"); raw != "" {
		parsed, ok := models.ParseUnitType(raw)
		if !ok {
			apperr.JSON(c, apperr.Invalid("invalid unit type: %s", raw))
			return
		}
		unitType = &parsed
	}

	items, err := h.Repo.ListByTitle(c.Request.Context(), titleID, unitType)
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

type patchReq struct {
	SortOrder *int `json:"sort_order"`
}

func (h *Handler) patchSortOrder(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	unitID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req patchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updated, err := h.Repo.PatchSortOrder(c.Request.Context(), unitID, req.SortOrder)
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
