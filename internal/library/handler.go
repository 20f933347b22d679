package library

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"arcstride/internal/apperr"
	"arcstride/internal/auth"
	"arcstride/internal/sync"
	"arcstride/pkg/models"
)

type Handler struct {
	Repo *Repo
	Hub  *sync.Hub
}

func NewHandler(repo *Repo, hub *sync.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/stores", h.listStores)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.PUT("/me/library/titles/:id", h.upsert)
	rg.GET("/me/library/titles/:id", h.get)
	rg.DELETE("/me/library/titles/:id", h.delete)
	rg.GET("/me/library", h.list)
}

type upsertReq struct {
	StoreID         int64  `json:"store_id"`
	AcquisitionType string `json:"acquisition_type"`
	Note            string `json:"note"`
}

func (h *Handler) upsert(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	titleID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req upsertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.StoreID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "store_id required"})
		return
	}

	acquisition := models.AcquisitionPurchase
	if v := strings.TrimSpace(req.AcquisitionType); v != "" {
		parsed, ok := models.ParseAcquisitionType(v)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid acquisition_type"})
			return
		}
		acquisition = parsed
	}

	saved, err := h.Repo.Upsert(c.Request.Context(), models.LibraryItem{
		UserID:          claims.UserID,
		TitleID:         titleID,
		StoreID:         req.StoreID,
		AcquisitionType: acquisition,
		Note:            strings.TrimSpace(req.Note),
	})
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	if h.Hub != nil {
		h.Hub.Broadcast(sync.LibraryUpdated(claims.UserID, titleID))
	}

	c.JSON(http.StatusOK, saved)
}

func (h *Handler) get(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	titleID, ok := parseID(c, "id")
	if !ok {
		return
	}

	item, err := h.Repo.Get(c.Request.Context(), claims.UserID, titleID)
	if err != nil {
		apperr.JSON(c, err)
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "library item not found"})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var titleType *models.TitleType
	if raw := strings.TrimSpace(c.Query("type")); raw != "" {
		parsed, ok := models.ParseTitleType(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid type"})
			return
		}
		titleType = &parsed
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, err := h.Repo.List(c.Request.Context(), claims.UserID, titleType, limit, offset)
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

	titleID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.Repo.Delete(c.Request.Context(), claims.UserID, titleID); err != nil {
		apperr.JSON(c, err)
		return
	}

	if h.Hub != nil {
		h.Hub.Broadcast(sync.LibraryDeleted(claims.UserID, titleID))
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) listStores(c *gin.Context) {
	stores, err := h.Repo.ListStores(c.Request.Context())
	if err != nil {
		apperr.JSON(c, err)
		return
	}
	if stores == nil {
		stores = []models.Store{}
	}
	c.JSON(http.StatusOK, gin.H{"items": stores})
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
