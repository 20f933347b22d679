package progress

import (
	"net/http"
	"strconv"
	"strings"
	"time"

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

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.PUT("/me/progress/units/:id", h.upsert)
	rg.GET("/me/progress/titles/:id", h.titleSummary)
	rg.GET("/me/progress/titles/:id/units", h.listByTitle)
}

type upsertReq struct {
	Status     string  `json:"status"`
	StartedAt  *string `json:"started_at"`
	FinishedAt *string `json:"finished_at"`
}

func (h *Handler) upsert(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	unitID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req upsertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	status, ok := models.ParseProgressStatus(strings.TrimSpace(req.Status))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	startedAt, err := parseTime(req.StartedAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid started_at"})
		return
	}
	finishedAt, err := parseTime(req.FinishedAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid finished_at"})
		return
	}

	saved, err := h.Repo.Upsert(c.Request.Context(), models.UnitProgress{
		UserID:     claims.UserID,
		UnitID:     unitID,
		Status:     status,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	})
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	if h.Hub != nil {
		h.Hub.Broadcast(sync.ProgressUpdated(claims.UserID, unitID, string(saved.Status)))
	}

	c.JSON(http.StatusOK, saved)
}

func (h *Handler) titleSummary(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	titleID, ok := parseID(c, "id")
	if !ok {
		return
	}

	summary, err := h.Repo.TitleSummary(c.Request.Context(), claims.UserID, titleID)
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) listByTitle(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	titleID, ok := parseID(c, "id")
	if !ok {
		return
	}

	items, err := h.Repo.ListByTitle(c.Request.Context(), claims.UserID, titleID)
	if err != nil {
		apperr.JSON(c, err)
		return
	}
	if items == nil {
		items = []UnitStatus{}
	}

	c.JSON(http.StatusOK, gin.H{"title_id": titleID, "items": items})
}

func parseTime(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(*s))
	if err != nil {
		return nil, err
	}
	utc := t.UTC()
	return &utc, nil
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
