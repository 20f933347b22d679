package review

import (
	"math"
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
	rg.GET("/titles/:id/reviews", h.listByTitle)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.PUT("/me/reviews/titles/:id", h.upsert)
	rg.GET("/me/reviews/titles/:id", h.getMine)
	rg.DELETE("/me/reviews/titles/:id", h.delete)
}

type upsertReq struct {
	Graphics    float64 `json:"graphics"`
	Story       float64 `json:"story"`
	Music       float64 `json:"music"`
	Etc         float64 `json:"etc"`
	ReviewText  string  `json:"review_text"`
	SpoilerFlag bool    `json:"spoiler_flag"`
}

// scoreX2 validates a sub-score: [0.0, 10.0] on 0.5 steps, returned
// doubled so it stores as an exact integer.
func scoreX2(v float64) (int, error) {
	if v < 0 || v > 10 {
		return 0, apperr.Invalid("score must be between 0.0 and 10.0")
	}
	doubled := v * 2
	if doubled != math.Trunc(doubled) {
		return 0, apperr.Invalid("score must be in 0.5 steps")
	}
	return int(doubled), nil
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

	rv := models.Review{
		UserID:      claims.UserID,
		TitleID:     titleID,
		ReviewText:  strings.TrimSpace(req.ReviewText),
		SpoilerFlag: req.SpoilerFlag,
	}
	var err error
	if rv.GraphicsX2, err = scoreX2(req.Graphics); err != nil {
		apperr.JSON(c, err)
		return
	}
	if rv.StoryX2, err = scoreX2(req.Story); err != nil {
		apperr.JSON(c, err)
		return
	}
	if rv.MusicX2, err = scoreX2(req.Music); err != nil {
		apperr.JSON(c, err)
		return
	}
	if rv.EtcX2, err = scoreX2(req.Etc); err != nil {
		apperr.JSON(c, err)
		return
	}

	saved, err := h.Repo.Upsert(c.Request.Context(), rv)
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	c.JSON(http.StatusOK, reviewJSON(saved))
}

func (h *Handler) getMine(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	titleID, ok := parseID(c, "id")
	if !ok {
		return
	}

	rv, err := h.Repo.GetMine(c.Request.Context(), claims.UserID, titleID)
	if err != nil {
		apperr.JSON(c, err)
		return
	}
	if rv == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
		return
	}

	c.JSON(http.StatusOK, reviewJSON(rv))
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

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) listByTitle(c *gin.Context) {
	titleID, ok := parseID(c, "id")
	if !ok {
		return
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	reviews, err := h.Repo.ListByTitle(c.Request.Context(), titleID, limit, offset)
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	items := make([]gin.H, 0, len(reviews))
	for i := range reviews {
		items = append(items, reviewJSON(&reviews[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func reviewJSON(rv *models.Review) gin.H {
	return gin.H{
		"id":           rv.ID,
		"user_id":      rv.UserID,
		"title_id":     rv.TitleID,
		"graphics":     rv.Graphics(),
		"story":        rv.Story(),
		"music":        rv.Music(),
		"etc":          rv.Etc(),
		"review_text":  rv.ReviewText,
		"spoiler_flag": rv.SpoilerFlag,
		"created_at":   rv.CreatedAt,
		"updated_at":   rv.UpdatedAt,
	}
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
