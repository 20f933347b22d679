package title

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
	rg.GET("/titles", h.list)
	rg.GET("/titles/:id", h.detail)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/titles", h.create)
	rg.POST("/titles/:id/aliases", h.addAlias)
	rg.DELETE("/titles/:id/aliases/:aliasID", h.deleteAlias)
}

type createReq struct {
	Type          string `json:"type"`
	OriginalTitle string `json:"original_title"`
	KoreanTitle   string `json:"korean_title"`
	ReleaseDate   string `json:"release_date"`
	CoverURL      string `json:"cover_url"`
	Summary       string `json:"summary"`
	IsExplicit    bool   `json:"is_explicit"`
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

	titleType, ok := models.ParseTitleType(req.Type)
	if !ok {
		apperr.JSON(c, apperr.Invalid("invalid title type: %s", req.Type))
		return
	}
	if strings.TrimSpace(req.OriginalTitle) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "original_title required"})
		return
	}

	created, err := h.Repo.Create(c.Request.Context(), models.Title{
		Type:          titleType,
		OriginalTitle: strings.TrimSpace(req.OriginalTitle),
		KoreanTitle:   strings.TrimSpace(req.KoreanTitle),
		ReleaseDate:   strings.TrimSpace(req.ReleaseDate),
		CoverURL:      strings.TrimSpace(req.CoverURL),
		Summary:       req.Summary,
		IsExplicit:    req.IsExplicit,
		CreatedBy:     claims.UserID,
	})
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Q:      c.Query("q"),
		Limit:  parseInt(c.Query("limit"), 20),
		Offset: parseInt(c.Query("offset"), 0),
	}
	if raw := c.Query("type"); raw != "" {
		titleType, ok := models.ParseTitleType(raw)
		if !ok {
			apperr.JSON(c, apperr.Invalid("invalid title type: %s", raw))
			return
		}
		q.Type = titleType
	}

	total, err := h.Repo.Count(c.Request.Context(), q)
	if err != nil {
		apperr.JSON(c, err)
		return
	}
	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) detail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	t, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		apperr.JSON(c, err)
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "title not found"})
		return
	}

	aliases, err := h.Repo.Aliases(c.Request.Context(), id)
	if err != nil {
		apperr.JSON(c, err)
		return
	}
	aliasTexts := make([]string, 0, len(aliases))
	for _, a := range aliases {
		aliasTexts = append(aliasTexts, a.AliasText)
	}

	stats, err := h.Repo.GetStats(c.Request.Context(), id)
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"title":   t,
		"aliases": aliasTexts,
		"stats": gin.H{
			"avg_graphics":  stats.AvgGraphics(),
			"avg_story":     stats.AvgStory(),
			"avg_music":     stats.AvgMusic(),
			"avg_etc":       stats.AvgEtc(),
			"review_count":  stats.ReviewCount,
			"comment_count": stats.CommentCount,
		},
	})
}

type addAliasReq struct {
	AliasText string `json:"alias_text"`
}

func (h *Handler) addAlias(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req addAliasReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	req.AliasText = strings.TrimSpace(req.AliasText)
	if req.AliasText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "alias_text required"})
		return
	}

	alias, err := h.Repo.AddAlias(c.Request.Context(), id, req.AliasText)
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	c.JSON(http.StatusCreated, alias)
}

func (h *Handler) deleteAlias(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	aliasID, ok := parseID(c, "aliasID")
	if !ok {
		return
	}

	if err := h.Repo.DeleteAlias(c.Request.Context(), id, aliasID); err != nil {
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
