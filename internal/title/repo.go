package title

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"arcstride/internal/apperr"
	"arcstride/pkg/database"
	"arcstride/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

type ListQuery struct {
	Q      string // keyword search in original/korean title
	Type   models.TitleType
	Limit  int
	Offset int
}

const titleColumns = `id, type, original_title, korean_title, release_date, cover_url, summary, is_explicit, status, created_by, created_at`

// Create inserts the title together with its zeroed stats row in one
// transaction; stats exist from birth so readers never special-case a
// missing row for fresh titles.
func (r *Repo) Create(ctx context.Context, t models.Title) (*models.Title, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create title: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO titles (type, original_title, korean_title, release_date, cover_url, summary, is_explicit, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.Type, t.OriginalTitle, nullString(t.KoreanTitle), nullString(t.ReleaseDate),
		nullString(t.CoverURL), nullString(t.Summary), t.IsExplicit, t.CreatedBy, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("insert title: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("title insert id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO title_stats (title_id) VALUES (?)`, id); err != nil {
		return nil, fmt.Errorf("insert title stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create title: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+titleColumns+` FROM titles WHERE id = ?`, id)
	return scanTitle(row.Scan)
}

func (r *Repo) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM titles WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("title exists: %w", err)
	}
	return true, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count titles: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Title, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Title, 0, q.Limit)
	for rows.Next() {
		t, err := scanTitle(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := `SELECT ` + titleColumns + ` FROM titles`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM titles`
	}

	where := []string{`status = 'ACTIVE'`}
	var args []any

	if kw := strings.TrimSpace(q.Q); kw != "" {
		where = append(where, "(LOWER(original_title) LIKE ? OR LOWER(korean_title) LIKE ?)")
		pattern := "%" + strings.ToLower(kw) + "%"
		args = append(args, pattern, pattern)
	}
	if q.Type != "" {
		where = append(where, "type = ?")
		args = append(args, q.Type)
	}

	sqlStr := baseSelect + " WHERE " + strings.Join(where, " AND ")

	if !countOnly {
		sqlStr += " ORDER BY original_title ASC LIMIT ? OFFSET ?"
		limit := q.Limit
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, limit, offset)
	}

	return sqlStr, args
}

func (r *Repo) Aliases(ctx context.Context, titleID int64) ([]models.TitleAlias, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title_id, alias_text FROM title_aliases WHERE title_id = ? ORDER BY id ASC
	`, titleID)
	if err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	defer rows.Close()

	var out []models.TitleAlias
	for rows.Next() {
		var a models.TitleAlias
		if err := rows.Scan(&a.ID, &a.TitleID, &a.AliasText); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// AddAlias enforces (title, aliasText) uniqueness: a friendly check
// first, then the unique index as the authoritative signal.
func (r *Repo) AddAlias(ctx context.Context, titleID int64, aliasText string) (*models.TitleAlias, error) {
	exists, err := r.ExistsByID(ctx, titleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("title %d not found", titleID)
	}

	var one int
	err = r.DB.QueryRowContext(ctx, `
		SELECT 1 FROM title_aliases WHERE title_id = ? AND alias_text = ?
	`, titleID, aliasText).Scan(&one)
	if err == nil {
		return nil, apperr.Conflict("alias already exists for this title")
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("alias exists: %w", err)
	}

	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO title_aliases (title_id, alias_text) VALUES (?, ?)
	`, titleID, aliasText)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("alias already exists for this title")
		}
		return nil, fmt.Errorf("insert alias: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("alias insert id: %w", err)
	}
	return &models.TitleAlias{ID: id, TitleID: titleID, AliasText: aliasText}, nil
}

func (r *Repo) DeleteAlias(ctx context.Context, titleID, aliasID int64) error {
	var ownerID int64
	err := r.DB.QueryRowContext(ctx, `
		SELECT title_id FROM title_aliases WHERE id = ?
	`, aliasID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return apperr.NotFound("alias %d not found", aliasID)
	}
	if err != nil {
		return fmt.Errorf("get alias: %w", err)
	}
	if ownerID != titleID {
		return apperr.Invalid("alias does not belong to title %d", titleID)
	}

	if _, err := r.DB.ExecContext(ctx, `DELETE FROM title_aliases WHERE id = ?`, aliasID); err != nil {
		return fmt.Errorf("delete alias: %w", err)
	}
	return nil
}

// GetStats returns the stats row, or an all-zero snapshot when the row
// is missing or stale-less.
func (r *Repo) GetStats(ctx context.Context, titleID int64) (models.TitleStats, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT title_id, avg_graphics_x2, avg_story_x2, avg_music_x2, avg_etc_x2, review_count, comment_count, updated_at
		FROM title_stats
		WHERE title_id = ?
	`, titleID)

	var s models.TitleStats
	err := row.Scan(&s.TitleID, &s.AvgGraphicsX2, &s.AvgStoryX2, &s.AvgMusicX2, &s.AvgEtcX2,
		&s.ReviewCount, &s.CommentCount, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.TitleStats{TitleID: titleID}, nil
	}
	if err != nil {
		return models.TitleStats{}, fmt.Errorf("scan stats: %w", err)
	}
	return s, nil
}

func scanTitle(scan func(dest ...any) error) (*models.Title, error) {
	var (
		t           models.Title
		koreanTitle sql.NullString
		releaseDate sql.NullString
		coverURL    sql.NullString
		summary     sql.NullString
	)
	if err := scan(&t.ID, &t.Type, &t.OriginalTitle, &koreanTitle, &releaseDate,
		&coverURL, &summary, &t.IsExplicit, &t.Status, &t.CreatedBy, &t.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan title: %w", err)
	}
	t.KoreanTitle = koreanTitle.String
	t.ReleaseDate = releaseDate.String
	t.CoverURL = coverURL.String
	t.Summary = summary.String
	return &t, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
