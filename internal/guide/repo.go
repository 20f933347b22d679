package guide

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"arcstride/internal/apperr"
	"arcstride/internal/target"
	"arcstride/pkg/models"
)

type Repo struct {
	DB       *sql.DB
	Resolver *target.Resolver
}

func NewRepo(db *sql.DB, resolver *target.Resolver) *Repo {
	return &Repo{DB: db, Resolver: resolver}
}

const guideColumns = `id, author_id, title_id, unit_id, guide_title, content, visibility, status, created_at, updated_at`

func (r *Repo) Create(ctx context.Context, authorID int64, kind models.TargetType, targetID int64, g models.Guide) (*models.Guide, error) {
	resolved, err := r.Resolver.Resolve(ctx, kind, targetID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO guides (author_id, title_id, unit_id, guide_title, content, visibility, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, authorID, resolved.TitleID, resolved.UnitID, g.GuideTitle, g.Content, g.Visibility, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert guide: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("guide insert id: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Guide, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+guideColumns+` FROM guides WHERE id = ?`, id)
	return scanGuide(row.Scan)
}

// ListPublic returns ACTIVE public guides for one target, newest first.
func (r *Repo) ListPublic(ctx context.Context, kind models.TargetType, targetID int64, limit, offset int) ([]models.Guide, error) {
	resolved, err := r.Resolver.Resolve(ctx, kind, targetID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var (
		where string
		arg   int64
	)
	if resolved.TitleID != nil {
		where, arg = "title_id = ?", *resolved.TitleID
	} else {
		where, arg = "unit_id = ?", *resolved.UnitID
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+guideColumns+`
		FROM guides
		WHERE `+where+` AND status = 'ACTIVE' AND visibility = 'PUBLIC'
		ORDER BY updated_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, arg, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list guides: %w", err)
	}
	defer rows.Close()

	out := make([]models.Guide, 0, limit)
	for rows.Next() {
		g, err := scanGuide(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// findOwned fetches an ACTIVE guide and checks authorship. A deleted or
// missing guide reads as NotFound; someone else's as Forbidden.
func (r *Repo) findOwned(ctx context.Context, authorID, guideID int64) (*models.Guide, error) {
	g, err := r.GetByID(ctx, guideID)
	if err != nil {
		return nil, err
	}
	if g == nil || g.Status != models.StatusActive {
		return nil, apperr.NotFound("guide %d not found", guideID)
	}
	if g.AuthorID != authorID {
		return nil, apperr.Forbidden("only the author may modify a guide")
	}
	return g, nil
}

type Patch struct {
	GuideTitle *string
	Content    *string
	Visibility *models.Visibility
}

func (r *Repo) Update(ctx context.Context, authorID, guideID int64, patch Patch) (*models.Guide, error) {
	g, err := r.findOwned(ctx, authorID, guideID)
	if err != nil {
		return nil, err
	}

	if patch.GuideTitle != nil {
		g.GuideTitle = *patch.GuideTitle
	}
	if patch.Content != nil {
		g.Content = *patch.Content
	}
	if patch.Visibility != nil {
		g.Visibility = *patch.Visibility
	}

	_, err = r.DB.ExecContext(ctx, `
		UPDATE guides
		SET guide_title = ?, content = ?, visibility = ?, updated_at = ?
		WHERE id = ?
	`, g.GuideTitle, g.Content, g.Visibility, time.Now().UTC(), guideID)
	if err != nil {
		return nil, fmt.Errorf("update guide: %w", err)
	}
	return r.GetByID(ctx, guideID)
}

func (r *Repo) Delete(ctx context.Context, authorID, guideID int64) error {
	if _, err := r.findOwned(ctx, authorID, guideID); err != nil {
		return err
	}
	if _, err := r.DB.ExecContext(ctx, `
		UPDATE guides SET status = 'DELETED', updated_at = ? WHERE id = ?
	`, time.Now().UTC(), guideID); err != nil {
		return fmt.Errorf("delete guide: %w", err)
	}
	return nil
}

func scanGuide(scan func(dest ...any) error) (*models.Guide, error) {
	var (
		g       models.Guide
		titleID sql.NullInt64
		unitID  sql.NullInt64
	)
	if err := scan(&g.ID, &g.AuthorID, &titleID, &unitID, &g.GuideTitle, &g.Content,
		&g.Visibility, &g.Status, &g.CreatedAt, &g.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan guide: %w", err)
	}
	if titleID.Valid {
		v := titleID.Int64
		g.TitleID = &v
	}
	if unitID.Valid {
		v := unitID.Int64
		g.UnitID = &v
	}
	return &g, nil
}
