package review

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"arcstride/internal/apperr"
	"arcstride/internal/stats"
	"arcstride/pkg/models"
)

type Repo struct {
	DB    *sql.DB
	Stats *stats.Refresher
}

func NewRepo(db *sql.DB, refresher *stats.Refresher) *Repo {
	return &Repo{DB: db, Stats: refresher}
}

const reviewColumns = `id, user_id, title_id, graphics_x2, story_x2, music_x2, etc_x2, review_text, spoiler_flag, created_at, updated_at`

// Upsert writes the user's single review for a title and refreshes the
// title's aggregates inside the same transaction, so the primary write
// never lands without its stats update.
func (r *Repo) Upsert(ctx context.Context, rv models.Review) (*models.Review, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM titles WHERE id = ?`, rv.TitleID).Scan(&one)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("title %d not found", rv.TitleID)
	}
	if err != nil {
		return nil, fmt.Errorf("title exists: %w", err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin upsert review: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_reviews (user_id, title_id, graphics_x2, story_x2, music_x2, etc_x2, review_text, spoiler_flag, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, title_id) DO UPDATE SET
			graphics_x2  = excluded.graphics_x2,
			story_x2     = excluded.story_x2,
			music_x2     = excluded.music_x2,
			etc_x2       = excluded.etc_x2,
			review_text  = excluded.review_text,
			spoiler_flag = excluded.spoiler_flag,
			updated_at   = excluded.updated_at
	`, rv.UserID, rv.TitleID, rv.GraphicsX2, rv.StoryX2, rv.MusicX2, rv.EtcX2,
		nullString(rv.ReviewText), rv.SpoilerFlag, now, now)
	if err != nil {
		return nil, fmt.Errorf("upsert review: %w", err)
	}

	if err := r.Stats.RefreshReviews(ctx, tx, rv.TitleID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit upsert review: %w", err)
	}
	return r.GetMine(ctx, rv.UserID, rv.TitleID)
}

// Delete removes the user's review and refreshes the stats in the same
// transaction; deleting the last review resets averages to zero.
func (r *Repo) Delete(ctx context.Context, userID, titleID int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete review: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM user_reviews WHERE user_id = ? AND title_id = ?
	`, userID, titleID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete review rows: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("review not found")
	}

	if err := r.Stats.RefreshReviews(ctx, tx, titleID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete review: %w", err)
	}
	return nil
}

func (r *Repo) GetMine(ctx context.Context, userID, titleID int64) (*models.Review, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+reviewColumns+` FROM user_reviews WHERE user_id = ? AND title_id = ?
	`, userID, titleID)
	return scanReview(row.Scan)
}

func (r *Repo) ListByTitle(ctx context.Context, titleID int64, limit, offset int) ([]models.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+reviewColumns+`
		FROM user_reviews
		WHERE title_id = ?
		ORDER BY updated_at DESC
		LIMIT ? OFFSET ?
	`, titleID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := make([]models.Review, 0, limit)
	for rows.Next() {
		rv, err := scanReview(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func scanReview(scan func(dest ...any) error) (*models.Review, error) {
	var (
		rv   models.Review
		text sql.NullString
	)
	if err := scan(&rv.ID, &rv.UserID, &rv.TitleID, &rv.GraphicsX2, &rv.StoryX2, &rv.MusicX2,
		&rv.EtcX2, &text, &rv.SpoilerFlag, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}
	rv.ReviewText = text.String
	return &rv, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
