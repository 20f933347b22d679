package comment

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

const commentColumns = `id, title_id, user_id, body, spoiler_flag, parent_id, status, created_at`

// Create inserts the comment and refreshes the title's comment count
// in the same transaction. parent_id is taken as given; an orphaned
// parent is tolerated.
func (r *Repo) Create(ctx context.Context, cm models.Comment) (*models.Comment, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM titles WHERE id = ?`, cm.TitleID).Scan(&one)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("title %d not found", cm.TitleID)
	}
	if err != nil {
		return nil, fmt.Errorf("title exists: %w", err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create comment: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO comments (title_id, user_id, body, spoiler_flag, parent_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, cm.TitleID, cm.UserID, cm.Body, cm.SpoilerFlag, cm.ParentID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("comment insert id: %w", err)
	}

	if err := r.Stats.RefreshComments(ctx, tx, cm.TitleID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create comment: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Delete soft-deletes: the row keeps its place in any thread but stops
// counting toward the title's ACTIVE comment count.
func (r *Repo) Delete(ctx context.Context, userID, commentID int64) error {
	existing, err := r.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if existing == nil || existing.Status != models.StatusActive {
		return apperr.NotFound("comment %d not found", commentID)
	}
	if existing.UserID != userID {
		return apperr.Forbidden("only the author may delete a comment")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete comment: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		UPDATE comments SET status = 'DELETED' WHERE id = ?
	`, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	if err := r.Stats.RefreshComments(ctx, tx, existing.TitleID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete comment: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)
	return scanComment(row.Scan)
}

func (r *Repo) ListByTitle(ctx context.Context, titleID int64, limit, offset int) ([]models.Comment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+commentColumns+`
		FROM comments
		WHERE title_id = ? AND status = 'ACTIVE'
		ORDER BY created_at ASC, id ASC
		LIMIT ? OFFSET ?
	`, titleID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := make([]models.Comment, 0, limit)
	for rows.Next() {
		cm, err := scanComment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *cm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func scanComment(scan func(dest ...any) error) (*models.Comment, error) {
	var (
		cm       models.Comment
		parentID sql.NullInt64
	)
	if err := scan(&cm.ID, &cm.TitleID, &cm.UserID, &cm.Body, &cm.SpoilerFlag,
		&parentID, &cm.Status, &cm.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	if parentID.Valid {
		v := parentID.Int64
		cm.ParentID = &v
	}
	return &cm, nil
}
