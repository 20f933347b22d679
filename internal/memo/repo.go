package memo

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

const memoColumns = `id, user_id, title_id, unit_id, memo_text, spoiler_flag, visibility, created_at, updated_at`

func (r *Repo) Create(ctx context.Context, userID int64, kind models.TargetType, targetID int64, m models.Memo) (*models.Memo, error) {
	resolved, err := r.Resolver.Resolve(ctx, kind, targetID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO user_memos (user_id, title_id, unit_id, memo_text, spoiler_flag, visibility, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, userID, resolved.TitleID, resolved.UnitID, m.MemoText, m.SpoilerFlag, m.Visibility, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert memo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("memo insert id: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Memo, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+memoColumns+` FROM user_memos WHERE id = ?`, id)
	return scanMemo(row.Scan)
}

// ListMine returns the user's memos, optionally narrowed to one target.
func (r *Repo) ListMine(ctx context.Context, userID int64, kind *models.TargetType, targetID int64, limit, offset int) ([]models.Memo, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	where := `user_id = ?`
	args := []any{userID}
	if kind != nil {
		resolved, err := r.Resolver.Resolve(ctx, *kind, targetID)
		if err != nil {
			return nil, err
		}
		if resolved.TitleID != nil {
			where += ` AND title_id = ?`
			args = append(args, *resolved.TitleID)
		} else {
			where += ` AND unit_id = ?`
			args = append(args, *resolved.UnitID)
		}
	}
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+memoColumns+`
		FROM user_memos
		WHERE `+where+`
		ORDER BY updated_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list memos: %w", err)
	}
	defer rows.Close()

	out := make([]models.Memo, 0, limit)
	for rows.Next() {
		m, err := scanMemo(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) findOwned(ctx context.Context, userID, memoID int64) (*models.Memo, error) {
	m, err := r.GetByID(ctx, memoID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.NotFound("memo %d not found", memoID)
	}
	if m.UserID != userID {
		return nil, apperr.Forbidden("only the owner may access a memo")
	}
	return m, nil
}

type Patch struct {
	MemoText    *string
	SpoilerFlag *bool
	Visibility  *models.Visibility
}

func (r *Repo) Update(ctx context.Context, userID, memoID int64, patch Patch) (*models.Memo, error) {
	m, err := r.findOwned(ctx, userID, memoID)
	if err != nil {
		return nil, err
	}

	if patch.MemoText != nil {
		m.MemoText = *patch.MemoText
	}
	if patch.SpoilerFlag != nil {
		m.SpoilerFlag = *patch.SpoilerFlag
	}
	if patch.Visibility != nil {
		m.Visibility = *patch.Visibility
	}

	_, err = r.DB.ExecContext(ctx, `
		UPDATE user_memos
		SET memo_text = ?, spoiler_flag = ?, visibility = ?, updated_at = ?
		WHERE id = ?
	`, m.MemoText, m.SpoilerFlag, m.Visibility, time.Now().UTC(), memoID)
	if err != nil {
		return nil, fmt.Errorf("update memo: %w", err)
	}
	return r.GetByID(ctx, memoID)
}

// Delete removes the row outright; memos carry no soft-delete state.
func (r *Repo) Delete(ctx context.Context, userID, memoID int64) error {
	if _, err := r.findOwned(ctx, userID, memoID); err != nil {
		return err
	}
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM user_memos WHERE id = ?`, memoID); err != nil {
		return fmt.Errorf("delete memo: %w", err)
	}
	return nil
}

func scanMemo(scan func(dest ...any) error) (*models.Memo, error) {
	var (
		m       models.Memo
		titleID sql.NullInt64
		unitID  sql.NullInt64
	)
	if err := scan(&m.ID, &m.UserID, &titleID, &unitID, &m.MemoText, &m.SpoilerFlag,
		&m.Visibility, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan memo: %w", err)
	}
	if titleID.Valid {
		v := titleID.Int64
		m.TitleID = &v
	}
	if unitID.Valid {
		v := unitID.Int64
		m.UnitID = &v
	}
	return &m, nil
}
