package library

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"arcstride/internal/apperr"
	"arcstride/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Upsert records that the user owns a title through a store. One row
// per (user, title); a second write moves the title to another store.
func (r *Repo) Upsert(ctx context.Context, item models.LibraryItem) (*models.LibraryItem, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM titles WHERE id = ?`, item.TitleID).Scan(&one)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("title %d not found", item.TitleID)
	}
	if err != nil {
		return nil, fmt.Errorf("title exists: %w", err)
	}

	err = r.DB.QueryRowContext(ctx, `SELECT 1 FROM stores WHERE id = ?`, item.StoreID).Scan(&one)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("store %d not found", item.StoreID)
	}
	if err != nil {
		return nil, fmt.Errorf("store exists: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO user_library_items (user_id, title_id, store_id, acquisition_type, note, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, title_id) DO UPDATE SET
			store_id         = excluded.store_id,
			acquisition_type = excluded.acquisition_type,
			note             = excluded.note,
			updated_at       = excluded.updated_at
	`, item.UserID, item.TitleID, item.StoreID, item.AcquisitionType, item.Note, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("upsert library item: %w", err)
	}
	return r.Get(ctx, item.UserID, item.TitleID)
}

const itemColumns = `user_id, title_id, store_id, acquisition_type, COALESCE(note, ''), updated_at`

func (r *Repo) Get(ctx context.Context, userID, titleID int64) (*models.LibraryItem, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM user_library_items
		WHERE user_id = ? AND title_id = ?
	`, userID, titleID)
	return scanItem(row.Scan)
}

// List returns the user's library, newest change first, optionally
// narrowed to one title type.
func (r *Repo) List(ctx context.Context, userID int64, titleType *models.TitleType, limit, offset int) ([]models.LibraryItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var tt any
	if titleType != nil {
		tt = string(*titleType)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT li.user_id, li.title_id, li.store_id, li.acquisition_type, COALESCE(li.note, ''), li.updated_at
		FROM user_library_items li
		JOIN titles t ON t.id = li.title_id
		WHERE li.user_id = ? AND (? IS NULL OR t.type = ?)
		ORDER BY li.updated_at DESC, li.title_id DESC
		LIMIT ? OFFSET ?
	`, userID, tt, tt, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	defer rows.Close()

	out := make([]models.LibraryItem, 0, limit)
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, userID, titleID int64) error {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM user_library_items WHERE user_id = ? AND title_id = ?
	`, userID, titleID)
	if err != nil {
		return fmt.Errorf("delete library item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete library item affected: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("library item for title %d not found", titleID)
	}
	return nil
}

func (r *Repo) ListStores(ctx context.Context) ([]models.Store, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name FROM stores ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var out []models.Store
	for rows.Next() {
		var s models.Store
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// EnsureStore inserts a store by name if missing and returns its id.
func (r *Repo) EnsureStore(ctx context.Context, name string) (int64, error) {
	if _, err := r.DB.ExecContext(ctx, `
		INSERT INTO stores (name) VALUES (?) ON CONFLICT(name) DO NOTHING
	`, name); err != nil {
		return 0, fmt.Errorf("ensure store: %w", err)
	}
	var id int64
	if err := r.DB.QueryRowContext(ctx, `SELECT id FROM stores WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("store id: %w", err)
	}
	return id, nil
}

func scanItem(scan func(dest ...any) error) (*models.LibraryItem, error) {
	var item models.LibraryItem
	if err := scan(&item.UserID, &item.TitleID, &item.StoreID, &item.AcquisitionType,
		&item.Note, &item.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan library item: %w", err)
	}
	return &item, nil
}
