package unit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"arcstride/internal/apperr"
	"arcstride/pkg/database"
	"arcstride/pkg/models"
	"arcstride/pkg/normalize"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const unitColumns = `id, title_id, unit_type, unit_key, normalized_unit_key, display_name, sort_order, release_date, character_id, status, created_by, created_at`

// Create enforces (title, unitType, normalizedUnitKey) uniqueness. The
// raw key is kept as entered (trimmed); only the normalized form
// participates in duplicate detection.
func (r *Repo) Create(ctx context.Context, u models.Unit) (*models.Unit, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM titles WHERE id = ?`, u.TitleID).Scan(&one)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("title %d not found", u.TitleID)
	}
	if err != nil {
		return nil, fmt.Errorf("title exists: %w", err)
	}

	u.NormalizedUnitKey = normalize.Key(u.UnitKey)

	err = r.DB.QueryRowContext(ctx, `
		SELECT 1 FROM units WHERE title_id = ? AND unit_type = ? AND normalized_unit_key = ?
	`, u.TitleID, u.UnitType, u.NormalizedUnitKey).Scan(&one)
	if err == nil {
		return nil, apperr.Conflict("unit already exists")
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("unit exists: %w", err)
	}

	if u.CharacterID != nil {
		err = r.DB.QueryRowContext(ctx, `SELECT 1 FROM characters WHERE id = ?`, *u.CharacterID).Scan(&one)
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("character %d not found", *u.CharacterID)
		}
		if err != nil {
			return nil, fmt.Errorf("character exists: %w", err)
		}
	}

	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO units (title_id, unit_type, unit_key, normalized_unit_key, display_name, sort_order, release_date, character_id, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.TitleID, u.UnitType, u.UnitKey, u.NormalizedUnitKey, nullString(u.DisplayName),
		u.SortOrder, nullString(u.ReleaseDate), u.CharacterID, u.CreatedBy, time.Now().UTC())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("unit already exists")
		}
		return nil, fmt.Errorf("insert unit: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("unit insert id: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Unit, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+unitColumns+` FROM units WHERE id = ?`, id)
	return scanUnit(row.Scan)
}

// ListByTitle returns ACTIVE units in the canonical order: units with
// an explicit sort position first (ascending), then the rest by
// creation time. Filtering by unitType keeps the relative order.
func (r *Repo) ListByTitle(ctx context.Context, titleID int64, unitType *models.UnitType) ([]models.Unit, error) {
	var filter any
	if unitType != nil {
		filter = string(*unitType)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+unitColumns+`
		FROM units
		WHERE title_id = ?
		  AND status = 'ACTIVE'
		  AND (? IS NULL OR unit_type = ?)
		ORDER BY
		  CASE WHEN sort_order IS NULL THEN 1 ELSE 0 END,
		  sort_order ASC,
		  created_at ASC
	`, titleID, filter, filter)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var out []models.Unit
	for rows.Next() {
		u, err := scanUnit(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) CountActiveByTitle(ctx context.Context, titleID int64) (int64, error) {
	var total int64
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM units WHERE title_id = ? AND status = 'ACTIVE'
	`, titleID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count units: %w", err)
	}
	return total, nil
}

func (r *Repo) PatchSortOrder(ctx context.Context, unitID int64, sortOrder *int) (*models.Unit, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE units SET sort_order = ? WHERE id = ?`, sortOrder, unitID)
	if err != nil {
		return nil, fmt.Errorf("patch sort order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("patch sort order rows: %w", err)
	}
	if affected == 0 {
		return nil, apperr.NotFound("unit %d not found", unitID)
	}
	return r.GetByID(ctx, unitID)
}

func scanUnit(scan func(dest ...any) error) (*models.Unit, error) {
	var (
		u           models.Unit
		displayName sql.NullString
		sortOrder   sql.NullInt64
		releaseDate sql.NullString
		characterID sql.NullInt64
	)
	if err := scan(&u.ID, &u.TitleID, &u.UnitType, &u.UnitKey, &u.NormalizedUnitKey,
		&displayName, &sortOrder, &releaseDate, &characterID, &u.Status, &u.CreatedBy, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan unit: %w", err)
	}
	u.DisplayName = displayName.String
	u.ReleaseDate = releaseDate.String
	if sortOrder.Valid {
		v := int(sortOrder.Int64)
		u.SortOrder = &v
	}
	if characterID.Valid {
		v := characterID.Int64
		u.CharacterID = &v
	}
	return &u, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
