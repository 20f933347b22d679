package character

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

const characterColumns = `id, title_id, original_name, korean_name, normalized_original_name, normalized_korean_name, image_url, is_explicit, status, created_by, created_at`

// Create registers a character under a GAME title. The original-name
// and korean-name scopes are independent uniqueness dimensions and are
// checked in that fixed order so the error surfaced is deterministic.
func (r *Repo) Create(ctx context.Context, ch models.Character) (*models.Character, error) {
	var titleType models.TitleType
	err := r.DB.QueryRowContext(ctx, `SELECT type FROM titles WHERE id = ?`, ch.TitleID).Scan(&titleType)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("title %d not found", ch.TitleID)
	}
	if err != nil {
		return nil, fmt.Errorf("get title type: %w", err)
	}
	if titleType != models.TitleGame {
		return nil, apperr.Invalid("characters can only be added to GAME titles")
	}

	ch.NormalizedOriginalName = normalize.Key(ch.OriginalName)
	ch.NormalizedKoreanName = normalize.KeyPtr(ch.KoreanName)

	var one int
	err = r.DB.QueryRowContext(ctx, `
		SELECT 1 FROM characters WHERE title_id = ? AND normalized_original_name = ?
	`, ch.TitleID, ch.NormalizedOriginalName).Scan(&one)
	if err == nil {
		return nil, apperr.Conflict("a character with the same original name already exists")
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("original name exists: %w", err)
	}

	if ch.NormalizedKoreanName != nil {
		err = r.DB.QueryRowContext(ctx, `
			SELECT 1 FROM characters WHERE title_id = ? AND normalized_korean_name = ?
		`, ch.TitleID, *ch.NormalizedKoreanName).Scan(&one)
		if err == nil {
			return nil, apperr.Conflict("a character with the same korean name already exists")
		}
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("korean name exists: %w", err)
		}
	}

	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO characters (title_id, original_name, korean_name, normalized_original_name, normalized_korean_name, image_url, is_explicit, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ch.TitleID, ch.OriginalName, ch.KoreanName, ch.NormalizedOriginalName, ch.NormalizedKoreanName,
		nullString(ch.ImageURL), ch.IsExplicit, ch.CreatedBy, time.Now().UTC())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("a character with the same name already exists")
		}
		return nil, fmt.Errorf("insert character: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("character insert id: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Character, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = ?`, id)
	return scanCharacter(row.Scan)
}

func (r *Repo) ListByTitle(ctx context.Context, titleID int64) ([]models.Character, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+characterColumns+`
		FROM characters
		WHERE title_id = ? AND status = 'ACTIVE'
		ORDER BY id ASC
	`, titleID)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	var out []models.Character
	for rows.Next() {
		ch, err := scanCharacter(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func scanCharacter(scan func(dest ...any) error) (*models.Character, error) {
	var (
		ch             models.Character
		koreanName     sql.NullString
		normKoreanName sql.NullString
		imageURL       sql.NullString
	)
	if err := scan(&ch.ID, &ch.TitleID, &ch.OriginalName, &koreanName, &ch.NormalizedOriginalName,
		&normKoreanName, &imageURL, &ch.IsExplicit, &ch.Status, &ch.CreatedBy, &ch.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan character: %w", err)
	}
	if koreanName.Valid {
		v := koreanName.String
		ch.KoreanName = &v
	}
	if normKoreanName.Valid {
		v := normKoreanName.String
		ch.NormalizedKoreanName = &v
	}
	ch.ImageURL = imageURL.String
	return &ch, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
