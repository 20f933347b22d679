package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"arcstride/internal/apperr"
	"arcstride/pkg/database"
)

type User struct {
	ID                int64
	Username          string
	Email             string
	PasswordHash      string
	ExternalSub       *string
	ProfilePictureURL string
	TokenVersion      int
	CreatedAt         time.Time
}

type Repo struct {
	DB *sql.DB

	// serializes first-login username allocation in-process; the
	// unique index on users.username is the backstop across processes.
	allocMu sync.Mutex
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) CreateUser(ctx context.Context, u User) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, external_sub, profile_picture_url)
		VALUES (?, ?, ?, ?, ?)
	`, u.Username, u.Email, nullString(u.PasswordHash), u.ExternalSub, nullString(u.ProfilePictureURL))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return 0, apperr.Conflict("username or identity already exists")
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create user id: %w", err)
	}
	return id, nil
}

const userColumns = `id, username, email, COALESCE(password_hash, ''), external_sub, COALESCE(profile_picture_url, ''), token_version, created_at`

func (r *Repo) scanUser(row *sql.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.ExternalSub,
		&u.ProfilePictureURL, &u.TokenVersion, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	return r.scanUser(r.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE LOWER(email) = ?
	`, email))
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.scanUser(r.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE username = ?
	`, strings.TrimSpace(username)))
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.scanUser(r.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = ?
	`, id))
}

func (r *Repo) GetByExternalSub(ctx context.Context, sub string) (*User, error) {
	return r.scanUser(r.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE external_sub = ?
	`, sub))
}

func (r *Repo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username = ?`, username).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists by username: %w", err)
	}
	return true, nil
}

func (r *Repo) GetTokenVersion(ctx context.Context, id int64) (int, error) {
	var version int
	err := r.DB.QueryRowContext(ctx, `SELECT token_version FROM users WHERE id = ?`, id).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get token version: %w", err)
	}
	return version, nil
}

func (r *Repo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?, token_version = token_version + 1
		WHERE id = ?
	`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password rows: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("user %d not found", id)
	}
	return nil
}

func (r *Repo) BumpTokenVersion(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET token_version = token_version + 1
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("bump token version: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bump token version rows: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("user %d not found", id)
	}
	return nil
}

// FindOrCreateExternal handles an external-identity login. A returning
// user gets profile fields refreshed; a first login allocates a
// permanent username from the display name or email.
func (r *Repo) FindOrCreateExternal(ctx context.Context, sub, email, displayName, pictureURL string) (*User, error) {
	existing, err := r.GetByExternalSub(ctx, sub)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		_, err := r.DB.ExecContext(ctx, `
			UPDATE users SET email = ?, profile_picture_url = ? WHERE id = ?
		`, email, nullString(pictureURL), existing.ID)
		if err != nil {
			return nil, fmt.Errorf("update external profile: %w", err)
		}
		return r.GetByID(ctx, existing.ID)
	}

	r.allocMu.Lock()
	defer r.allocMu.Unlock()

	for attempt := 0; attempt < 2; attempt++ {
		username, err := r.AllocateUsername(ctx, displayName, email)
		if err != nil {
			return nil, err
		}
		id, err := r.CreateUser(ctx, User{
			Username:          username,
			Email:             email,
			ExternalSub:       &sub,
			ProfilePictureURL: pictureURL,
		})
		if apperr.IsConflict(err) {
			// lost the race to another process; re-probe once
			continue
		}
		if err != nil {
			return nil, err
		}
		return r.GetByID(ctx, id)
	}
	return nil, apperr.Conflict("could not allocate a unique username")
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
