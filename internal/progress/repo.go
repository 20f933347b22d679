package progress

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

// Upsert writes the user's progress for one unit: first write creates
// the row, later writes update it in place.
func (r *Repo) Upsert(ctx context.Context, p models.UnitProgress) (*models.UnitProgress, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM units WHERE id = ?`, p.UnitID).Scan(&one)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("unit %d not found", p.UnitID)
	}
	if err != nil {
		return nil, fmt.Errorf("unit exists: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO user_progress (user_id, unit_id, status, started_at, finished_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, unit_id) DO UPDATE SET
			status      = excluded.status,
			started_at  = excluded.started_at,
			finished_at = excluded.finished_at,
			updated_at  = excluded.updated_at
	`, p.UserID, p.UnitID, p.Status, p.StartedAt, p.FinishedAt, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("upsert progress: %w", err)
	}
	return r.Get(ctx, p.UserID, p.UnitID)
}

func (r *Repo) Get(ctx context.Context, userID, unitID int64) (*models.UnitProgress, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT user_id, unit_id, status, started_at, finished_at, updated_at
		FROM user_progress
		WHERE user_id = ? AND unit_id = ?
	`, userID, unitID)

	var (
		p          models.UnitProgress
		startedAt  sql.NullTime
		finishedAt sql.NullTime
	)
	if err := row.Scan(&p.UserID, &p.UnitID, &p.Status, &startedAt, &finishedAt, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan progress: %w", err)
	}
	if startedAt.Valid {
		t := startedAt.Time
		p.StartedAt = &t
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		p.FinishedAt = &t
	}
	return &p, nil
}

// TitleSummary computes the derived completion state for one title:
// total ACTIVE units, the user's grouped progress counts, and the
// status derived by Summarize. Nothing here is persisted.
func (r *Repo) TitleSummary(ctx context.Context, userID, titleID int64) (*models.ProgressSummary, error) {
	var total int64
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM units WHERE title_id = ? AND status = 'ACTIVE'
	`, titleID).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count title units: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT p.status, COUNT(*)
		FROM user_progress p
		JOIN units u ON u.id = p.unit_id
		WHERE p.user_id = ? AND u.title_id = ? AND u.status = 'ACTIVE'
		GROUP BY p.status
	`, userID, titleID)
	if err != nil {
		return nil, fmt.Errorf("group progress: %w", err)
	}
	defer rows.Close()

	var done, inProgress, noneRecorded int64
	for rows.Next() {
		var (
			status models.ProgressStatus
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan progress count: %w", err)
		}
		switch status {
		case models.ProgressDone:
			done = count
		case models.ProgressInProgress:
			inProgress = count
		case models.ProgressNone:
			noneRecorded = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}

	status, counts := Summarize(total, done, inProgress, noneRecorded)
	return &models.ProgressSummary{
		TitleID:       titleID,
		DerivedStatus: status,
		Counts:        counts,
	}, nil
}

type UnitStatus struct {
	UnitID int64                 `json:"unit_id"`
	Status models.ProgressStatus `json:"status"`
}

// ListByTitle returns the user's recorded statuses for a title's
// ACTIVE units; units without a row are simply absent.
func (r *Repo) ListByTitle(ctx context.Context, userID, titleID int64) ([]UnitStatus, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT p.unit_id, p.status
		FROM user_progress p
		JOIN units u ON u.id = p.unit_id
		WHERE p.user_id = ? AND u.title_id = ? AND u.status = 'ACTIVE'
		ORDER BY p.unit_id ASC
	`, userID, titleID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var out []UnitStatus
	for rows.Next() {
		var us UnitStatus
		if err := rows.Scan(&us.UnitID, &us.Status); err != nil {
			return nil, fmt.Errorf("scan unit status: %w", err)
		}
		out = append(out, us)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
