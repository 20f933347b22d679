// Package target resolves the polymorphic title-or-unit reference used
// by guides and memos. Exactly one side of a Resolved is ever set;
// callers persist both slots as given to keep the mutual-exclusivity
// invariant at the storage layer.
package target

import (
	"context"
	"database/sql"
	"fmt"

	"arcstride/internal/apperr"
	"arcstride/pkg/models"
)

type Resolver struct {
	DB *sql.DB
}

func NewResolver(db *sql.DB) *Resolver {
	return &Resolver{DB: db}
}

type Resolved struct {
	TitleID *int64
	UnitID  *int64
}

func (r *Resolver) Resolve(ctx context.Context, kind models.TargetType, id int64) (Resolved, error) {
	switch kind {
	case models.TargetTitle:
		ok, err := r.exists(ctx, `SELECT 1 FROM titles WHERE id = ?`, id)
		if err != nil {
			return Resolved{}, err
		}
		if !ok {
			return Resolved{}, apperr.NotFound("title %d not found", id)
		}
		return Resolved{TitleID: &id}, nil

	case models.TargetUnit:
		ok, err := r.exists(ctx, `SELECT 1 FROM units WHERE id = ?`, id)
		if err != nil {
			return Resolved{}, err
		}
		if !ok {
			return Resolved{}, apperr.NotFound("unit %d not found", id)
		}
		return Resolved{UnitID: &id}, nil
	}
	return Resolved{}, apperr.Invalid("invalid target type: %s", kind)
}

func (r *Resolver) exists(ctx context.Context, query string, id int64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("target exists: %w", err)
	}
	return true, nil
}
