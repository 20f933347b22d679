// Package stats keeps the denormalized per-title aggregates in step
// with the underlying review and comment rows. Every refresh is a full
// recompute expressed as a single aggregate-and-upsert statement, so a
// concurrent writer can never persist a stale snapshot.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// Execer is satisfied by *sql.DB and *sql.Tx; refreshes run on the
// same transaction as the mutation that triggered them.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Refresher struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewRefresher() *Refresher {
	return &Refresher{locks: make(map[int64]*sync.Mutex)}
}

func (r *Refresher) lockTitle(titleID int64) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[titleID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[titleID] = l
	}
	return l
}

// RefreshReviews recomputes the four average sub-scores (stored x2)
// and the review count for a title. An empty review set writes zeros,
// never leaves stale values behind.
func (r *Refresher) RefreshReviews(ctx context.Context, db Execer, titleID int64) error {
	l := r.lockTitle(titleID)
	l.Lock()
	defer l.Unlock()

	_, err := db.ExecContext(ctx, `
		INSERT INTO title_stats (title_id, avg_graphics_x2, avg_story_x2, avg_music_x2, avg_etc_x2, review_count, updated_at)
		SELECT ?,
		       COALESCE(AVG(graphics_x2), 0),
		       COALESCE(AVG(story_x2), 0),
		       COALESCE(AVG(music_x2), 0),
		       COALESCE(AVG(etc_x2), 0),
		       COUNT(*),
		       CURRENT_TIMESTAMP
		FROM user_reviews
		WHERE title_id = ?
		ON CONFLICT(title_id) DO UPDATE SET
			avg_graphics_x2 = excluded.avg_graphics_x2,
			avg_story_x2    = excluded.avg_story_x2,
			avg_music_x2    = excluded.avg_music_x2,
			avg_etc_x2      = excluded.avg_etc_x2,
			review_count    = excluded.review_count,
			updated_at      = excluded.updated_at
	`, titleID, titleID)
	if err != nil {
		return fmt.Errorf("refresh review stats: %w", err)
	}
	return nil
}

// RefreshComments recomputes the ACTIVE comment count for a title.
func (r *Refresher) RefreshComments(ctx context.Context, db Execer, titleID int64) error {
	l := r.lockTitle(titleID)
	l.Lock()
	defer l.Unlock()

	_, err := db.ExecContext(ctx, `
		INSERT INTO title_stats (title_id, comment_count, updated_at)
		SELECT ?, COUNT(*), CURRENT_TIMESTAMP
		FROM comments
		WHERE title_id = ? AND status = 'ACTIVE'
		ON CONFLICT(title_id) DO UPDATE SET
			comment_count = excluded.comment_count,
			updated_at    = excluded.updated_at
	`, titleID, titleID)
	if err != nil {
		return fmt.Errorf("refresh comment count: %w", err)
	}
	return nil
}
