package review

import (
	"context"
	"database/sql"
	"testing"

	"arcstride/internal/apperr"
	"arcstride/internal/stats"
	"arcstride/pkg/database"
	"arcstride/pkg/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// a pooled second connection would see a different :memory: database
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seed(t *testing.T, db *sql.DB) (userIDs []int64, titleID int64) {
	t.Helper()
	for _, name := range []string{"alice", "bob"} {
		res, err := db.Exec(`INSERT INTO users (username, email) VALUES (?, ?)`, name, name+"@example.com")
		if err != nil {
			t.Fatalf("seed user %s: %v", name, err)
		}
		id, _ := res.LastInsertId()
		userIDs = append(userIDs, id)
	}

	res, err := db.Exec(`INSERT INTO titles (type, original_title, created_by) VALUES ('GAME', 'Starfall', ?)`, userIDs[0])
	if err != nil {
		t.Fatalf("seed title: %v", err)
	}
	titleID, _ = res.LastInsertId()
	if _, err := db.Exec(`INSERT INTO title_stats (title_id) VALUES (?)`, titleID); err != nil {
		t.Fatalf("seed stats: %v", err)
	}
	return userIDs, titleID
}

func getStats(t *testing.T, db *sql.DB, titleID int64) (avgGraphicsX2 float64, reviewCount int) {
	t.Helper()
	err := db.QueryRow(`
		SELECT avg_graphics_x2, review_count FROM title_stats WHERE title_id = ?
	`, titleID).Scan(&avgGraphicsX2, &reviewCount)
	if err != nil {
		t.Fatalf("read stats: %v", err)
	}
	return avgGraphicsX2, reviewCount
}

func TestUpsertRefreshesStats(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db, stats.NewRefresher())
	userIDs, titleID := seed(t, db)
	ctx := context.Background()

	// alice: graphics 8.0, bob: graphics 9.0
	if _, err := repo.Upsert(ctx, models.Review{
		UserID: userIDs[0], TitleID: titleID,
		GraphicsX2: 16, StoryX2: 14, MusicX2: 12, EtcX2: 10,
	}); err != nil {
		t.Fatalf("upsert alice: %v", err)
	}
	if _, err := repo.Upsert(ctx, models.Review{
		UserID: userIDs[1], TitleID: titleID,
		GraphicsX2: 18, StoryX2: 14, MusicX2: 12, EtcX2: 10,
	}); err != nil {
		t.Fatalf("upsert bob: %v", err)
	}

	avg, count := getStats(t, db, titleID)
	if count != 2 {
		t.Errorf("review_count = %d, want 2", count)
	}
	if avg != 17 {
		t.Errorf("avg_graphics_x2 = %v, want 17", avg)
	}
}

func TestUpsertReplacesExistingReview(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db, stats.NewRefresher())
	userIDs, titleID := seed(t, db)
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, models.Review{
		UserID: userIDs[0], TitleID: titleID,
		GraphicsX2: 10, StoryX2: 10, MusicX2: 10, EtcX2: 10,
	}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	saved, err := repo.Upsert(ctx, models.Review{
		UserID: userIDs[0], TitleID: titleID,
		GraphicsX2: 20, StoryX2: 20, MusicX2: 20, EtcX2: 20,
		ReviewText: "revised",
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if saved.GraphicsX2 != 20 || saved.ReviewText != "revised" {
		t.Errorf("saved = %+v, want replaced scores", saved)
	}

	avg, count := getStats(t, db, titleID)
	if count != 1 {
		t.Errorf("review_count = %d, want 1", count)
	}
	if avg != 20 {
		t.Errorf("avg_graphics_x2 = %v, want 20", avg)
	}
}

func TestDeleteLastReviewZeroesStats(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db, stats.NewRefresher())
	userIDs, titleID := seed(t, db)
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, models.Review{
		UserID: userIDs[0], TitleID: titleID,
		GraphicsX2: 16, StoryX2: 16, MusicX2: 16, EtcX2: 16,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Delete(ctx, userIDs[0], titleID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	avg, count := getStats(t, db, titleID)
	if count != 0 {
		t.Errorf("review_count = %d, want 0", count)
	}
	if avg != 0 {
		t.Errorf("avg_graphics_x2 = %v, want 0", avg)
	}
}

func TestDeleteMissingReview(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db, stats.NewRefresher())
	userIDs, titleID := seed(t, db)

	err := repo.Delete(context.Background(), userIDs[0], titleID)
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestUpsertUnknownTitle(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db, stats.NewRefresher())
	userIDs, _ := seed(t, db)

	_, err := repo.Upsert(context.Background(), models.Review{
		UserID: userIDs[0], TitleID: 9999,
		GraphicsX2: 10, StoryX2: 10, MusicX2: 10, EtcX2: 10,
	})
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
