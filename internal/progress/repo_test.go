package progress

import (
	"context"
	"database/sql"
	"testing"

	"arcstride/internal/apperr"
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

func seed(t *testing.T, db *sql.DB) (userID, titleID int64, unitIDs []int64) {
	t.Helper()
	res, err := db.Exec(`INSERT INTO users (username, email) VALUES ('tester', 'tester@example.com')`)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	userID, _ = res.LastInsertId()

	res, err = db.Exec(`INSERT INTO titles (type, original_title, created_by) VALUES ('GAME', 'Starfall', ?)`, userID)
	if err != nil {
		t.Fatalf("seed title: %v", err)
	}
	titleID, _ = res.LastInsertId()

	for _, key := range []string{"route a", "route b", "route c"} {
		res, err = db.Exec(`
			INSERT INTO units (title_id, unit_type, unit_key, normalized_unit_key, created_by)
			VALUES (?, 'ROUTE', ?, ?, ?)
		`, titleID, key, key, userID)
		if err != nil {
			t.Fatalf("seed unit %q: %v", key, err)
		}
		id, _ := res.LastInsertId()
		unitIDs = append(unitIDs, id)
	}
	return userID, titleID, unitIDs
}

func TestUpsertUnknownUnit(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	userID, _, _ := seed(t, db)

	_, err := repo.Upsert(context.Background(), models.UnitProgress{
		UserID: userID,
		UnitID: 9999,
		Status: models.ProgressDone,
	})
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestUpsertCreatesThenUpdates(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	userID, _, unitIDs := seed(t, db)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, models.UnitProgress{
		UserID: userID,
		UnitID: unitIDs[0],
		Status: models.ProgressInProgress,
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.Status != models.ProgressInProgress {
		t.Fatalf("status = %s, want PROGRESS", first.Status)
	}

	second, err := repo.Upsert(ctx, models.UnitProgress{
		UserID: userID,
		UnitID: unitIDs[0],
		Status: models.ProgressDone,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.Status != models.ProgressDone {
		t.Fatalf("status = %s, want DONE", second.Status)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM user_progress WHERE user_id = ?`, userID).Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("progress rows = %d, want 1", count)
	}
}

func TestTitleSummaryImputesUntrackedUnits(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	userID, titleID, unitIDs := seed(t, db)
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, models.UnitProgress{UserID: userID, UnitID: unitIDs[0], Status: models.ProgressDone}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := repo.Upsert(ctx, models.UnitProgress{UserID: userID, UnitID: unitIDs[1], Status: models.ProgressInProgress}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	summary, err := repo.TitleSummary(ctx, userID, titleID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.DerivedStatus != models.ProgressInProgress {
		t.Errorf("derived status = %s, want PROGRESS", summary.DerivedStatus)
	}
	want := models.ProgressCounts{Total: 3, Done: 1, Progress: 1, None: 1}
	if summary.Counts != want {
		t.Errorf("counts = %+v, want %+v", summary.Counts, want)
	}
}

func TestTitleSummaryAllDone(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	userID, titleID, unitIDs := seed(t, db)
	ctx := context.Background()

	for _, id := range unitIDs {
		if _, err := repo.Upsert(ctx, models.UnitProgress{UserID: userID, UnitID: id, Status: models.ProgressDone}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	summary, err := repo.TitleSummary(ctx, userID, titleID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.DerivedStatus != models.ProgressDone {
		t.Errorf("derived status = %s, want DONE", summary.DerivedStatus)
	}
}

func TestTitleSummaryEmptyTitle(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	userID, _, _ := seed(t, db)

	res, err := db.Exec(`INSERT INTO titles (type, original_title, created_by) VALUES ('BOOK', 'Empty', ?)`, userID)
	if err != nil {
		t.Fatalf("seed empty title: %v", err)
	}
	emptyID, _ := res.LastInsertId()

	summary, err := repo.TitleSummary(context.Background(), userID, emptyID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.DerivedStatus != models.ProgressNone {
		t.Errorf("derived status = %s, want NONE", summary.DerivedStatus)
	}
	if summary.Counts.Total != 0 {
		t.Errorf("total = %d, want 0", summary.Counts.Total)
	}
}

func TestListByTitleOnlyActiveUnits(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	userID, titleID, unitIDs := seed(t, db)
	ctx := context.Background()

	for _, id := range unitIDs[:2] {
		if _, err := repo.Upsert(ctx, models.UnitProgress{UserID: userID, UnitID: id, Status: models.ProgressDone}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if _, err := db.Exec(`UPDATE units SET status = 'DELETED' WHERE id = ?`, unitIDs[1]); err != nil {
		t.Fatalf("hide unit: %v", err)
	}

	items, err := repo.ListByTitle(ctx, userID, titleID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].UnitID != unitIDs[0] {
		t.Errorf("unit_id = %d, want %d", items[0].UnitID, unitIDs[0])
	}
}
