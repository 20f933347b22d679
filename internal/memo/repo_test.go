package memo

import (
	"context"
	"database/sql"
	"testing"

	"arcstride/internal/apperr"
	"arcstride/internal/target"
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

func seed(t *testing.T, db *sql.DB) (userIDs []int64, titleID, unitID int64) {
	t.Helper()
	for _, name := range []string{"alice", "bob"} {
		res, err := db.Exec(`INSERT INTO users (username, email) VALUES (?, ?)`, name, name+"@example.com")
		if err != nil {
			t.Fatalf("seed user %s: %v", name, err)
		}
		id, _ := res.LastInsertId()
		userIDs = append(userIDs, id)
	}

	res, err := db.Exec(`INSERT INTO titles (type, original_title, created_by) VALUES ('BOOK', 'Diary', ?)`, userIDs[0])
	if err != nil {
		t.Fatalf("seed title: %v", err)
	}
	titleID, _ = res.LastInsertId()

	res, err = db.Exec(`
		INSERT INTO units (title_id, unit_type, unit_key, normalized_unit_key, created_by)
		VALUES (?, 'VOLUME', 'vol 1', 'vol 1', ?)
	`, titleID, userIDs[0])
	if err != nil {
		t.Fatalf("seed unit: %v", err)
	}
	unitID, _ = res.LastInsertId()
	return userIDs, titleID, unitID
}

func TestCreateAndListByTarget(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db, target.NewResolver(db))
	userIDs, titleID, unitID := seed(t, db)
	ctx := context.Background()

	if _, err := repo.Create(ctx, userIDs[0], models.TargetTitle, titleID, models.Memo{
		MemoText:   "about the book",
		Visibility: models.VisibilityPrivate,
	}); err != nil {
		t.Fatalf("create title memo: %v", err)
	}
	if _, err := repo.Create(ctx, userIDs[0], models.TargetUnit, unitID, models.Memo{
		MemoText:   "about volume one",
		Visibility: models.VisibilityPrivate,
	}); err != nil {
		t.Fatalf("create unit memo: %v", err)
	}

	all, err := repo.ListMine(ctx, userIDs[0], nil, 0, 20, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all = %d, want 2", len(all))
	}

	kind := models.TargetUnit
	unitOnly, err := repo.ListMine(ctx, userIDs[0], &kind, unitID, 20, 0)
	if err != nil {
		t.Fatalf("list unit memos: %v", err)
	}
	if len(unitOnly) != 1 || unitOnly[0].MemoText != "about volume one" {
		t.Fatalf("unit memos = %+v, want only the unit memo", unitOnly)
	}
}

func TestListMineIsPerUser(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db, target.NewResolver(db))
	userIDs, titleID, _ := seed(t, db)
	ctx := context.Background()

	if _, err := repo.Create(ctx, userIDs[0], models.TargetTitle, titleID, models.Memo{
		MemoText: "alice's note", Visibility: models.VisibilityPrivate,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	theirs, err := repo.ListMine(ctx, userIDs[1], nil, 0, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(theirs) != 0 {
		t.Fatalf("bob sees %d memos, want 0", len(theirs))
	}
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db, target.NewResolver(db))
	userIDs, titleID, _ := seed(t, db)
	ctx := context.Background()

	created, err := repo.Create(ctx, userIDs[0], models.TargetTitle, titleID, models.Memo{
		MemoText: "draft", Visibility: models.VisibilityPrivate,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	text := "final"
	if _, err := repo.Update(ctx, userIDs[1], created.ID, Patch{MemoText: &text}); !apperr.IsForbidden(err) {
		t.Fatalf("expected Forbidden, got %v", err)
	}

	updated, err := repo.Update(ctx, userIDs[0], created.ID, Patch{MemoText: &text})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.MemoText != "final" {
		t.Errorf("memo_text = %q, want %q", updated.MemoText, "final")
	}

	if err := repo.Delete(ctx, userIDs[1], created.ID); !apperr.IsForbidden(err) {
		t.Fatalf("expected Forbidden, got %v", err)
	}
	if err := repo.Delete(ctx, userIDs[0], created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, userIDs[0], created.ID); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}

	// hard delete: the row is gone
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM user_memos`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("rows = %d, want 0", count)
	}
}
