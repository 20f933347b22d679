package guide

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

	res, err := db.Exec(`INSERT INTO titles (type, original_title, created_by) VALUES ('GAME', 'Starfall', ?)`, userIDs[0])
	if err != nil {
		t.Fatalf("seed title: %v", err)
	}
	titleID, _ = res.LastInsertId()

	res, err = db.Exec(`
		INSERT INTO units (title_id, unit_type, unit_key, normalized_unit_key, created_by)
		VALUES (?, 'ROUTE', 'route a', 'route a', ?)
	`, titleID, userIDs[0])
	if err != nil {
		t.Fatalf("seed unit: %v", err)
	}
	unitID, _ = res.LastInsertId()
	return userIDs, titleID, unitID
}

func TestCreateResolvesTarget(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db, target.NewResolver(db))
	userIDs, titleID, unitID := seed(t, db)
	ctx := context.Background()

	forTitle, err := repo.Create(ctx, userIDs[0], models.TargetTitle, titleID, models.Guide{
		GuideTitle: "Getting started",
		Content:    "intro",
		Visibility: models.VisibilityPublic,
	})
	if err != nil {
		t.Fatalf("create for title: %v", err)
	}
	if forTitle.TitleID == nil || *forTitle.TitleID != titleID || forTitle.UnitID != nil {
		t.Errorf("guide = %+v, want title target only", forTitle)
	}

	forUnit, err := repo.Create(ctx, userIDs[0], models.TargetUnit, unitID, models.Guide{
		GuideTitle: "Route walkthrough",
		Content:    "steps",
		Visibility: models.VisibilityPublic,
	})
	if err != nil {
		t.Fatalf("create for unit: %v", err)
	}
	if forUnit.UnitID == nil || *forUnit.UnitID != unitID || forUnit.TitleID != nil {
		t.Errorf("guide = %+v, want unit target only", forUnit)
	}

	if _, err := repo.Create(ctx, userIDs[0], models.TargetUnit, 9999, models.Guide{
		GuideTitle: "Lost",
		Visibility: models.VisibilityPublic,
	}); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestListPublicHidesPrivateAndDeleted(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db, target.NewResolver(db))
	userIDs, titleID, _ := seed(t, db)
	ctx := context.Background()

	public, err := repo.Create(ctx, userIDs[0], models.TargetTitle, titleID, models.Guide{
		GuideTitle: "Public", Content: "x", Visibility: models.VisibilityPublic,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, userIDs[0], models.TargetTitle, titleID, models.Guide{
		GuideTitle: "Private", Content: "x", Visibility: models.VisibilityPrivate,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	gone, err := repo.Create(ctx, userIDs[0], models.TargetTitle, titleID, models.Guide{
		GuideTitle: "Gone", Content: "x", Visibility: models.VisibilityPublic,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, userIDs[0], gone.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	list, err := repo.ListPublic(ctx, models.TargetTitle, titleID, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != public.ID {
		t.Fatalf("list = %+v, want only the public guide", list)
	}
}

func TestUpdateOwnership(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db, target.NewResolver(db))
	userIDs, titleID, _ := seed(t, db)
	ctx := context.Background()

	created, err := repo.Create(ctx, userIDs[0], models.TargetTitle, titleID, models.Guide{
		GuideTitle: "Mine", Content: "x", Visibility: models.VisibilityPublic,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newTitle := "Mine v2"
	if _, err := repo.Update(ctx, userIDs[1], created.ID, Patch{GuideTitle: &newTitle}); !apperr.IsForbidden(err) {
		t.Fatalf("expected Forbidden, got %v", err)
	}

	updated, err := repo.Update(ctx, userIDs[0], created.ID, Patch{GuideTitle: &newTitle})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.GuideTitle != "Mine v2" {
		t.Errorf("title = %q, want %q", updated.GuideTitle, "Mine v2")
	}
	if updated.Content != "x" {
		t.Errorf("content = %q, want untouched", updated.Content)
	}
}

func TestDeleteThenNotFound(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db, target.NewResolver(db))
	userIDs, titleID, _ := seed(t, db)
	ctx := context.Background()

	created, err := repo.Create(ctx, userIDs[0], models.TargetTitle, titleID, models.Guide{
		GuideTitle: "Mine", Content: "x", Visibility: models.VisibilityPublic,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
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
}
