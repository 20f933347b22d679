package library

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

func seed(t *testing.T, db *sql.DB) (userID int64, titleIDs []int64, storeID int64) {
	t.Helper()
	res, err := db.Exec(`INSERT INTO users (username, email) VALUES ('tester', 'tester@example.com')`)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	userID, _ = res.LastInsertId()

	for _, tt := range []struct{ typ, name string }{
		{"GAME", "Starfall"},
		{"BOOK", "Starlight Diary"},
	} {
		res, err = db.Exec(`INSERT INTO titles (type, original_title, created_by) VALUES (?, ?, ?)`, tt.typ, tt.name, userID)
		if err != nil {
			t.Fatalf("seed title %q: %v", tt.name, err)
		}
		id, _ := res.LastInsertId()
		titleIDs = append(titleIDs, id)
	}

	res, err = db.Exec(`INSERT INTO stores (name) VALUES ('Steam')`)
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	storeID, _ = res.LastInsertId()
	return userID, titleIDs, storeID
}

func TestUpsertCreatesThenMovesStore(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	userID, titleIDs, storeID := seed(t, db)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, models.LibraryItem{
		UserID:          userID,
		TitleID:         titleIDs[0],
		StoreID:         storeID,
		AcquisitionType: models.AcquisitionPurchase,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if first.StoreID != storeID {
		t.Errorf("store = %d, want %d", first.StoreID, storeID)
	}

	otherStore, err := repo.EnsureStore(ctx, "GOG")
	if err != nil {
		t.Fatalf("ensure store: %v", err)
	}
	second, err := repo.Upsert(ctx, models.LibraryItem{
		UserID:          userID,
		TitleID:         titleIDs[0],
		StoreID:         otherStore,
		AcquisitionType: models.AcquisitionGift,
		Note:            "birthday",
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.StoreID != otherStore || second.AcquisitionType != models.AcquisitionGift || second.Note != "birthday" {
		t.Errorf("item = %+v, want moved to GOG as GIFT", second)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM user_library_items WHERE user_id = ?`, userID).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("rows = %d, want 1", count)
	}
}

func TestUpsertUnknownTitleOrStore(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	userID, titleIDs, storeID := seed(t, db)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, models.LibraryItem{UserID: userID, TitleID: 9999, StoreID: storeID, AcquisitionType: models.AcquisitionPurchase})
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound for title, got %v", err)
	}

	_, err = repo.Upsert(ctx, models.LibraryItem{UserID: userID, TitleID: titleIDs[0], StoreID: 9999, AcquisitionType: models.AcquisitionPurchase})
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound for store, got %v", err)
	}
}

func TestListFiltersByTitleType(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	userID, titleIDs, storeID := seed(t, db)
	ctx := context.Background()

	for _, id := range titleIDs {
		if _, err := repo.Upsert(ctx, models.LibraryItem{
			UserID:          userID,
			TitleID:         id,
			StoreID:         storeID,
			AcquisitionType: models.AcquisitionPurchase,
		}); err != nil {
			t.Fatalf("upsert title %d: %v", id, err)
		}
	}

	all, err := repo.List(ctx, userID, nil, 20, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all = %d, want 2", len(all))
	}

	game := models.TitleGame
	games, err := repo.List(ctx, userID, &game, 20, 0)
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(games) != 1 || games[0].TitleID != titleIDs[0] {
		t.Fatalf("games = %+v, want only the GAME title", games)
	}
}

func TestDeleteMissingItem(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	userID, titleIDs, storeID := seed(t, db)
	ctx := context.Background()

	if err := repo.Delete(ctx, userID, titleIDs[0]); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}

	if _, err := repo.Upsert(ctx, models.LibraryItem{
		UserID:          userID,
		TitleID:         titleIDs[0],
		StoreID:         storeID,
		AcquisitionType: models.AcquisitionPurchase,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Delete(ctx, userID, titleIDs[0]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	item, err := repo.Get(ctx, userID, titleIDs[0])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if item != nil {
		t.Fatalf("item = %+v, want gone", item)
	}
}

func TestEnsureStoreIsIdempotent(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	seed(t, db)
	ctx := context.Background()

	a, err := repo.EnsureStore(ctx, "GOG")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	b, err := repo.EnsureStore(ctx, "GOG")
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if a != b {
		t.Fatalf("ids differ: %d vs %d", a, b)
	}

	stores, err := repo.ListStores(ctx)
	if err != nil {
		t.Fatalf("list stores: %v", err)
	}
	if len(stores) != 2 {
		t.Fatalf("stores = %d, want 2", len(stores))
	}
}
