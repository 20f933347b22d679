package auth

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"arcstride/pkg/database"
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

func takeUsername(t *testing.T, db *sql.DB, username string) {
	t.Helper()
	if _, err := db.Exec(`INSERT INTO users (username, email) VALUES (?, ?)`, username, username+"@example.com"); err != nil {
		t.Fatalf("take username %q: %v", username, err)
	}
}

func TestAllocateUsername(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		email       string
		taken       []string
		want        string
	}{
		{
			name:        "plain display name",
			displayName: "Jamie Lee",
			email:       "jamie@example.com",
			want:        "jamielee",
		},
		{
			name:        "symbols stripped",
			displayName: "J@mie-Lee!",
			email:       "jamie@example.com",
			want:        "jmielee",
		},
		{
			name:        "non-latin name falls back to email local part",
			displayName: "애옹",
			email:       "meow_cat@example.com",
			want:        "meow_cat",
		},
		{
			name:        "everything stripped falls back to user",
			displayName: "애옹★",
			email:       "ab@x.com",
			want:        "user",
		},
		{
			name:        "fallback probes numeric suffixes",
			displayName: "애옹★",
			email:       "ab@x.com",
			taken:       []string{"user", "user1"},
			want:        "user2",
		},
		{
			name:        "taken base gets suffix",
			displayName: "Jamie Lee",
			email:       "jamie@example.com",
			taken:       []string{"jamielee"},
			want:        "jamielee1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testDB(t)
			repo := NewRepo(db)
			for _, name := range tt.taken {
				takeUsername(t, db, name)
			}

			got, err := repo.AllocateUsername(context.Background(), tt.displayName, tt.email)
			if err != nil {
				t.Fatalf("allocate: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAllocateUsernameTruncatesLongBase(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)

	long := strings.Repeat("a", 60)
	got, err := repo.AllocateUsername(context.Background(), long, "x@example.com")
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if len(got) != 45 {
		t.Errorf("len = %d, want 45", len(got))
	}
}

func TestFindOrCreateExternal(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	first, err := repo.FindOrCreateExternal(ctx, "sub-123", "jamie@example.com", "Jamie Lee", "https://pic.example/1.png")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	if first.Username != "jamielee" {
		t.Errorf("username = %q, want %q", first.Username, "jamielee")
	}
	if first.ExternalSub == nil || *first.ExternalSub != "sub-123" {
		t.Errorf("external_sub = %v, want sub-123", first.ExternalSub)
	}

	// returning login keeps the username, refreshes the profile
	second, err := repo.FindOrCreateExternal(ctx, "sub-123", "jamie+new@example.com", "Changed Name", "https://pic.example/2.png")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("id = %d, want %d", second.ID, first.ID)
	}
	if second.Username != "jamielee" {
		t.Errorf("username changed to %q", second.Username)
	}
	if second.Email != "jamie+new@example.com" {
		t.Errorf("email = %q, want refreshed", second.Email)
	}
	if second.ProfilePictureURL != "https://pic.example/2.png" {
		t.Errorf("profile picture = %q, want refreshed", second.ProfilePictureURL)
	}
}

func TestFindOrCreateExternalDistinctSubs(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	a, err := repo.FindOrCreateExternal(ctx, "sub-a", "jamie@example.com", "Jamie Lee", "")
	if err != nil {
		t.Fatalf("login a: %v", err)
	}
	b, err := repo.FindOrCreateExternal(ctx, "sub-b", "jamie2@example.com", "Jamie Lee", "")
	if err != nil {
		t.Fatalf("login b: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("distinct subs mapped to the same user %d", a.ID)
	}
	if b.Username != "jamielee1" {
		t.Errorf("second username = %q, want %q", b.Username, "jamielee1")
	}
}
