package repositories

import (
	"database/sql"
	"testing"

	"github.com/spotfetch/spotfetch/internal/shared"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestResolutionRepository(t *testing.T) {
	t.Run("Miss On Empty Store", func(t *testing.T) {
		repo := NewResolutionRepository(newTestDB(t), 0)

		if _, ok, err := repo.Get("song artist"); err != nil || ok {
			t.Errorf("expected a clean miss, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("Put Then Get", func(t *testing.T) {
		repo := NewResolutionRepository(newTestDB(t), 0)

		if err := repo.Put("song artist", "https://yt/v1"); err != nil {
			t.Fatal(err)
		}

		url, ok, err := repo.Get("song artist")
		if err != nil || !ok {
			t.Fatalf("expected a hit, got ok=%v err=%v", ok, err)
		}
		if url != "https://yt/v1" {
			t.Errorf("unexpected URL %q", url)
		}
	})

	t.Run("First Resolution Wins", func(t *testing.T) {
		repo := NewResolutionRepository(newTestDB(t), 0)

		repo.Put("song artist", "https://yt/first")
		repo.Put("song artist", "https://yt/second")

		url, _, err := repo.Get("song artist")
		if err != nil {
			t.Fatal(err)
		}
		if url != "https://yt/first" {
			t.Errorf("expected the first URL to stick, got %q", url)
		}

		count, err := repo.Count()
		if err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Errorf("expected a single row, got %d", count)
		}
	})

	t.Run("Prune Keeps Most Recently Used", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewResolutionRepository(db, 2)

		repo.Put("a", "1")
		repo.Put("b", "2")

		// decide recency explicitly so the third insert has a clear victim
		if _, err := db.Exec("UPDATE resolutions SET last_used = datetime('now', '-1 hour') WHERE query = 'a'"); err != nil {
			t.Fatal(err)
		}

		repo.Put("c", "3")

		count, err := repo.Count()
		if err != nil {
			t.Fatal(err)
		}
		if count != 2 {
			t.Fatalf("expected the store to stay bounded, got %d rows", count)
		}
		if _, ok, _ := repo.Get("a"); ok {
			t.Error("least recently used row should have been pruned")
		}
		if _, ok, _ := repo.Get("b"); !ok {
			t.Error("recently used row should have survived")
		}
	})

	t.Run("Get Refreshes Recency", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewResolutionRepository(db, 2)

		repo.Put("a", "1")
		repo.Put("b", "2")

		// age both rows, then touch only "a"
		if _, err := db.Exec("UPDATE resolutions SET last_used = datetime('now', '-1 hour')"); err != nil {
			t.Fatal(err)
		}
		if _, ok, _ := repo.Get("a"); !ok {
			t.Fatal("expected a hit")
		}

		repo.Put("c", "3")

		if _, ok, _ := repo.Get("a"); !ok {
			t.Error("touched row should have survived the prune")
		}
		if _, ok, _ := repo.Get("b"); ok {
			t.Error("untouched row should have been pruned")
		}
	})

	t.Run("Zero Max Uses Default", func(t *testing.T) {
		repo := NewResolutionRepository(newTestDB(t), 0)
		if repo.maxEntries != DefaultMaxEntries {
			t.Errorf("expected default bound, got %d", repo.maxEntries)
		}
	})
}
