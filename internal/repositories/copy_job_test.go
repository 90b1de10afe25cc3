package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/spotimine/internal/models"
	"github.com/desertthunder/spotimine/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenJournal(":memory:")
	if err != nil {
		t.Fatalf("failed to open test journal: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestCopyJobRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewCopyJobRepository(setupTestDB(t))
		job := models.NewCopyJob("main", "alt", "Road Trip", models.ModePlaylist)

		if err := repo.Create(job); err != nil {
			t.Fatalf("failed to create job: %v", err)
		}
		if job.ID() == "" {
			t.Error("job ID should be set after creation")
		}
		if job.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", job.Sequence())
		}

		second := models.NewCopyJob("main", "main", "Focus", models.ModeLiked)
		if err := repo.Create(second); err != nil {
			t.Fatalf("failed to create second job: %v", err)
		}
		if second.Sequence() != 2 {
			t.Errorf("expected sequence 2, got %d", second.Sequence())
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewCopyJobRepository(setupTestDB(t))
		job := models.NewCopyJob("main", "alt", "Road Trip", models.ModePlaylist)
		if err := repo.Create(job); err != nil {
			t.Fatalf("failed to create job: %v", err)
		}

		got, err := repo.Get(job.ID())
		if err != nil {
			t.Fatalf("failed to get job: %v", err)
		}
		if got.SourcePlaylist() != "Road Trip" || got.DestAlias() != "alt" {
			t.Errorf("unexpected job fields: %+v", got)
		}
		if got.Status() != models.StatusRunning {
			t.Errorf("expected running, got %s", got.Status())
		}
		if got.StartedAt() == nil {
			t.Error("started_at should round-trip")
		}
		if got.CompletedAt() != nil {
			t.Error("completed_at should be empty")
		}

		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewCopyJobRepository(setupTestDB(t))
		job := models.NewCopyJob("main", "alt", "Road Trip", models.ModePlaylist)
		if err := repo.Create(job); err != nil {
			t.Fatalf("failed to create job: %v", err)
		}

		job.SetTargetPlaylistID("new-id")
		job.SetTracksTotal(12)
		job.Complete(10, 2)
		if err := repo.Update(job); err != nil {
			t.Fatalf("failed to update job: %v", err)
		}

		got, err := repo.Get(job.ID())
		if err != nil {
			t.Fatalf("failed to get job: %v", err)
		}
		if got.Status() != models.StatusCompleted || got.TracksCopied() != 10 || got.TracksSkipped() != 2 {
			t.Errorf("update not persisted: status=%s copied=%d skipped=%d", got.Status(), got.TracksCopied(), got.TracksSkipped())
		}
		if got.TargetPlaylistID() != "new-id" {
			t.Errorf("expected target id new-id, got %s", got.TargetPlaylistID())
		}
		if got.CompletedAt() == nil {
			t.Error("completed_at should be set")
		}

		ghost := models.NewCopyJob("a", "b", "c", models.ModePlaylist)
		ghost.SetID("ghost")
		if err := repo.Update(ghost); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Failure is recorded", func(t *testing.T) {
		repo := NewCopyJobRepository(setupTestDB(t))
		job := models.NewCopyJob("main", "main", "Focus", models.ModeLiked)
		if err := repo.Create(job); err != nil {
			t.Fatalf("failed to create job: %v", err)
		}

		job.Fail(fmt.Errorf("server error (500)"))
		if err := repo.Update(job); err != nil {
			t.Fatalf("failed to update job: %v", err)
		}

		got, _ := repo.Get(job.ID())
		if got.Status() != models.StatusFailed || got.ErrorMessage() != "server error (500)" {
			t.Errorf("failure not persisted: %s %q", got.Status(), got.ErrorMessage())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewCopyJobRepository(setupTestDB(t))
		job := models.NewCopyJob("main", "alt", "Road Trip", models.ModePlaylist)
		if err := repo.Create(job); err != nil {
			t.Fatalf("failed to create job: %v", err)
		}

		if err := repo.Delete(job.ID()); err != nil {
			t.Fatalf("failed to delete job: %v", err)
		}
		if err := repo.Delete(job.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("second delete should report ErrNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewCopyJobRepository(setupTestDB(t))
		for _, j := range []*models.CopyJob{
			models.NewCopyJob("main", "alt", "One", models.ModePlaylist),
			models.NewCopyJob("alt", "main", "Two", models.ModePlaylist),
			models.NewCopyJob("main", "main", "Three", models.ModeLiked),
		} {
			if err := repo.Create(j); err != nil {
				t.Fatalf("failed to create job: %v", err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list jobs: %v", err)
		}
		if len(all) != 3 || all[0].SourcePlaylist() != "Three" {
			t.Fatalf("expected newest first, got %d jobs", len(all))
		}

		fromMain, _ := repo.List(map[string]any{"source_alias": "main"})
		if len(fromMain) != 2 {
			t.Errorf("expected 2 jobs from main, got %d", len(fromMain))
		}

		liked, _ := repo.List(map[string]any{"mode": string(models.ModeLiked)})
		if len(liked) != 1 {
			t.Errorf("expected 1 liked job, got %d", len(liked))
		}

		limited, _ := repo.List(map[string]any{"limit": 2})
		if len(limited) != 2 {
			t.Errorf("expected limit 2, got %d", len(limited))
		}
	})

	t.Run("Validation", func(t *testing.T) {
		repo := NewCopyJobRepository(setupTestDB(t))

		if err := repo.Create(models.NewCopyJob("", "alt", "One", models.ModePlaylist)); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for empty alias, got %v", err)
		}
		if err := repo.Create(models.NewCopyJob("a", "b", "One", models.CopyMode("mirror"))); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for unknown mode, got %v", err)
		}
	})
}
