package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotimine/internal/models"
	"github.com/desertthunder/spotimine/internal/shared"
)

const copyJobColumns = `
	id, sequence, source_alias, dest_alias, source_playlist, target_playlist_id,
	mode, status, tracks_total, tracks_copied, tracks_skipped, error_message,
	started_at, completed_at, created_at, updated_at`

// CopyJobRepository implements models.Repository[*models.CopyJob].
type CopyJobRepository struct {
	db *sql.DB
}

// NewCopyJobRepository creates a new CopyJobRepository with the given database connection
func NewCopyJobRepository(db *sql.DB) *CopyJobRepository {
	return &CopyJobRepository{db: db}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Create inserts a new job with a generated ID and the next sequence number
func (r *CopyJobRepository) Create(job *models.CopyJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "copy_jobs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	job.SetID(shared.GenerateID())
	job.SetSequence(sequence)

	query := `INSERT INTO copy_jobs (` + copyJobColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.Exec(query,
		job.ID(),
		sequence,
		job.SourceAlias(),
		job.DestAlias(),
		job.SourcePlaylist(),
		nullable(job.TargetPlaylistID()),
		string(job.Mode()),
		string(job.Status()),
		job.TracksTotal(),
		job.TracksCopied(),
		job.TracksSkipped(),
		nullable(job.ErrorMessage()),
		job.StartedAt(),
		job.CompletedAt(),
		job.CreatedAt(),
		job.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert copy job: %w", err)
	}

	return nil
}

// Get retrieves a job by ID
func (r *CopyJobRepository) Get(id string) (*models.CopyJob, error) {
	query := `SELECT ` + copyJobColumns + ` FROM copy_jobs WHERE id = ?`

	job, err := scanCopyJob(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: copy job %s", shared.ErrNotFound, id)
	}
	return job, err
}

// Update writes the mutable fields of an existing job
func (r *CopyJobRepository) Update(job *models.CopyJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	job.SetUpdatedAt(now)

	query := `
		UPDATE copy_jobs
		SET target_playlist_id = ?, status = ?, tracks_total = ?, tracks_copied = ?,
			tracks_skipped = ?, error_message = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		nullable(job.TargetPlaylistID()),
		string(job.Status()),
		job.TracksTotal(),
		job.TracksCopied(),
		job.TracksSkipped(),
		nullable(job.ErrorMessage()),
		job.StartedAt(),
		job.CompletedAt(),
		now,
		job.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update copy job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: copy job %s", shared.ErrNotFound, job.ID())
	}

	return nil
}

// Delete removes a job by ID
func (r *CopyJobRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM copy_jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete copy job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: copy job %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves jobs newest first. Supported criteria: status, mode, source_alias, dest_alias
// (strings) and limit (int).
func (r *CopyJobRepository) List(criteria map[string]any) ([]*models.CopyJob, error) {
	query := `SELECT ` + copyJobColumns + ` FROM copy_jobs WHERE 1 = 1`
	args := []any{}

	for _, column := range []string{"status", "mode", "source_alias", "dest_alias"} {
		if value, ok := criteria[column].(string); ok && value != "" {
			query += " AND " + column + " = ?"
			args = append(args, value)
		}
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query copy jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.CopyJob
	for rows.Next() {
		job, err := scanCopyJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return jobs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCopyJob(row scanner) (*models.CopyJob, error) {
	var (
		id               string
		sequence         int
		sourceAlias      string
		destAlias        string
		sourcePlaylist   string
		targetPlaylistID sql.NullString
		mode             string
		status           string
		tracksTotal      int
		tracksCopied     int
		tracksSkipped    int
		errorMessage     sql.NullString
		startedAt        sql.NullTime
		completedAt      sql.NullTime
		createdAt        time.Time
		updatedAt        time.Time
	)

	err := row.Scan(
		&id, &sequence, &sourceAlias, &destAlias, &sourcePlaylist, &targetPlaylistID,
		&mode, &status, &tracksTotal, &tracksCopied, &tracksSkipped, &errorMessage,
		&startedAt, &completedAt, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan copy job: %w", err)
	}

	job := models.NewCopyJob(sourceAlias, destAlias, sourcePlaylist, models.CopyMode(mode))
	job.SetID(id)
	job.SetSequence(sequence)
	job.SetStatus(models.CopyStatus(status))
	job.SetTracksTotal(tracksTotal)
	job.SetTracksCopied(tracksCopied)
	job.SetTracksSkipped(tracksSkipped)
	job.SetCreatedAt(createdAt)
	job.SetUpdatedAt(updatedAt)
	job.SetStartedAt(nil)

	if targetPlaylistID.Valid {
		job.SetTargetPlaylistID(targetPlaylistID.String)
	}
	if errorMessage.Valid {
		job.SetErrorMessage(errorMessage.String)
	}
	if startedAt.Valid {
		job.SetStartedAt(&startedAt.Time)
	}
	if completedAt.Valid {
		job.SetCompletedAt(&completedAt.Time)
	}

	return job, nil
}
