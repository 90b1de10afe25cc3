package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/spotimine/internal/shared"
)

// CopyMode distinguishes a playlist copy from a liked-songs overwrite.
type CopyMode string

const (
	ModePlaylist CopyMode = "playlist"
	ModeLiked    CopyMode = "liked"
)

// CopyStatus is the lifecycle state of a [CopyJob].
type CopyStatus string

const (
	StatusRunning   CopyStatus = "running"
	StatusCompleted CopyStatus = "completed"
	StatusFailed    CopyStatus = "failed"
)

// CopyJob is one journaled bulk write.
type CopyJob struct {
	id               string
	sequence         int
	sourceAlias      string
	destAlias        string
	sourcePlaylist   string
	targetPlaylistID string
	mode             CopyMode
	status           CopyStatus
	tracksTotal      int
	tracksCopied     int
	tracksSkipped    int
	errorMessage     string
	startedAt        *time.Time
	completedAt      *time.Time
	createdAt        time.Time
	updatedAt        time.Time
}

// NewCopyJob creates a running job started now.
func NewCopyJob(sourceAlias, destAlias, sourcePlaylist string, mode CopyMode) *CopyJob {
	now := time.Now()
	return &CopyJob{
		sourceAlias:    sourceAlias,
		destAlias:      destAlias,
		sourcePlaylist: sourcePlaylist,
		mode:           mode,
		status:         StatusRunning,
		startedAt:      &now,
		createdAt:      now,
		updatedAt:      now,
	}
}

func (j *CopyJob) ID() string               { return j.id }
func (j *CopyJob) Sequence() int            { return j.sequence }
func (j *CopyJob) SourceAlias() string      { return j.sourceAlias }
func (j *CopyJob) DestAlias() string        { return j.destAlias }
func (j *CopyJob) SourcePlaylist() string   { return j.sourcePlaylist }
func (j *CopyJob) TargetPlaylistID() string { return j.targetPlaylistID }
func (j *CopyJob) Mode() CopyMode           { return j.mode }
func (j *CopyJob) Status() CopyStatus       { return j.status }
func (j *CopyJob) TracksTotal() int         { return j.tracksTotal }
func (j *CopyJob) TracksCopied() int        { return j.tracksCopied }
func (j *CopyJob) TracksSkipped() int       { return j.tracksSkipped }
func (j *CopyJob) ErrorMessage() string     { return j.errorMessage }
func (j *CopyJob) StartedAt() *time.Time    { return j.startedAt }
func (j *CopyJob) CompletedAt() *time.Time  { return j.completedAt }
func (j *CopyJob) CreatedAt() time.Time     { return j.createdAt }
func (j *CopyJob) UpdatedAt() time.Time     { return j.updatedAt }

func (j *CopyJob) SetID(id string)               { j.id = id }
func (j *CopyJob) SetSequence(seq int)           { j.sequence = seq }
func (j *CopyJob) SetTargetPlaylistID(id string) { j.targetPlaylistID = id }
func (j *CopyJob) SetStatus(status CopyStatus)   { j.status = status }
func (j *CopyJob) SetTracksTotal(n int)          { j.tracksTotal = n }
func (j *CopyJob) SetTracksCopied(n int)         { j.tracksCopied = n }
func (j *CopyJob) SetTracksSkipped(n int)        { j.tracksSkipped = n }
func (j *CopyJob) SetErrorMessage(msg string)    { j.errorMessage = msg }
func (j *CopyJob) SetStartedAt(t *time.Time)     { j.startedAt = t }
func (j *CopyJob) SetCompletedAt(t *time.Time)   { j.completedAt = t }
func (j *CopyJob) SetCreatedAt(t time.Time)      { j.createdAt = t }
func (j *CopyJob) SetUpdatedAt(t time.Time)      { j.updatedAt = t }

// Complete marks the job finished with the given counts.
func (j *CopyJob) Complete(copied, skipped int) {
	now := time.Now()
	j.status = StatusCompleted
	j.tracksCopied = copied
	j.tracksSkipped = skipped
	j.completedAt = &now
}

// Fail marks the job failed with err's message.
func (j *CopyJob) Fail(err error) {
	now := time.Now()
	j.status = StatusFailed
	j.errorMessage = err.Error()
	j.completedAt = &now
}

// Validate checks required fields and enum values.
func (j *CopyJob) Validate() error {
	switch {
	case j.sourceAlias == "":
		return fmt.Errorf("%w: source alias is required", shared.ErrInvalidInput)
	case j.destAlias == "":
		return fmt.Errorf("%w: destination alias is required", shared.ErrInvalidInput)
	case j.sourcePlaylist == "":
		return fmt.Errorf("%w: source playlist is required", shared.ErrInvalidInput)
	}

	switch j.mode {
	case ModePlaylist, ModeLiked:
	default:
		return fmt.Errorf("%w: unknown copy mode %q", shared.ErrInvalidInput, j.mode)
	}

	switch j.status {
	case StatusRunning, StatusCompleted, StatusFailed:
	default:
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidInput, j.status)
	}

	if j.tracksTotal < 0 || j.tracksCopied < 0 || j.tracksSkipped < 0 {
		return fmt.Errorf("%w: track counts must not be negative", shared.ErrInvalidInput)
	}
	return nil
}
