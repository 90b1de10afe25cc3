// Package repositories provides the sqlite persistence layer for the copy journal.
//
// [CopyJobRepository] implements models.Repository[*models.CopyJob], handling CRUD operations
// and sequence generation through the copy_jobs_sequence table.
package repositories
