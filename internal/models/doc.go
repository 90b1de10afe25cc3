// Package models defines the persistent entities of the copy journal and the repository contract.
//
// A [CopyJob] records one bulk write: a playlist copied to an account, or a playlist written over
// an account's liked songs. It stores operation metadata only (aliases, playlist name, target id,
// counts, status and timestamps), never track data.
//
// Persistent entities implement the [Model] interface providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
