// Package tasks orchestrates the multi-request library operations with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines the bulk operations behind the CLI:
//
//  1. [Engine.PlaylistsFor] and [Engine.LikedSongs] : read a whole library
//     - Follow playlist paging links, then fetch each playlist with every page of tracks
//     - Liked songs become a private pseudo-playlist named "Liked Songs"
//
//  2. [Engine.Copy] : duplicate a playlist onto another (or the same) account
//     - Creates the playlist with the source visibility and description
//     - Appends tracks in batches of at most 50
//     - Local-file tracks are skipped with a warning
//
//  3. [Engine.CopyToLiked] : overwrite liked songs
//     - Asks a [Confirmer] first; nothing is written when it declines
//     - Removes every saved track, then saves the source tracks
//
//  4. [Engine.Search] and [Engine.Export] : catalog search and export to files
//
// # Progress Reporting
//
// All operations accept an optional channel of [ProgressUpdate]. Sends never block: when the
// channel is full the update is dropped.
//
// # Copy Journal
//
// When the engine is built with a journal repository, every copy records a [models.CopyJob]
// that moves from running to completed or failed. Journal failures are logged and never abort a copy.
package tasks
