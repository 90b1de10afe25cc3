// Package spotify is the Web API client and the content model built on top of it.
//
// # Client
//
// [Client.Call] is the only place requests are sent. Before each attempt the account's token is
// checked and refreshed when expired. Responses are then classified:
//   - 2xx: returned
//   - 401: the token is refreshed once and the request repeated; a second 401 is an [APIError]
//   - 403: terminal; the account has to be added again
//   - 423, 429: the client sleeps for Retry-After seconds and repeats the request until it
//     gets another answer or the context ends
//   - other 4xx, 5xx: terminal [APIError] carrying the status and body
//
// # Content
//
// [Track], [Artist], [Album] and [Playlist] are decoded strictly: a missing field produces a
// [ParseError] naming it. Each kind has a [Resource] value ([Tracks], [Artists], [Albums],
// [Playlists]) that fetches by id, batches id lists in groups of 50 and, for playlists, pages
// through the remaining tracks.
package spotify
