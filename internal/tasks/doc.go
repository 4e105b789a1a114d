// Package tasks runs imports against the store with real-time progress reporting.
//
// # Dump Import
//
// [DumpImporter] commits a parsed dump (see package dump) in dependency order:
//
//  1. The user row is upserted, so re-importing a dump refreshes the profile.
//  2. Devices are appended with the user's id.
//  3. Trip groups are dispatched to a bounded pool of writers. Each group is one
//     transaction: the trip is inserted, its generated id is read back, and its
//     flights are inserted with that id.
//
// [DumpImporter.Import] returns only after every dispatched group committed or
// failed. The first rejected write cancels the remaining dispatch and is returned
// wrapping [shared.ErrStoreWrite]. Devices, trips, and flights are never
// deduplicated across runs.
//
// # Reference Feeds
//
// [ReferenceImporter] bulk loads the airport directory (comma separated) and the
// aircraft type feed (tab separated). Both are header-mapped and upserted by key,
// so loading a feed twice is idempotent.
//
// # Progress Reporting
//
// All operations report on an optional, non-blocking channel.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
