// Package services defines shared error markers and context helpers consumed
// by the external tool adapters and the job runners.
//
// Key responsibilities:
//   - Failure markers (ErrToolNotFound, ErrTimeout, ErrDiskFull, ...) plus the
//     Failure type that pairs a marker with the message shown to the user.
//   - Context helpers that stamp run identifiers, item labels, and stage names
//     for logging.
//
// Subpackages wrap the external command-line tools (ffmpeg, yt-dlp) behind
// small Executor interfaces so they can be replaced in tests.
package services
