// Package ytdlp adapts the yt-dlp command line tool.
//
// The Client renders download requests into yt-dlp flags, decodes the JSON
// progress lines requested through --progress-template, and translates the
// tool's ERROR output into services.Failure values carrying the fixed set of
// user-facing messages. Probe and Supported run metadata-only invocations used
// by the optimal format policy and by URL validation in the CLI.
package ytdlp
