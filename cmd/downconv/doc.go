// Command downconv converts audio files with ffmpeg and downloads media with
// yt-dlp.
//
// Conversions run in a bounded worker pool; downloads run as a sequential
// queue. The first interrupt stops scheduling new work and lets running
// tools finish; a second interrupt exits immediately with status 130. Each
// finished run is recorded so its failed subset can be retried with
// --retry-failed.
package main
