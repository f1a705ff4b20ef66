// Package deps locates the external command-line tools downconv drives
// (ffmpeg, ffprobe, yt-dlp, aria2c) and reports whether they are available.
package deps
