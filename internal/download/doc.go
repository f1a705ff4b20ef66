// Package download runs yt-dlp downloads: single jobs with format alias
// resolution and the merge-failure retry, and sequential queues reporting
// progress through jobs.Event values.
package download
