// Package ffprobe looks up media durations.
//
// ProbeDuration is the best-effort lookup the converter uses to turn ffmpeg
// time markers into percentages.
package ffprobe
