// Package ffmpeg drives single-file audio conversions through the ffmpeg CLI.
//
// A Client builds the argument vector for a target format and quality,
// streams stderr into a ProgressParser when a progress sink is supplied, and
// classifies failures into services.Failure values with user-facing messages.
// Outputs replacing their own input are written to a hidden temporary sibling
// and renamed into place only after ffmpeg succeeds.
package ffmpeg
