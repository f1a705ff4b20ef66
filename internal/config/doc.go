// Package config loads, normalizes, and validates downconv configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DOWNCONV_FFMPEG. The CLI resolves job specs from this package; the job
// runners never read it directly.
package config
