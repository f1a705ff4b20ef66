package convert

import (
	"path/filepath"
	"strings"

	"downconv/internal/services/ffmpeg"
)

// DefaultConcurrency is the worker count used when a Spec leaves it unset.
const DefaultConcurrency = 4

// Placement decides where each output file is written.
type Placement struct {
	dir         string
	nextToInput bool
}

// SharedFolder writes every output into dir.
func SharedFolder(dir string) Placement {
	return Placement{dir: dir}
}

// NextToInput writes each output beside its input.
func NextToInput() Placement {
	return Placement{nextToInput: true}
}

// NextTo reports whether outputs are written beside their inputs.
func (p Placement) NextTo() bool { return p.nextToInput }

// Dir returns the shared folder; empty for NextToInput.
func (p Placement) Dir() string { return p.dir }

// OutputDir returns the directory receiving the output for input.
func (p Placement) OutputDir(input string) string {
	if p.nextToInput || strings.TrimSpace(p.dir) == "" {
		return filepath.Dir(input)
	}
	return p.dir
}

// Spec describes one conversion batch.
type Spec struct {
	Inputs      []string
	Format      string
	Quality     string
	Placement   Placement
	Overwrite   bool
	Concurrency int
}

// Normalize returns a copy with the format lower-cased, lossless formats
// pinned to "lossless", and concurrency defaulted and clamped to the input
// count.
func (s Spec) Normalize() Spec {
	out := s
	out.Inputs = append([]string(nil), s.Inputs...)
	out.Format = ffmpeg.NormalizeFormat(s.Format)
	out.Quality = strings.ToLower(strings.TrimSpace(s.Quality))
	if ffmpeg.IsLossless(out.Format) || out.Quality == "" {
		out.Quality = "lossless"
	}
	if out.Concurrency <= 0 {
		out.Concurrency = DefaultConcurrency
	}
	if n := len(out.Inputs); n > 0 && out.Concurrency > n {
		out.Concurrency = n
	}
	return out
}

// WithInputs returns a copy of s converting inputs instead.
func (s Spec) WithInputs(inputs []string) Spec {
	out := s
	out.Inputs = append([]string(nil), inputs...)
	return out
}

// OutputPath returns {dir}/{stem}.{format} for input.
func (s Spec) OutputPath(input string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(s.Placement.OutputDir(input), stem+"."+ffmpeg.NormalizeFormat(s.Format))
}

// PrimaryDir returns the directory the preflight checks: the shared folder,
// or the first input's parent.
func (s Spec) PrimaryDir() string {
	if !s.Placement.nextToInput && strings.TrimSpace(s.Placement.dir) != "" {
		return s.Placement.dir
	}
	if len(s.Inputs) == 0 {
		return ""
	}
	return filepath.Dir(s.Inputs[0])
}
