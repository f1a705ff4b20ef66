package logging

import "strings"

// ProgressSampler thins progress logging to one line per percentage step,
// plus one whenever the phase key changes. The zero value is not usable.
type ProgressSampler struct {
	step   float64
	key    string
	bucket int
}

// NewProgressSampler returns a sampler emitting every step percent; step
// defaults to 5.
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 {
		step = 5
	}
	return &ProgressSampler{step: step, bucket: -1}
}

// ShouldLog reports whether a progress sample is worth a log line. A
// negative percent means unknown and only logs on a key change.
func (s *ProgressSampler) ShouldLog(key string, percent float64) bool {
	if s == nil {
		return true
	}
	key = strings.TrimSpace(key)
	changed := key != s.key
	if changed {
		s.key = key
		s.bucket = -1
	}
	if percent < 0 {
		return changed
	}
	bucket := int(min(percent, 100) / s.step)
	if bucket <= s.bucket {
		return changed
	}
	s.bucket = bucket
	return true
}
