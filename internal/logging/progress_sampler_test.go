package logging

import "testing"

func TestProgressSamplerSteps(t *testing.T) {
	s := NewProgressSampler(10)
	steps := []struct {
		key     string
		percent float64
		want    bool
	}{
		{"downloading", 0, true},
		{"downloading", 4, false},
		{"downloading", 10.5, true},
		{"downloading", 19.9, false},
		{"downloading", 35, true},
		{"downloading", -1, false},
		{"finished", -1, true},
		{"finished", -1, false},
		{"finished", 100, true},
		{"finished", 140, false},
		{" finished ", 100, false},
	}
	for i, step := range steps {
		if got := s.ShouldLog(step.key, step.percent); got != step.want {
			t.Fatalf("step %d (%q, %.1f): got %v want %v", i, step.key, step.percent, got, step.want)
		}
	}
}

func TestProgressSamplerDefaultsAndNil(t *testing.T) {
	var nilSampler *ProgressSampler
	if !nilSampler.ShouldLog("x", 1) {
		t.Fatal("nil sampler should log everything")
	}
	s := NewProgressSampler(0)
	if !s.ShouldLog("", 0) {
		t.Fatal("first sample at 0% should log")
	}
	if s.ShouldLog("", 4.9) {
		t.Fatal("default step is 5%")
	}
	if !s.ShouldLog("", 5) {
		t.Fatal("crossing 5% should log")
	}
}
