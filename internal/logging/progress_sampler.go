package logging

// ProgressSampler decides when a batch progress line is worth logging: every
// Nth completion plus the final one.
type ProgressSampler struct {
	every int
	total int
}

// NewProgressSampler constructs a sampler for a batch of total units that
// emits every `every` completions (default 100).
func NewProgressSampler(every, total int) *ProgressSampler {
	if every <= 0 {
		every = 100
	}
	if total < 0 {
		total = 0
	}
	return &ProgressSampler{every: every, total: total}
}

// ShouldLog reports whether the completion count done should be logged.
func (s *ProgressSampler) ShouldLog(done int) bool {
	if s == nil {
		return true
	}
	if done <= 0 {
		return false
	}
	return done%s.every == 0 || done == s.total
}

// Percent returns the completion percentage for done, or 100 for an empty batch.
func (s *ProgressSampler) Percent(done int) float64 {
	if s == nil || s.total == 0 {
		return 100
	}
	return float64(done) * 100 / float64(s.total)
}
