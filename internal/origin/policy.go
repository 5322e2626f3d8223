package origin

import "math/rand/v2"

// Policy decides which of the origins remaining in a pool is drawn next.
// The policy is chosen once at startup and fixed for the life of the
// process; it is never switched mid-request.
type Policy interface {
	// Pick returns an index in [0, remaining). It is only called with
	// remaining >= 1.
	Pick(remaining int) int
	Name() string
}

type sequentialPolicy struct{}

func (sequentialPolicy) Pick(int) int {
	return 0
}

func (sequentialPolicy) Name() string {
	return "sequential"
}

// NewSequentialPolicy draws origins in configuration order, so the first
// configured origin is always the primary and later entries are fallbacks.
func NewSequentialPolicy() Policy {
	return sequentialPolicy{}
}

type randomPolicy struct{}

func (randomPolicy) Pick(remaining int) int {
	return rand.IntN(remaining)
}

func (randomPolicy) Name() string {
	return "random"
}

// NewRandomPolicy draws uniformly over the origins remaining at each call.
// Combined with the pool's removal-on-draw, a request visits origins in an
// unpredictable order but still visits each at most once.
func NewRandomPolicy() Policy {
	return randomPolicy{}
}
