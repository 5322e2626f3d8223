package origin

// Pool holds the candidate origins for a single inbound request. Each pool
// owns its own copy of the configured origin list, so draining one request's
// pool never affects another request in flight. Pools shrink by removal only
// and are discarded once the request's failover loop terminates.
type Pool struct {
	remaining []Origin
	policy    Policy
}

// NewPool copies origins into a fresh request-scoped pool governed by the
// given policy.
func NewPool(origins []Origin, policy Policy) *Pool {
	remaining := make([]Origin, len(origins))
	copy(remaining, origins)

	return &Pool{
		remaining: remaining,
		policy:    policy,
	}
}

// Next removes and returns the origin chosen by the pool's policy.
// It returns ErrPoolExhausted once every origin has been drawn.
func (p *Pool) Next() (Origin, error) {
	if len(p.remaining) == 0 {
		return Origin{}, ErrPoolExhausted
	}

	i := p.policy.Pick(len(p.remaining))
	chosen := p.remaining[i]
	p.remaining = append(p.remaining[:i], p.remaining[i+1:]...)

	return chosen, nil
}

// Len returns the number of origins not yet drawn.
func (p *Pool) Len() int {
	return len(p.remaining)
}
