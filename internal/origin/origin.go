package origin

import "errors"

// ErrPoolExhausted is returned by Pool.Next when no untried origins remain
// for the current request.
var ErrPoolExhausted = errors.New("origin pool exhausted")

// Origin identifies a candidate upstream server by hostname or IP, with an
// optional port. Origins are read from configuration at startup and never
// mutated.
type Origin struct {
	Host string
}

func (o Origin) String() string {
	return o.Host
}
