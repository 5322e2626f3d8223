package attempt

import (
	"context"
	"net/http"
	"time"

	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/internal/origin"
)

// Kind classifies how an attempt ended.
type Kind int

const (
	KindSuccess Kind = iota
	KindBadStatus
	KindTimeout
	KindTransportError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindBadStatus:
		return "bad_status"
	case KindTimeout:
		return "timeout"
	case KindTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// Outcome is the result of one attempt against one origin. Failed outcomes
// are fully closed by the executor; a successful outcome still holds the
// open response body and the attempt's cancel func, and the caller must
// call Close once the body has been consumed.
type Outcome struct {
	Kind       Kind
	Origin     origin.Origin
	StatusCode int            // set for Success and BadStatus
	Err        error          // set for Timeout and TransportError
	Response   *http.Response // set for Success only
	Elapsed    time.Duration

	release context.CancelFunc
}

// Close closes the response body, if any, and releases the attempt's timer.
// It is safe to call on any outcome.
func (o *Outcome) Close() {
	if o.Response != nil && o.Response.Body != nil {
		o.Response.Body.Close()
	}
	if o.release != nil {
		o.release()
		o.release = nil
	}
}
