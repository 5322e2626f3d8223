package attempt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/internal/origin"
)

// maxDrainBytes caps how much of a failed response body is read before the
// connection is released for reuse.
const maxDrainBytes = 64 << 10

// Executor issues single bounded attempts against origins. It is safe for
// concurrent use; all per-attempt state lives in the Outcome.
type Executor struct {
	client  *http.Client
	timeout time.Duration
}

// NewExecutor creates an executor whose attempts are each bounded by
// timeout. Redirects are never followed: a 3xx is surfaced as a bad status
// so the failover loop can decide, matching the exact-200 success policy.
func NewExecutor(timeout time.Duration) *Executor {
	return &Executor{
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout: timeout,
	}
}

// Timeout returns the per-attempt timeout window.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Do issues one plain-HTTP request to org, preserving the inbound method,
// path, query, headers, and body. The attempt gets a fresh timeout window;
// if the response head does not arrive within it, the in-flight request is
// cancelled and the outcome is KindTimeout. On success the outcome carries
// the open response and owns the cancel func until Outcome.Close, so the
// body can be streamed out without the timer severing it.
func (e *Executor) Do(ctx context.Context, org origin.Origin, inbound *http.Request, body []byte) *Outcome {
	attemptCtx, cancel := context.WithCancel(ctx)
	start := time.Now()

	// The timeout bounds the response head only. The timer cancels the
	// in-flight request when it fires; once a head has arrived it is
	// stopped, so a slow 200 body can stream past the attempt window.
	var timedOut atomic.Bool
	timer := time.AfterFunc(e.timeout, func() {
		timedOut.Store(true)
		cancel()
	})

	target := &url.URL{
		Scheme:   "http",
		Host:     org.Host,
		Path:     inbound.URL.Path,
		RawQuery: inbound.URL.RawQuery,
	}

	req, err := http.NewRequestWithContext(attemptCtx, inbound.Method, target.String(), bytes.NewReader(body))
	if err != nil {
		timer.Stop()
		cancel()
		return &Outcome{
			Kind:    KindTransportError,
			Origin:  org,
			Err:     err,
			Elapsed: time.Since(start),
		}
	}

	copyHeader(req.Header, inbound.Header)

	res, err := e.client.Do(req)
	elapsed := time.Since(start)
	timer.Stop()

	if err != nil {
		cancel()

		kind := KindTransportError
		if timedOut.Load() || errors.Is(err, context.DeadlineExceeded) {
			kind = KindTimeout
		}

		return &Outcome{
			Kind:    kind,
			Origin:  org,
			Err:     err,
			Elapsed: elapsed,
		}
	}

	if res.StatusCode != http.StatusOK {
		// Drain a bounded amount so the connection can be reused; a just-
		// failed origin is the one most likely to be dialed again.
		io.Copy(io.Discard, io.LimitReader(res.Body, maxDrainBytes))
		res.Body.Close()
		cancel()

		return &Outcome{
			Kind:       KindBadStatus,
			Origin:     org,
			StatusCode: res.StatusCode,
			Elapsed:    elapsed,
		}
	}

	return &Outcome{
		Kind:       KindSuccess,
		Origin:     org,
		StatusCode: res.StatusCode,
		Response:   res,
		Elapsed:    elapsed,
		release:    cancel,
	}
}

func copyHeader(dst, src http.Header) {
	for key, values := range src {
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}
