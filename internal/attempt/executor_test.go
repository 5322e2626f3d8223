package attempt_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/internal/attempt"
	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/internal/origin"
)

func originFor(server *httptest.Server) origin.Origin {
	return origin.Origin{Host: strings.TrimPrefix(server.URL, "http://")}
}

func inboundRequest(method, target string, body io.Reader) *http.Request {
	return httptest.NewRequest(method, target, body)
}

var _ = Describe("Executor", func() {
	var executor *attempt.Executor

	BeforeEach(func() {
		executor = attempt.NewExecutor(500 * time.Millisecond)
	})

	Describe("Do", func() {
		Context("when the origin answers 200", func() {
			var server *httptest.Server

			BeforeEach(func() {
				server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("X-Served-By", "mock")
					w.WriteHeader(http.StatusOK)
					w.Write([]byte("hello from origin"))
				}))
			})

			AfterEach(func() {
				server.Close()
			})

			It("should classify the outcome as success and preserve the response", func() {
				outcome := executor.Do(context.Background(), originFor(server), inboundRequest(http.MethodGet, "http://edge.example/widgets", nil), nil)
				defer outcome.Close()

				Expect(outcome.Kind).To(Equal(attempt.KindSuccess))
				Expect(outcome.StatusCode).To(Equal(http.StatusOK))
				Expect(outcome.Response).NotTo(BeNil())
				Expect(outcome.Response.Header.Get("X-Served-By")).To(Equal("mock"))

				body, err := io.ReadAll(outcome.Response.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(body)).To(Equal("hello from origin"))
			})

			It("should let a body stream past the attempt window once the head has arrived", func() {
				slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
					w.(http.Flusher).Flush()

					for i := 0; i < 10; i++ {
						time.Sleep(30 * time.Millisecond)
						w.Write([]byte("chunk-"))
						w.(http.Flusher).Flush()
					}
				}))
				defer slow.Close()

				// The body takes ~300ms against a 100ms attempt timeout;
				// only the head is bounded by the window.
				executor = attempt.NewExecutor(100 * time.Millisecond)

				outcome := executor.Do(context.Background(), originFor(slow), inboundRequest(http.MethodGet, "http://edge.example/stream", nil), nil)
				defer outcome.Close()

				Expect(outcome.Kind).To(Equal(attempt.KindSuccess))

				body, err := io.ReadAll(outcome.Response.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(body)).To(Equal(strings.Repeat("chunk-", 10)))
			})

			It("should leave the body readable until Close is called", func() {
				outcome := executor.Do(context.Background(), originFor(server), inboundRequest(http.MethodGet, "http://edge.example/", nil), nil)

				body, err := io.ReadAll(outcome.Response.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(body).NotTo(BeEmpty())

				outcome.Close()
			})
		})

		Context("when the origin answers a non-200 status", func() {
			It("should classify 500 as a bad status", func() {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusInternalServerError)
				}))
				defer server.Close()

				outcome := executor.Do(context.Background(), originFor(server), inboundRequest(http.MethodGet, "http://edge.example/", nil), nil)

				Expect(outcome.Kind).To(Equal(attempt.KindBadStatus))
				Expect(outcome.StatusCode).To(Equal(http.StatusInternalServerError))
				Expect(outcome.Response).To(BeNil())
			})

			It("should classify other success-class codes as bad statuses too", func() {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusCreated)
				}))
				defer server.Close()

				outcome := executor.Do(context.Background(), originFor(server), inboundRequest(http.MethodGet, "http://edge.example/", nil), nil)

				Expect(outcome.Kind).To(Equal(attempt.KindBadStatus))
				Expect(outcome.StatusCode).To(Equal(http.StatusCreated))
			})

			It("should discard the failed response body", func() {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusServiceUnavailable)
					w.Write([]byte(strings.Repeat("x", 128<<10)))
				}))
				defer server.Close()

				outcome := executor.Do(context.Background(), originFor(server), inboundRequest(http.MethodGet, "http://edge.example/", nil), nil)

				Expect(outcome.Kind).To(Equal(attempt.KindBadStatus))
				Expect(outcome.StatusCode).To(Equal(http.StatusServiceUnavailable))
				Expect(outcome.Response).To(BeNil())
			})

			It("should surface redirects as bad statuses instead of following them", func() {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					http.Redirect(w, r, "/elsewhere", http.StatusFound)
				}))
				defer server.Close()

				outcome := executor.Do(context.Background(), originFor(server), inboundRequest(http.MethodGet, "http://edge.example/", nil), nil)

				Expect(outcome.Kind).To(Equal(attempt.KindBadStatus))
				Expect(outcome.StatusCode).To(Equal(http.StatusFound))
			})
		})

		Context("when the origin is slower than the timeout", func() {
			It("should abort the attempt and classify it as a timeout", func() {
				release := make(chan struct{})
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					select {
					case <-release:
					case <-r.Context().Done():
					}
				}))
				defer server.Close()
				defer close(release)

				executor = attempt.NewExecutor(50 * time.Millisecond)

				start := time.Now()
				outcome := executor.Do(context.Background(), originFor(server), inboundRequest(http.MethodGet, "http://edge.example/", nil), nil)
				elapsed := time.Since(start)

				Expect(outcome.Kind).To(Equal(attempt.KindTimeout))
				Expect(outcome.Err).To(HaveOccurred())
				// Bounded by the timeout plus scheduling overhead, not by
				// how long the origin dawdles.
				Expect(elapsed).To(BeNumerically("<", 400*time.Millisecond))
			})
		})

		Context("when the origin is unreachable", func() {
			It("should classify the failure as a transport error", func() {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
				unreachable := originFor(server)
				server.Close()

				outcome := executor.Do(context.Background(), unreachable, inboundRequest(http.MethodGet, "http://edge.example/", nil), nil)

				Expect(outcome.Kind).To(Equal(attempt.KindTransportError))
				Expect(outcome.Err).To(HaveOccurred())
			})
		})

		Context("request forwarding", func() {
			var (
				server       *httptest.Server
				seenMethod   string
				seenPath     string
				seenQuery    string
				seenHeader   string
				seenBody     []byte
			)

			BeforeEach(func() {
				server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					seenMethod = r.Method
					seenPath = r.URL.Path
					seenQuery = r.URL.RawQuery
					seenHeader = r.Header.Get("X-Request-Id")
					seenBody, _ = io.ReadAll(r.Body)
					w.WriteHeader(http.StatusOK)
				}))
			})

			AfterEach(func() {
				server.Close()
			})

			It("should preserve method, path, query, headers, and body", func() {
				inbound := inboundRequest(http.MethodPost, "http://edge.example/api/items?page=2&sort=asc", nil)
				inbound.Header.Set("X-Request-Id", "req-123")

				outcome := executor.Do(context.Background(), originFor(server), inbound, []byte(`{"name":"widget"}`))
				defer outcome.Close()

				Expect(outcome.Kind).To(Equal(attempt.KindSuccess))
				Expect(seenMethod).To(Equal(http.MethodPost))
				Expect(seenPath).To(Equal("/api/items"))
				Expect(seenQuery).To(Equal("page=2&sort=asc"))
				Expect(seenHeader).To(Equal("req-123"))
				Expect(string(seenBody)).To(Equal(`{"name":"widget"}`))
			})
		})
	})

	Describe("Timeout", func() {
		It("should report the configured window", func() {
			Expect(attempt.NewExecutor(250 * time.Millisecond).Timeout()).To(Equal(250 * time.Millisecond))
		})
	})
})

var _ = Describe("Kind", func() {
	It("should render stable reason strings", func() {
		Expect(attempt.KindSuccess.String()).To(Equal("success"))
		Expect(attempt.KindBadStatus.String()).To(Equal("bad_status"))
		Expect(attempt.KindTimeout.String()).To(Equal("timeout"))
		Expect(attempt.KindTransportError.String()).To(Equal("transport_error"))
	})
})
