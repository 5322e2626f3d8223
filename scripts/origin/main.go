// Origin is a simple mock upstream used for manual failover testing.
// It serves every path with a configurable status, body, and delay, so a
// set of these on different ports can simulate healthy, slow, and broken
// origins.
//
// Usage:
//
//	go run ./scripts/origin -port 8081
//	go run ./scripts/origin -port 8082 -status 500
//	go run ./scripts/origin -port 8083 -delay 2s
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"
)

func main() {
	port := flag.Int("port", 8081, "port to listen on")
	status := flag.Int("status", 200, "status code to answer with")
	body := flag.String("body", "", "response body (defaults to a line naming the port)")
	delay := flag.Duration("delay", 0, "sleep before answering, to trigger attempt timeouts")
	flag.Parse()

	response := *body
	if response == "" {
		response = fmt.Sprintf("origin on port %d\n", *port)
	}

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

		if *delay > 0 {
			time.Sleep(*delay)
		}

		w.WriteHeader(*status)
		fmt.Fprint(w, response)
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("mock origin listening on %s (status=%d delay=%s)", addr, *status, *delay)
	log.Fatal(http.ListenAndServe(addr, nil))
}
