// Failtest drives concurrent requests at a running failover router and
// reports the status distribution and latency percentiles. Point it at the
// router while killing and restarting mock origins to watch failover
// behavior under load.
//
// Usage:
//
//	go run ./scripts/failtest -url http://localhost:8080/ -requests 1000 -concurrency 10
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"
)

type result struct {
	status  int
	elapsed time.Duration
	err     error
}

func main() {
	target := flag.String("url", "http://localhost:8080/", "router URL to hit")
	requests := flag.Int("requests", 1000, "total number of requests")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	flag.Parse()

	jobs := make(chan struct{})
	results := make(chan result, *requests)

	var wg sync.WaitGroup
	for w := 0; w < *concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				results <- fire(*target)
			}
		}()
	}

	start := time.Now()
	for i := 0; i < *requests; i++ {
		jobs <- struct{}{}
	}
	close(jobs)
	wg.Wait()
	close(results)
	total := time.Since(start)

	statuses := make(map[int]int)
	var latencies []time.Duration
	errors := 0

	for r := range results {
		if r.err != nil {
			errors++
			continue
		}
		statuses[r.status]++
		latencies = append(latencies, r.elapsed)
	}

	fmt.Printf("%d requests in %s (%.1f req/s)\n", *requests, total.Round(time.Millisecond), float64(*requests)/total.Seconds())
	fmt.Printf("errors: %d\n", errors)

	var codes []int
	for code := range statuses {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Printf("  %d: %d\n", code, statuses[code])
	}

	if len(latencies) == 0 {
		os.Exit(0)
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	fmt.Printf("latency p50=%s p90=%s p99=%s max=%s\n",
		percentile(latencies, 0.50),
		percentile(latencies, 0.90),
		percentile(latencies, 0.99),
		latencies[len(latencies)-1])
}

func fire(target string) result {
	start := time.Now()

	res, err := http.Get(target)
	if err != nil {
		return result{err: err, elapsed: time.Since(start)}
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	return result{status: res.StatusCode, elapsed: time.Since(start)}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
