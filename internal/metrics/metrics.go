package metrics

import (
	"sort"
	"sync"
	"time"
)

type Metrics struct {
	mutex        sync.RWMutex
	requests     int64
	exhausted    int64
	attempts     map[string]int64
	successes    map[string]int64
	failures     map[string]map[string]int64
	attemptTimes map[string][]time.Duration
	startTime    time.Time
}

type Snapshot struct {
	TotalRequests     int64                    `json:"total_requests"`
	ExhaustedRequests int64                    `json:"exhausted_requests"`
	Uptime            time.Duration            `json:"uptime"`
	Policy            string                   `json:"policy"`
	Origins           map[string]OriginMetrics `json:"origins"`
}

type OriginMetrics struct {
	Attempts   int64            `json:"attempts"`
	Successes  int64            `json:"successes"`
	Failures   map[string]int64 `json:"failures"`
	AvgAttempt time.Duration    `json:"avg_attempt"`
	P50Attempt time.Duration    `json:"p50_attempt"`
	P95Attempt time.Duration    `json:"p95_attempt"`
	P99Attempt time.Duration    `json:"p99_attempt"`
}

func (m *Metrics) IncrementRequests() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.requests++
}

func (m *Metrics) IncrementExhausted() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.exhausted++
}

func (m *Metrics) RecordSuccess(origin string, duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.attempts[origin]++
	m.successes[origin]++
	m.recordAttemptTime(origin, duration)
}

func (m *Metrics) RecordFailure(origin, reason string, duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.attempts[origin]++

	if m.failures[origin] == nil {
		m.failures[origin] = make(map[string]int64)
	}
	m.failures[origin][reason]++

	m.recordAttemptTime(origin, duration)
}

// recordAttemptTime keeps a bounded window of recent attempt durations so
// percentile math stays cheap. Callers must hold the mutex.
func (m *Metrics) recordAttemptTime(origin string, duration time.Duration) {
	m.attemptTimes[origin] = append(m.attemptTimes[origin], duration)

	if len(m.attemptTimes[origin]) > 1000 {
		m.attemptTimes[origin] = m.attemptTimes[origin][1:]
	}
}

func (m *Metrics) Snapshot(policy string) Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		TotalRequests:     m.requests,
		ExhaustedRequests: m.exhausted,
		Uptime:            time.Since(m.startTime),
		Policy:            policy,
		Origins:           make(map[string]OriginMetrics),
	}

	allOrigins := make(map[string]bool)
	for origin := range m.attempts {
		allOrigins[origin] = true
	}
	for origin := range m.successes {
		allOrigins[origin] = true
	}
	for origin := range m.failures {
		allOrigins[origin] = true
	}

	for origin := range allOrigins {
		om := OriginMetrics{
			Attempts:  m.attempts[origin],
			Successes: m.successes[origin],
			Failures:  m.failures[origin],
		}

		durations := m.attemptTimes[origin]
		if len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			om.AvgAttempt = average(sorted)
			om.P50Attempt = percentile(sorted, 0.50)
			om.P95Attempt = percentile(sorted, 0.95)
			om.P99Attempt = percentile(sorted, 0.99)
		}

		snap.Origins[origin] = om
	}

	return snap
}

func NewMetrics() *Metrics {
	return &Metrics{
		attempts:     make(map[string]int64),
		successes:    make(map[string]int64),
		failures:     make(map[string]map[string]int64),
		attemptTimes: make(map[string][]time.Duration),
		startTime:    time.Now(),
	}
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
