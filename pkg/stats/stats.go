package stats

import (
	"bufio"
	"context"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	BYTE = 1 << (10 * iota)
	KILOBYTE
	MEGABYTE
	GIGABYTE
)

var (
	eventsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shoyu",
			Name:      "events_total",
			Help:      "Number of exchange events published, by type.",
		},
		[]string{"event"},
	)
	requestsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shoyu",
			Name:      "http_requests_total",
			Help:      "Number of HTTP requests served, by route and status code.",
		},
		[]string{"method", "route", "code"},
	)
	requestsDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shoyu",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests, by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	blockGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "shoyu",
			Name:      "block_number",
			Help:      "Last block number observed by the exchange.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		eventsCounter, requestsCounter, requestsDuration, blockGauge,
	)
}

// CountEvent increments the counter of the given event type.
func CountEvent(event string) {
	eventsCounter.WithLabelValues(event).Inc()
}

// ObserveRequest records a served HTTP request.
func ObserveRequest(method, route string, code int, elapsed time.Duration) {
	requestsCounter.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	requestsDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// SetBlockNumber updates the last observed block.
func SetBlockNumber(block uint64) {
	blockGauge.Set(float64(block))
}

// EnableMemoryStatistics enables go routine that periodically prints memory
// usage of the go process. Once ctx is done, the registered metrics are
// dumped to dumpPath, if not empty.
func EnableMemoryStatistics(
	ctx context.Context, interval time.Duration, dumpPath string,
) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				PrintMemoryStatistics()
				PrintNumOfRoutines()
			case <-ctx.Done():
				if len(dumpPath) <= 0 {
					return
				}
				if err := DumpPrometheusDefaults(dumpPath); err != nil {
					log.WithError(err).Warn("failed to dump metrics")
				}
				return
			}
		}
	}()
}

// toGigabytes returns given memory in bytes to gigabytes.
func toGigabytes(bytes uint64) float64 {
	return float64(bytes) / GIGABYTE
}

// PrintMemoryStatistics prints memory statistics using go runtime library.
func PrintMemoryStatistics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	log.Debugf(
		"Total allocated: %.3fGB, Heap allocated: %.3fGB, "+
			"Allocated objects count: %v, Freed objects count: %v",
		toGigabytes(memStats.TotalAlloc),
		toGigabytes(memStats.HeapAlloc),
		memStats.Mallocs,
		memStats.Frees,
	)
}

// DumpPrometheusDefaults appends the registered metrics to the given file.
func DumpPrometheusDefaults(path string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	metricFamily, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(file)
	for _, v := range metricFamily {
		if _, err := writer.WriteString(v.String() + "\n"); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// PrintNumOfRoutines prints number of go routines currently running
func PrintNumOfRoutines() {
	log.Debugf("Num of go routines: %v", runtime.NumGoroutine())
}
