package goSession

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one engine counter or histogram.
type MetricID uint16

const (
	// MetricSessionCreated counts sessions established by CreateSession or Login.
	MetricSessionCreated MetricID = iota
	// MetricSessionReplaced counts creations that replaced a live session.
	MetricSessionReplaced
	// MetricSessionValidated counts successful validations.
	MetricSessionValidated
	// MetricSessionValidationMiss counts validations with no live session.
	MetricSessionValidationMiss
	// MetricSessionExpiredInactive counts sessions removed past their inactivity deadline.
	MetricSessionExpiredInactive
	// MetricSessionExpiredHard counts sessions removed past their hard deadline.
	MetricSessionExpiredHard
	// MetricSessionRevoked counts explicit revocations, including forced logouts.
	MetricSessionRevoked
	// MetricActivityAccepted counts activities that reached a live session.
	MetricActivityAccepted
	// MetricActivityIgnored counts interactions rejected by category gating.
	MetricActivityIgnored
	// MetricActivitySuppressed counts interactions dropped by spam suppression.
	MetricActivitySuppressed
	// MetricActivityNoSession counts eligible activities without a live session.
	MetricActivityNoSession
	// MetricDeadlineExtended counts activities that moved the inactivity deadline.
	MetricDeadlineExtended
	// MetricWarningReprieved counts warnings cleared by a large enough renewal.
	MetricWarningReprieved
	// MetricWarningSent counts delivered timeout warnings.
	MetricWarningSent
	// MetricWarningFailed counts timeout warnings the notifier failed to deliver.
	MetricWarningFailed
	// MetricSweepRun counts completed sweeps.
	MetricSweepRun
	// MetricManualExtension counts operator extensions.
	MetricManualExtension
	// MetricForcedLogout counts operator forced logouts.
	MetricForcedLogout
	// MetricLoginSuccess counts successful credential logins.
	MetricLoginSuccess
	// MetricLoginFailure counts rejected or failed credential logins.
	MetricLoginFailure
	// MetricNotifierFailure counts every failed notifier call.
	MetricNotifierFailure
	// MetricValidateLatency is the validation latency histogram.
	MetricValidateLatency
	// MetricSweepLatency is the sweep duration histogram.
	MetricSweepLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free engine counters and latency histograms.
//
// Counters are cache-line padded; all methods are safe on a nil receiver.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters and histograms.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a [Metrics] according to cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether histograms are recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc increments counter id.
func (m *Metrics) Inc(id MetricID) {
	m.Add(id, 1)
}

// Add adds n to counter id.
func (m *Metrics) Add(id MetricID, n uint64) {
	if m == nil || !m.enabled || id >= metricIDCount || n == 0 {
		return
	}
	atomic.AddUint64(&m.counters[id].value, n)
}

// Observe records d in histogram id. Only histogram metric IDs are accepted.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || !isHistogram(id) {
		return
	}
	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters and, when enabled, histograms.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 2),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if isHistogram(id) {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		for _, id := range []MetricID{MetricValidateLatency, MetricSweepLatency} {
			buckets := make([]uint64, histBucketCount)
			for i := 0; i < histBucketCount; i++ {
				buckets[i] = atomic.LoadUint64(&m.histograms[id].buckets[i])
			}
			s.Histograms[id] = buckets
		}
	}

	return s
}

func isHistogram(id MetricID) bool {
	return id == MetricValidateLatency || id == MetricSweepLatency
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
