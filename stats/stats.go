package stats

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const noLatency = int64(^uint64(0) >> 1) // max int64

// Stats holds lookup and provider counters. All methods are safe for
// concurrent use.
type Stats struct {
	StartTime time.Time

	// Lookups
	Lookups      atomic.Int64
	StoreHits    atomic.Int64
	NotFound     atomic.Int64
	Persisted    atomic.Int64
	PersistFails atomic.Int64

	// Provider calls
	ProviderCalls  atomic.Int64
	ProviderErrors atomic.Int64
	ProviderSkips  atomic.Int64 // skipped because the circuit was open
	CircuitOpens   atomic.Int64

	// Matching and conversion
	Matches            atomic.Int64
	NoMatch            atomic.Int64
	Ambiguous          atomic.Int64
	ConversionFailures atomic.Int64

	// Lookup latency (microseconds)
	totalLatency atomic.Int64
	latencyCount atomic.Int64
	minLatency   atomic.Int64
	maxLatency   atomic.Int64

	// provider name -> *atomic.Int64 of selected results
	wins sync.Map
}

// New creates an empty Stats
func New() *Stats {
	s := &Stats{StartTime: time.Now()}
	s.minLatency.Store(noLatency)
	return s
}

var global = New()

// Get returns the process-wide stats instance
func Get() *Stats {
	return global
}

// RecordLookup records a finished lookup and how long it took
func (s *Stats) RecordLookup(duration time.Duration) {
	us := duration.Microseconds()

	s.Lookups.Add(1)
	s.totalLatency.Add(us)
	s.latencyCount.Add(1)

	for {
		current := s.minLatency.Load()
		if us >= current || s.minLatency.CompareAndSwap(current, us) {
			break
		}
	}
	for {
		current := s.maxLatency.Load()
		if us <= current || s.maxLatency.CompareAndSwap(current, us) {
			break
		}
	}
}

// RecordProviderCall records one provider attempt and its outcome.
// notFound and conversionFailed refine a non-nil error.
func (s *Stats) RecordProviderCall(err error, notFound, conversionFailed bool) {
	s.ProviderCalls.Add(1)
	switch {
	case err == nil:
		s.Matches.Add(1)
	case notFound:
		s.NoMatch.Add(1)
	case conversionFailed:
		s.ConversionFailures.Add(1)
		s.ProviderErrors.Add(1)
	default:
		s.ProviderErrors.Add(1)
	}
}

// RecordWin records the provider whose result was selected
func (s *Stats) RecordWin(provider string) {
	counter, _ := s.wins.LoadOrStore(provider, &atomic.Int64{})
	counter.(*atomic.Int64).Add(1)
}

// WinsSnapshot returns selected-result counts per provider
func (s *Stats) WinsSnapshot() map[string]int64 {
	out := make(map[string]int64)
	s.wins.Range(func(key, value any) bool {
		out[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})
	return out
}

// Uptime returns the time since StartTime
func (s *Stats) Uptime() time.Duration {
	return time.Since(s.StartTime)
}

// HitRate returns the percentage of lookups served from the store
func (s *Stats) HitRate() float64 {
	lookups := s.Lookups.Load()
	if lookups == 0 {
		return 0
	}
	return float64(s.StoreHits.Load()) / float64(lookups) * 100
}

// AvgLatency returns the average lookup latency
func (s *Stats) AvgLatency() time.Duration {
	count := s.latencyCount.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(s.totalLatency.Load()/count) * time.Microsecond
}

// MinLatency returns the fastest lookup
func (s *Stats) MinLatency() time.Duration {
	min := s.minLatency.Load()
	if min == noLatency {
		return 0
	}
	return time.Duration(min) * time.Microsecond
}

// MaxLatency returns the slowest lookup
func (s *Stats) MaxLatency() time.Duration {
	return time.Duration(s.maxLatency.Load()) * time.Microsecond
}

// Snapshot returns a point-in-time snapshot of all stats
func (s *Stats) Snapshot() map[string]interface{} {
	uptime := s.Uptime()

	wins := s.WinsSnapshot()
	ranking := make([]string, 0, len(wins))
	for name := range wins {
		ranking = append(ranking, name)
	}
	sort.Slice(ranking, func(i, j int) bool {
		if wins[ranking[i]] != wins[ranking[j]] {
			return wins[ranking[i]] > wins[ranking[j]]
		}
		return ranking[i] < ranking[j]
	})

	return map[string]interface{}{
		"process": map[string]interface{}{
			"start_time":     s.StartTime.Format(time.RFC3339),
			"uptime":         uptime.String(),
			"uptime_seconds": int64(uptime.Seconds()),
		},
		"lookups": map[string]interface{}{
			"total":         s.Lookups.Load(),
			"store_hits":    s.StoreHits.Load(),
			"hit_rate":      s.HitRate(),
			"not_found":     s.NotFound.Load(),
			"persisted":     s.Persisted.Load(),
			"persist_fails": s.PersistFails.Load(),
		},
		"providers": map[string]interface{}{
			"calls":         s.ProviderCalls.Load(),
			"errors":        s.ProviderErrors.Load(),
			"skipped":       s.ProviderSkips.Load(),
			"circuit_opens": s.CircuitOpens.Load(),
			"wins":          wins,
			"ranking":       ranking,
		},
		"matching": map[string]interface{}{
			"matches":             s.Matches.Load(),
			"no_match":            s.NoMatch.Load(),
			"ambiguous":           s.Ambiguous.Load(),
			"conversion_failures": s.ConversionFailures.Load(),
		},
		"latency": map[string]interface{}{
			"avg": s.AvgLatency().String(),
			"min": s.MinLatency().String(),
			"max": s.MaxLatency().String(),
		},
	}
}
