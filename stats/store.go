package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"lyrics-aggregator-go/logcolors"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	statsBucketName = "stats"
	statsKey        = "lookup_stats"
)

// Store persists counters across runs in a dedicated BoltDB file
type Store struct {
	db     *bolt.DB
	dbPath string
	stats  *Stats
	mu     sync.Mutex
}

// PersistedStats is the on-disk form of Stats
type PersistedStats struct {
	Lookups            int64 `json:"lookups"`
	StoreHits          int64 `json:"store_hits"`
	NotFound           int64 `json:"not_found"`
	Persisted          int64 `json:"persisted"`
	PersistFails       int64 `json:"persist_fails"`
	ProviderCalls      int64 `json:"provider_calls"`
	ProviderErrors     int64 `json:"provider_errors"`
	ProviderSkips      int64 `json:"provider_skips"`
	CircuitOpens       int64 `json:"circuit_opens"`
	Matches            int64 `json:"matches"`
	NoMatch            int64 `json:"no_match"`
	Ambiguous          int64 `json:"ambiguous"`
	ConversionFailures int64 `json:"conversion_failures"`

	TotalLatency int64 `json:"total_latency"`
	LatencyCount int64 `json:"latency_count"`
	MinLatency   int64 `json:"min_latency"`
	MaxLatency   int64 `json:"max_latency"`

	Wins map[string]int64 `json:"wins"`

	LastSaved    time.Time `json:"last_saved"`
	FirstStarted time.Time `json:"first_started"`
}

// NewStore opens (or creates) the stats database at dbPath for s
func NewStore(dbPath string, s *Stats) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open stats database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(statsBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create stats bucket: %w", err)
	}

	log.Debugf("%s Stats store opened at %s", logcolors.LogStats, dbPath)
	return &Store{db: db, dbPath: dbPath, stats: s}, nil
}

// Load adds the persisted counters to the in-memory stats. Missing data is
// not an error.
func (st *Store) Load() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	var persisted PersistedStats
	found := false
	err := st.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(statsBucketName))
		if b == nil {
			return nil
		}
		data := b.Get([]byte(statsKey))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &persisted)
	})
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	if !found {
		return nil
	}

	s := st.stats
	s.Lookups.Add(persisted.Lookups)
	s.StoreHits.Add(persisted.StoreHits)
	s.NotFound.Add(persisted.NotFound)
	s.Persisted.Add(persisted.Persisted)
	s.PersistFails.Add(persisted.PersistFails)
	s.ProviderCalls.Add(persisted.ProviderCalls)
	s.ProviderErrors.Add(persisted.ProviderErrors)
	s.ProviderSkips.Add(persisted.ProviderSkips)
	s.CircuitOpens.Add(persisted.CircuitOpens)
	s.Matches.Add(persisted.Matches)
	s.NoMatch.Add(persisted.NoMatch)
	s.Ambiguous.Add(persisted.Ambiguous)
	s.ConversionFailures.Add(persisted.ConversionFailures)
	s.totalLatency.Add(persisted.TotalLatency)
	s.latencyCount.Add(persisted.LatencyCount)

	if persisted.MinLatency > 0 && persisted.MinLatency < s.minLatency.Load() {
		s.minLatency.Store(persisted.MinLatency)
	}
	if persisted.MaxLatency > s.maxLatency.Load() {
		s.maxLatency.Store(persisted.MaxLatency)
	}

	for name, count := range persisted.Wins {
		counter, _ := s.wins.LoadOrStore(name, &atomic.Int64{})
		counter.(*atomic.Int64).Add(count)
	}

	if !persisted.FirstStarted.IsZero() && persisted.FirstStarted.Before(s.StartTime) {
		s.StartTime = persisted.FirstStarted
	}

	log.Debugf("%s Loaded persisted stats (lookups: %d, first started: %s)",
		logcolors.LogStats, persisted.Lookups, persisted.FirstStarted.Format(time.RFC3339))
	return nil
}

// Save writes the current counters to disk
func (st *Store) Save() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := st.stats
	persisted := PersistedStats{
		Lookups:            s.Lookups.Load(),
		StoreHits:          s.StoreHits.Load(),
		NotFound:           s.NotFound.Load(),
		Persisted:          s.Persisted.Load(),
		PersistFails:       s.PersistFails.Load(),
		ProviderCalls:      s.ProviderCalls.Load(),
		ProviderErrors:     s.ProviderErrors.Load(),
		ProviderSkips:      s.ProviderSkips.Load(),
		CircuitOpens:       s.CircuitOpens.Load(),
		Matches:            s.Matches.Load(),
		NoMatch:            s.NoMatch.Load(),
		Ambiguous:          s.Ambiguous.Load(),
		ConversionFailures: s.ConversionFailures.Load(),
		TotalLatency:       s.totalLatency.Load(),
		LatencyCount:       s.latencyCount.Load(),
		MaxLatency:         s.maxLatency.Load(),
		Wins:               s.WinsSnapshot(),
		LastSaved:          time.Now(),
		FirstStarted:       s.StartTime,
	}
	if min := s.minLatency.Load(); min != noLatency {
		persisted.MinLatency = min
	}

	data, err := json.Marshal(persisted)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	err = st.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(statsBucketName))
		if b == nil {
			return fmt.Errorf("stats bucket not found")
		}
		return b.Put([]byte(statsKey), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}
	return nil
}

// Close saves the counters and closes the database
func (st *Store) Close() error {
	if err := st.Save(); err != nil {
		log.Warnf("%s Failed to save stats on close: %v", logcolors.LogStats, err)
	}
	return st.db.Close()
}
