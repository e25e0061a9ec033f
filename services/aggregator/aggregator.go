// Package aggregator fans a lookup out to several providers in parallel and
// returns the best result.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lyrics-aggregator-go/circuitbreaker"
	"lyrics-aggregator-go/config"
	"lyrics-aggregator-go/logcolors"
	"lyrics-aggregator-go/services/lyrics"
	"lyrics-aggregator-go/services/matcher"
	"lyrics-aggregator-go/services/providers"
	"lyrics-aggregator-go/services/selector"
	"lyrics-aggregator-go/stats"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidQuery is returned for a query without title and artist.
var ErrInvalidQuery = errors.New("title and artist are required")

// Store is the persistence layer a lookup consults first and writes the
// selected result back to. Lookup returns a nil document on a miss.
type Store interface {
	Lookup(ctx context.Context, q matcher.Query) (*lyrics.Document, error)
	Persist(ctx context.Context, key string, r *providers.Result) error
}

// Options configure an Aggregator. Zero values fall back to defaults.
type Options struct {
	// Sources is the default provider order
	Sources []string

	ProviderTimeout  time.Duration
	SkipOpenCircuits bool

	CircuitBreakerThreshold int
	CircuitBreakerCooldown  time.Duration

	Matcher  *matcher.Matcher
	Store    Store
	Stats    *stats.Stats
	Breakers *circuitbreaker.Set
}

// OptionsFromConfig builds Options from the process configuration.
func OptionsFromConfig(cfg config.Config) Options {
	c := cfg.Configuration
	return Options{
		Sources:                 cfg.Sources(),
		ProviderTimeout:         time.Duration(c.ProviderTimeoutSecs) * time.Second,
		SkipOpenCircuits:        cfg.FeatureFlags.SkipOpenCircuits,
		CircuitBreakerThreshold: c.CircuitBreakerThreshold,
		CircuitBreakerCooldown:  time.Duration(c.CircuitBreakerCooldownSecs) * time.Second,
		Matcher:                 matcher.New(matcher.OptionsFromConfig(cfg)),
	}
}

// Request is one lookup.
type Request struct {
	Query matcher.Query

	// Sources overrides Options.Sources for this lookup
	Sources []string

	// Force skips the store lookup
	Force bool
}

// Aggregator runs lookups against the providers of a registry.
type Aggregator struct {
	registry *providers.Registry
	opts     Options
}

// New creates an Aggregator.
func New(registry *providers.Registry, opts Options) *Aggregator {
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = 10 * time.Second
	}
	if opts.Matcher == nil {
		opts.Matcher = matcher.New(matcher.DefaultOptions())
	}
	if opts.Stats == nil {
		opts.Stats = stats.Get()
	}
	if opts.Breakers == nil {
		st := opts.Stats
		opts.Breakers = circuitbreaker.NewSet(circuitbreaker.Config{
			Threshold: opts.CircuitBreakerThreshold,
			Cooldown:  opts.CircuitBreakerCooldown,
			OnStateChange: func(name string, from, to circuitbreaker.State) {
				if to == circuitbreaker.StateOpen {
					st.CircuitOpens.Add(1)
				}
			},
		})
	}
	if len(opts.Sources) == 0 {
		opts.Sources = registry.List()
	}
	return &Aggregator{registry: registry, opts: opts}
}

// Breakers exposes the per-provider circuit breakers.
func (a *Aggregator) Breakers() *circuitbreaker.Set {
	return a.opts.Breakers
}

// Lookup finds lyrics for req. Every source is queried in parallel and the
// result with the best sync granularity wins. When nothing is found the
// returned error satisfies errors.Is(err, providers.ErrNotFound) and the
// result lists the searched sources.
func (a *Aggregator) Lookup(ctx context.Context, req Request) (*providers.Result, error) {
	q := req.Query
	if q.Title == "" || q.Artist == "" {
		return nil, ErrInvalidQuery
	}

	start := time.Now()
	defer func() { a.opts.Stats.RecordLookup(time.Since(start)) }()

	id := uuid.NewString()
	logger := log.WithFields(log.Fields{"lookupId": id})
	sources := dedupe(req.Sources)
	if len(sources) == 0 {
		sources = dedupe(a.opts.Sources)
	}

	logger.Infof("%s Looking up: %s - %s (sources: %v)", logcolors.LogAggregator, q.Title, q.Artist, sources)

	if cached := a.fromStore(ctx, req, logger); cached != nil {
		cached.LookupID = id
		return cached, nil
	}

	results := make([]*providers.Result, len(sources))
	var g errgroup.Group
	for i, name := range sources {
		i, name := i, name
		g.Go(func() error {
			results[i] = a.fetchOne(ctx, name, q, logger)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("lookup %s cancelled: %w", id, err)
	}

	best := selector.SelectBest(results)
	if best == nil {
		a.opts.Stats.NotFound.Add(1)
		logger.Infof("%s No lyrics found for: %s - %s", logcolors.LogAggregator, q.Title, q.Artist)
		return &providers.Result{
			Success:  false,
			LookupID: id,
			Searched: sources,
			Error:    "no lyrics found",
		}, providers.ErrNotFound
	}

	best.LookupID = id
	a.opts.Stats.RecordWin(best.Source)
	logger.Infof("%s Selected %s (%s, %d lines) in %v", logcolors.LogAggregator,
		logcolors.Provider(best.Source), best.Document.Type, len(best.Document.Lyrics), time.Since(start))

	a.persist(ctx, best, q, logger)
	return best, nil
}

func (a *Aggregator) fromStore(ctx context.Context, req Request, logger *log.Entry) *providers.Result {
	if a.opts.Store == nil || req.Force {
		return nil
	}

	doc, err := a.opts.Store.Lookup(ctx, req.Query)
	if err != nil {
		logger.Warnf("%s Store lookup failed: %v", logcolors.LogStore, err)
		return nil
	}
	if doc.IsEmpty() {
		return nil
	}

	a.opts.Stats.StoreHits.Add(1)
	source := doc.ProviderTag
	if source == "" {
		source = doc.Metadata.Source
	}
	logger.Infof("%s Served from store (%s)", logcolors.LogStore, source)
	return &providers.Result{Success: true, Document: doc, Source: source}
}

// fetchOne queries a single provider. Failures are logged and mapped to nil.
func (a *Aggregator) fetchOne(ctx context.Context, name string, q matcher.Query, logger *log.Entry) *providers.Result {
	provider, err := a.registry.Get(name)
	if err != nil {
		logger.Warnf("%s %v", logcolors.LogWarning, err)
		return nil
	}

	breaker := a.opts.Breakers.Get(name)
	if a.opts.SkipOpenCircuits && !breaker.Allow() {
		a.opts.Stats.ProviderSkips.Add(1)
		logger.Infof("%s %s skipped, circuit %s (retry in %v)", logcolors.CircuitBreakerPrefix(name),
			logcolors.Provider(name), breaker.State(), breaker.TimeUntilRetry().Round(time.Second))
		return nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, a.opts.ProviderTimeout)
	defer cancel()

	result, err := providers.NewCatalog(provider, a.opts.Matcher).FetchLyrics(fetchCtx, q)

	notFound := providers.IsNotFound(err)
	a.opts.Stats.RecordProviderCall(err, notFound, providers.IsConversionFailure(err))

	switch {
	case err == nil:
		breaker.RecordSuccess()
		if result.Ambiguous {
			a.opts.Stats.Ambiguous.Add(1)
		}
		return result
	case notFound:
		breaker.RecordSuccess()
		logger.Debugf("%s %v", logcolors.LogNoMatch, err)
	case ctx.Err() != nil:
		// the whole lookup was cancelled, not this provider's fault
		logger.Debugf("%s %s cancelled", logcolors.LogProvider, logcolors.Provider(name))
	default:
		breaker.RecordFailure()
		logger.Warnf("%s %v", logcolors.LogProvider, err)
	}
	return nil
}

func (a *Aggregator) persist(ctx context.Context, best *providers.Result, q matcher.Query, logger *log.Entry) {
	if a.opts.Store == nil || !selector.ShouldPersist(best) {
		return
	}

	key := selector.CacheKey(selector.CacheMetadata(best, q))
	if err := a.opts.Store.Persist(ctx, key, best); err != nil {
		a.opts.Stats.PersistFails.Add(1)
		logger.Warnf("%s Failed to persist %q: %v", logcolors.LogStore, key, err)
		return
	}
	a.opts.Stats.Persisted.Add(1)
	logger.Debugf("%s Persisted %q", logcolors.LogStore, key)
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
