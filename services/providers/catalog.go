package providers

import (
	"context"
	"errors"
	"fmt"

	"lyrics-aggregator-go/logcolors"
	"lyrics-aggregator-go/services/lyrics"
	"lyrics-aggregator-go/services/matcher"

	log "github.com/sirupsen/logrus"
)

// Catalog runs the search, match, fetch and convert pipeline over one
// provider.
type Catalog struct {
	provider Provider
	matcher  *matcher.Matcher
}

// NewCatalog wraps p. A nil matcher uses matcher.DefaultOptions.
func NewCatalog(p Provider, m *matcher.Matcher) *Catalog {
	if m == nil {
		m = matcher.New(matcher.DefaultOptions())
	}
	return &Catalog{provider: p, matcher: m}
}

// Name returns the wrapped provider's name
func (c *Catalog) Name() string {
	return c.provider.Name()
}

// FetchLyrics finds the query in the provider's catalog and returns the
// converted lyrics. Errors are *ProviderError. Lookups that found nothing
// satisfy IsNotFound.
func (c *Catalog) FetchLyrics(ctx context.Context, q matcher.Query) (*Result, error) {
	name := c.provider.Name()

	if q.Title == "" && q.Artist == "" {
		return nil, NewProviderError(name, "title and artist cannot both be empty", nil)
	}

	log.Debugf("%s %s Searching: %s - %s", logcolors.LogProvider, logcolors.Provider(name), q.Title, q.Artist)

	candidates, err := c.provider.Search(ctx, q)
	if err != nil {
		return nil, NewProviderError(name, "search failed", err)
	}
	if len(candidates) == 0 {
		return nil, NewProviderError(name, fmt.Sprintf("no candidates for: %s - %s", q.Title, q.Artist), ErrNotFound)
	}

	match := c.matcher.FindBestMatch(candidates, q)
	if match == nil {
		return nil, NewProviderError(name,
			fmt.Sprintf("none of %d candidates matched: %s - %s", len(candidates), q.Title, q.Artist),
			matcher.ErrNoConfidentMatch)
	}

	payload, err := c.provider.Fetch(ctx, match.Candidate)
	if err != nil {
		return nil, NewProviderError(name, "fetch failed", err)
	}
	if payload == nil {
		return nil, NewProviderError(name, "no lyrics for matched track", ErrNotFound)
	}
	if payload.TrackDurationMs == 0 {
		payload.TrackDurationMs = match.Candidate.DurationMs
	}

	doc, err := Convert(payload)
	if err != nil {
		return nil, NewProviderError(name, "conversion failed", err)
	}
	if doc.IsEmpty() {
		return nil, NewProviderError(name, "matched track has no lyric lines", ErrNotFound)
	}
	if doc.ProviderTag == "" {
		doc.ProviderTag = name
	}

	log.Infof("%s %s Fetched %s lyrics for: %s - %s (%d lines, score: %.2f)",
		logcolors.LogProvider, logcolors.Provider(name), doc.Type,
		match.Candidate.Title, match.Candidate.Artist, len(doc.Lyrics), match.Score.FinalScore)

	return &Result{
		Success:       true,
		Document:      doc,
		Source:        name,
		Raw:           payload,
		ExactMetadata: exactMetadata(match.Candidate),
		SyncType:      payload.SyncType,
		Score:         match.Score.FinalScore,
		Ambiguous:     match.Ambiguous,
	}, nil
}

// IsConversionFailure reports whether err came from converting a payload.
func IsConversionFailure(err error) bool {
	var convErr *lyrics.ConversionError
	return errors.As(err, &convErr)
}

func exactMetadata(c matcher.Candidate) *matcher.Query {
	return &matcher.Query{
		Title:           c.Title,
		Artist:          c.Artist,
		Album:           c.Album,
		DurationSeconds: float64(c.DurationMs) / 1000,
	}
}
