// Package selector picks the best of several provider results and derives
// the cache metadata for it.
package selector

import (
	"strings"

	"lyrics-aggregator-go/logcolors"
	"lyrics-aggregator-go/services/lyrics"
	"lyrics-aggregator-go/services/matcher"
	"lyrics-aggregator-go/services/providers"
	"lyrics-aggregator-go/utils"

	log "github.com/sirupsen/logrus"
)

// Sync priorities, higher is better
const (
	PriorityNone     = 0
	PriorityUnsynced = 1
	PriorityLine     = 2
	PriorityWord     = 3
)

// SyncPriority ranks a result by sync granularity. A provider-reported sync
// category wins over inspecting the document.
func SyncPriority(r *providers.Result) int {
	if !eligible(r) {
		return PriorityNone
	}

	if r.SyncType != "" {
		category := strings.TrimSuffix(strings.ToUpper(r.SyncType), "_SYNCED")
		switch category {
		case "WORD", "SYLLABLE":
			return PriorityWord
		case "LINE":
			return PriorityLine
		default:
			return PriorityUnsynced
		}
	}

	if r.Document.HasSyllableSync() {
		return PriorityWord
	}
	return PriorityLine
}

// SelectBest returns the successful, non-empty result with the highest sync
// priority. Ties keep the earliest result. Returns nil when nothing is
// eligible.
func SelectBest(results []*providers.Result) *providers.Result {
	var (
		best         *providers.Result
		bestPriority int
	)
	for _, r := range results {
		if !eligible(r) {
			continue
		}
		if p := SyncPriority(r); best == nil || p > bestPriority {
			best, bestPriority = r, p
		}
	}

	if best != nil {
		log.Debugf("%s Selected %s (priority %d) from %d results",
			logcolors.LogSelector, logcolors.Provider(best.Source), bestPriority, len(results))
	}
	return best
}

// CacheMetadata resolves the song identity a result is cached under. Each
// field comes from the first non-empty of the provider's exact metadata,
// the document metadata and the query.
func CacheMetadata(r *providers.Result, q matcher.Query) matcher.Query {
	var exact matcher.Query
	var doc lyrics.Metadata
	if r != nil {
		if r.ExactMetadata != nil {
			exact = *r.ExactMetadata
		}
		if r.Document != nil {
			doc = r.Document.Metadata
		}
	}

	meta := matcher.Query{
		Title:           firstNonEmpty(exact.Title, doc.Title, q.Title),
		Artist:          firstNonEmpty(exact.Artist, q.Artist),
		Album:           firstNonEmpty(exact.Album, q.Album),
		DurationSeconds: q.DurationSeconds,
	}
	if exact.DurationSeconds > 0 {
		meta.DurationSeconds = exact.DurationSeconds
	}
	return meta
}

// CacheKey is the file name a result with the given metadata is stored under.
func CacheKey(meta matcher.Query) string {
	return utils.GenerateUniqueFileName(meta.Title, meta.Artist, meta.Album, meta.DurationSeconds)
}

// ShouldPersist reports whether a result is worth storing: it must carry the
// raw payload and must not have been served from storage already.
func ShouldPersist(r *providers.Result) bool {
	if !eligible(r) || r.Raw == nil {
		return false
	}
	switch r.Document.Cached {
	case lyrics.CachedGDrive, lyrics.CachedDatabase:
		return false
	}
	return true
}

func eligible(r *providers.Result) bool {
	return r != nil && r.Success && !r.Document.IsEmpty()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
