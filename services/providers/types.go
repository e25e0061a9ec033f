package providers

import (
	"errors"

	"lyrics-aggregator-go/services/lyrics"
	"lyrics-aggregator-go/services/matcher"
)

// Payload formats understood by Convert
const (
	FormatTTML           = "ttml"
	FormatJSON           = "json" // canonical document, grouped or flat
	FormatV1             = "v1"
	FormatSpotify        = "spotify"
	FormatMusixmatch     = "musixmatch"
	FormatMusixmatchWord = "musixmatch-word"
	FormatLRC            = "lrc"
	FormatLRCLIB         = "lrclib"
)

// Formats lists every payload format Convert accepts.
var Formats = []string{
	FormatTTML, FormatJSON, FormatV1, FormatSpotify,
	FormatMusixmatch, FormatMusixmatchWord, FormatLRC, FormatLRCLIB,
}

// IsFormat reports whether name is a known payload format.
func IsFormat(name string) bool {
	for _, f := range Formats {
		if f == name {
			return true
		}
	}
	return false
}

// ErrNotFound marks a lookup that completed without finding lyrics. It is
// not a provider failure.
var ErrNotFound = errors.New("lyrics not found")

// Payload is a provider's raw lyrics response, tagged with its format.
// Body may be gzip-compressed.
type Payload struct {
	Format string
	Body   []byte

	// SyncType is the provider's own sync category (e.g. "SYLLABLE_SYNCED"),
	// when it reports one.
	SyncType string

	// TrackDurationMs bounds the last line of line-timed formats.
	TrackDurationMs int
}

// Result is the standardized result from any lyrics provider
type Result struct {
	Success  bool             `json:"success"`
	Document *lyrics.Document `json:"data,omitempty"`

	// Source is the name of the provider that returned these lyrics
	Source string `json:"source"`

	// Raw is the payload the document was converted from
	Raw *Payload `json:"-"`

	// ExactMetadata is the catalog's own description of the matched track
	ExactMetadata *matcher.Query `json:"exactMetadata,omitempty"`

	SyncType  string  `json:"syncType,omitempty"`
	Score     float64 `json:"score,omitempty"`
	Ambiguous bool    `json:"ambiguous,omitempty"`
	LookupID  string  `json:"lookupId,omitempty"`

	// Searched lists the sources tried when nothing was found
	Searched []string `json:"searched,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// ProviderError represents an error from a provider with additional context
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Provider + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new ProviderError
func NewProviderError(provider, message string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Message:  message,
		Err:      err,
	}
}

// IsNotFound reports whether err means "no lyrics" rather than a failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, matcher.ErrNoConfidentMatch)
}
