// Package local serves lyrics from a directory of files named
// "Artist - Title [Album] (seconds).ext".
package local

import (
	"context"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path"
	"strings"

	"lyrics-aggregator-go/logcolors"
	"lyrics-aggregator-go/services/matcher"
	"lyrics-aggregator-go/services/providers"
	"lyrics-aggregator-go/utils"

	log "github.com/sirupsen/logrus"
)

// Options configure a directory provider.
type Options struct {
	// Format forces the payload format of every file. When empty it is
	// derived from the file extension.
	Format string
}

// Provider implements providers.Provider over a read-only file tree.
type Provider struct {
	name string
	fsys fs.FS
	opts Options
}

// New creates a provider reading the directory dir.
func New(name, dir string, opts Options) *Provider {
	return NewFS(name, os.DirFS(dir), opts)
}

// NewFS creates a provider reading the root of fsys.
func NewFS(name string, fsys fs.FS, opts Options) *Provider {
	return &Provider{name: name, fsys: fsys, opts: opts}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return p.name
}

// Search lists every file whose name parses to a title. The query is not
// used to filter; scoring is left to the matcher.
func (p *Provider) Search(ctx context.Context, _ matcher.Query) ([]matcher.Candidate, error) {
	entries, err := fs.ReadDir(p.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}

	candidates := make([]matcher.Candidate, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info := utils.ParseFileName(e.Name())
		if info.Title == "" {
			continue
		}
		candidates = append(candidates, matcher.Candidate{
			Title:      info.Title,
			Artist:     info.Artist,
			Album:      info.Album,
			DurationMs: int(math.Round(info.DurationSeconds * 1000)),
			Ref:        e.Name(),
		})
	}

	log.Debugf("%s %s %d catalog entries", logcolors.LogProvider, logcolors.Provider(p.name), len(candidates))
	return candidates, nil
}

// Fetch reads the file behind a candidate returned by Search.
func (p *Provider) Fetch(ctx context.Context, c matcher.Candidate) (*providers.Payload, error) {
	file, ok := c.Ref.(string)
	if !ok || file == "" {
		return nil, fmt.Errorf("candidate %q was not produced by this provider", c.Title)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := fs.ReadFile(p.fsys, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	return &providers.Payload{
		Format:          p.formatOf(file),
		Body:            body,
		TrackDurationMs: c.DurationMs,
	}, nil
}

// formatOf maps an extension to a payload format. A ".json" file in a
// directory named after a JSON payload format (spotify, lrclib, ...) takes
// that format.
func (p *Provider) formatOf(file string) string {
	if p.opts.Format != "" {
		return p.opts.Format
	}

	ext := strings.ToLower(path.Ext(strings.TrimSuffix(file, ".gz")))
	switch ext {
	case ".ttml", ".xml":
		return providers.FormatTTML
	case ".lrc":
		return providers.FormatLRC
	case ".json":
		if providers.IsFormat(p.name) && p.name != providers.FormatTTML && p.name != providers.FormatLRC {
			return p.name
		}
		return providers.FormatJSON
	default:
		return providers.FormatJSON
	}
}
