package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lyrics-aggregator-go/logcolors"
	"lyrics-aggregator-go/services/aggregator"
	"lyrics-aggregator-go/services/providers"
	"lyrics-aggregator-go/services/providers/local"
	"lyrics-aggregator-go/services/selector"
	"lyrics-aggregator-go/stats"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	cmdRoot.AddCommand(cmdLookup())
}

// lookupReport is the output of the lookup command
type lookupReport struct {
	*providers.Result
	CacheKey string                 `json:"cacheKey,omitempty"`
	Stats    map[string]interface{} `json:"stats,omitempty"`
}

func cmdLookup() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Find the best lyrics for a song across a catalog of providers",
		Long: "Every subdirectory of --catalog is registered as a provider named after it. " +
			"Its files are named \"Artist - Title [Album] (seconds).ext\" and hold that provider's payloads.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				catalog, _   = cmd.Flags().GetString("catalog")
				formats, _   = cmd.Flags().GetStringToString("format")
				sources, _   = cmd.Flags().GetStringSlice("sources")
				to, _        = cmd.Flags().GetString("to")
				withStats, _ = cmd.Flags().GetBool("stats")
				statsDB, _   = cmd.Flags().GetString("stats-db")
			)

			q, err := queryFromFlags(cmd)
			if err != nil {
				return err
			}

			registry, err := registryFromCatalog(catalog, formats)
			if err != nil {
				return err
			}

			st := stats.New()
			if statsDB != "" {
				store, err := stats.NewStore(statsDB, st)
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.Load(); err != nil {
					log.Warnf("%s Failed to load stats: %v", logcolors.LogStats, err)
				}
			}

			opts := aggregator.OptionsFromConfig(conf)
			opts.Stats = st
			if len(sources) == 0 {
				// configured defaults may name providers the catalog does not have
				opts.Sources = nil
			}
			agg := aggregator.New(registry, opts)

			result, err := agg.Lookup(cmd.Context(), aggregator.Request{Query: q, Sources: sources})
			if err != nil && !errors.Is(err, providers.ErrNotFound) {
				return err
			}

			out := Respond(cmd.OutOrStdout())
			if result.Success && to != OutputJSON {
				return out.Document(result.Document, strings.ToLower(to))
			}

			report := lookupReport{Result: result}
			if result.Success {
				report.CacheKey = selector.CacheKey(selector.CacheMetadata(result, q))
			}
			if withStats {
				report.Stats = st.Snapshot()
			}
			if err := out.JSON(report); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("no lyrics found in %s", strings.Join(result.Searched, ", "))
			}
			return nil
		},
	}

	addQueryFlags(cmd)
	cmd.Flags().String("catalog", "", "Directory holding one subdirectory per provider")
	cmd.Flags().StringToString("format", nil, "Payload format per provider, e.g. apple=ttml,spotify=spotify")
	cmd.Flags().StringSlice("sources", nil, "Providers to query (default: every catalog provider)")
	cmd.Flags().String("to", OutputJSON, "Output: json (full result), v1 or ttml (document only)")
	cmd.Flags().Bool("stats", false, "Include the stats snapshot in the output")
	cmd.Flags().String("stats-db", "", "bbolt file that accumulates stats across runs")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}

// registryFromCatalog registers a local provider for every subdirectory of dir
func registryFromCatalog(dir string, formats map[string]string) (*providers.Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	registry := providers.NewRegistry()
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()
		format := formats[name]
		if format != "" && !providers.IsFormat(format) {
			return nil, fmt.Errorf("unknown format %q for provider %s", format, name)
		}
		registry.Register(local.New(name, filepath.Join(dir, name), local.Options{Format: format}))
		log.Debugf("%s Registered provider %s", logcolors.LogCLI, logcolors.Provider(name))
	}

	if len(registry.List()) == 0 {
		return nil, fmt.Errorf("catalog %s has no provider directories", dir)
	}
	return registry, nil
}
