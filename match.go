package main

import (
	"encoding/json"
	"fmt"

	"lyrics-aggregator-go/logcolors"
	"lyrics-aggregator-go/services/matcher"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	cmdRoot.AddCommand(cmdMatch())
}

// matchReport is the output of the match command
type matchReport struct {
	Query      matcher.Query   `json:"query"`
	Candidates []matcher.Match `json:"candidates"`
	Best       *matcher.Match  `json:"best"`
}

func cmdMatch() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "match CANDIDATES.json",
		Short:        "Score provider candidates against a song",
		Long:         "Score a JSON array of candidates ({title, artist, album, durationMs}) and print every breakdown plus the chosen match.",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := queryFromFlags(cmd)
			if err != nil {
				return err
			}

			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			var candidates []matcher.Candidate
			if err := json.Unmarshal(data, &candidates); err != nil {
				return fmt.Errorf("failed to parse candidates: %w", err)
			}
			for i := range candidates {
				candidates[i].Ref = i
			}

			m := matcher.New(matcher.OptionsFromConfig(conf))
			report := matchReport{
				Query:      q,
				Candidates: m.Rank(candidates, q),
				Best:       m.FindBestMatch(candidates, q),
			}
			if report.Best == nil {
				log.Infof("%s No confident match among %d candidates", logcolors.LogCLI, len(candidates))
			}

			return Respond(cmd.OutOrStdout()).JSON(report)
		},
	}

	addQueryFlags(cmd)
	return cmd
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "Song title")
	cmd.Flags().String("artist", "", "Song artist")
	cmd.Flags().String("album", "", "Album name")
	cmd.Flags().Float64("duration", 0, "Track duration in seconds")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("artist")
}

func queryFromFlags(cmd *cobra.Command) (matcher.Query, error) {
	var (
		title, _    = cmd.Flags().GetString("title")
		artist, _   = cmd.Flags().GetString("artist")
		album, _    = cmd.Flags().GetString("album")
		duration, _ = cmd.Flags().GetFloat64("duration")
	)
	if title == "" || artist == "" {
		return matcher.Query{}, fmt.Errorf("--title and --artist must not be empty")
	}
	return matcher.Query{Title: title, Artist: artist, Album: album, DurationSeconds: duration}, nil
}
