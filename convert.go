package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"lyrics-aggregator-go/logcolors"
	"lyrics-aggregator-go/services/providers"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	cmdRoot.AddCommand(cmdConvert())
}

func cmdConvert() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "convert FILE",
		Short:        "Convert a provider payload into a lyrics document",
		Long:         "Convert a provider payload (or - for stdin) into json, v1 or ttml. Gzip input is detected.",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				from, _     = cmd.Flags().GetString("from")
				to, _       = cmd.Flags().GetString("to")
				word, _     = cmd.Flags().GetBool("word")
				duration, _ = cmd.Flags().GetFloat64("duration")
			)

			from = strings.ToLower(from)
			if word && from == providers.FormatMusixmatch {
				from = providers.FormatMusixmatchWord
			}
			if !providers.IsFormat(from) {
				return fmt.Errorf("unknown input format %q (want one of %s)", from, strings.Join(providers.Formats, ", "))
			}

			body, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			payload := &providers.Payload{Format: from, Body: body}
			if duration > 0 {
				payload.TrackDurationMs = int(duration * 1000)
			}

			doc, err := providers.Convert(payload)
			if err != nil {
				return err
			}
			log.Debugf("%s Converted %s to %s (%s, %d lines)", logcolors.LogCLI, from, to, doc.Type, len(doc.Lyrics))

			return Respond(cmd.OutOrStdout()).Document(doc, strings.ToLower(to))
		},
	}

	cmd.Flags().String("from", providers.FormatTTML, "Input format: "+strings.Join(providers.Formats, ", "))
	cmd.Flags().String("to", OutputJSON, "Output format: json, v1 or ttml")
	cmd.Flags().Bool("word", false, "Treat musixmatch input as word-level richsync")
	cmd.Flags().Float64("duration", 0, "Track duration in seconds, used to close the last LRC line")
	return cmd
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
