package main

import (
	"os"

	"lyrics-aggregator-go/config"
	"lyrics-aggregator-go/logcolors"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var conf = config.Get()

var cmdRoot = &cobra.Command{
	Use:   "lyrics",
	Short: "Match, convert and aggregate synced lyrics",
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		log.SetOutput(cmd.ErrOrStderr())
		if jsonLogs, _ := cmd.Flags().GetBool("json-logs"); jsonLogs {
			log.SetFormatter(&log.JSONFormatter{})
		}
		conf.ApplyLogLevel()
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			log.SetLevel(log.DebugLevel)
		}
		log.Debugf("%s Default sources: %v", logcolors.LogConfig, conf.Sources())
	},
}

func init() {
	cmdRoot.PersistentFlags().BoolP("verbose", "v", false, "Log at debug level")
	cmdRoot.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON")
}

func main() {
	if err := cmdRoot.Execute(); err != nil {
		os.Exit(1)
	}
}
