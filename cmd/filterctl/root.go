package main

import (
	"time"

	"github.com/spf13/cobra"

	"spam_bot/internal/filter"
)

var (
	engineName   string
	matchTimeout time.Duration
	colorMode    string
)

var rootCmd = &cobra.Command{
	Use:   "filterctl",
	Short: "Check and validate spam filter rulesets",
	Long: `filterctl loads a YAML filter ruleset and runs it against text.

Rulesets use the same format the bot imports through FILTERS_PATH.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&engineName, "engine", "posix", "Regex engine: posix, backtrack")
	rootCmd.PersistentFlags().DurationVar(&matchTimeout, "timeout", filter.DefaultMatchTimeout, "Per-match timeout for the backtrack engine")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Color output: auto, always, never")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(validateCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func selectedEngine() (filter.Engine, error) {
	return filter.EngineByName(engineName, matchTimeout)
}
