package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "odte",
	Short: "0DTE index options trade decision engine",
	Long: `odte evaluates the market once per run and decides whether to place a
defined-risk 0DTE options trade: it classifies the regime, builds spread
candidates, validates them against risk limits, and sizes the position.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
