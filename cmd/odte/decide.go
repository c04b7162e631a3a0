package main

import (
	"context"
	"fmt"
	"time"

	"github.com/quantfold/odte/internal/app"
	"github.com/quantfold/odte/internal/config"
	"github.com/quantfold/odte/internal/logger"
	"github.com/quantfold/odte/internal/notifier"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var atFlag string

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Run one decision cycle",
	Long: `decide loads the configured market data, runs the decision engine once,
persists the outcome to the trade log, and sends notifications. The
decision is printed to stdout.`,
	RunE: runDecide,
}

func init() {
	decideCmd.Flags().StringVar(&atFlag, "at", "", "evaluate as of this RFC3339 time instead of now")
	rootCmd.AddCommand(decideCmd)
}

func runDecide(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if atFlag != "" {
		now, err = time.Parse(time.RFC3339, atFlag)
		if err != nil {
			return fmt.Errorf("parsing --at: %w", err)
		}
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}

	decision, err := a.Run(context.Background(), now)
	if err != nil {
		return err
	}

	fmt.Println(notifier.FormatDecision(decision))
	return nil
}

func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
