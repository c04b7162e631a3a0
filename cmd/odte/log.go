package main

import (
	"context"
	"fmt"
	"time"

	"github.com/quantfold/odte/internal/app"
	"github.com/quantfold/odte/internal/logger"
	"github.com/spf13/cobra"
)

var listDates bool

var logCmd = &cobra.Command{
	Use:   "log [date]",
	Short: "Show recorded decisions",
	Long: `log prints the decisions recorded for a trading day (YYYY-MM-DD,
default today). With --dates it lists the days that have records.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLog,
}

func init() {
	logCmd.Flags().BoolVar(&listDates, "dates", false, "list recorded dates instead")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	store, err := app.NewTradeStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("opening trade log: %w", err)
	}
	ctx := context.Background()

	if listDates {
		dates, err := store.Dates(ctx)
		if err != nil {
			return err
		}
		for _, d := range dates {
			fmt.Println(d)
		}
		return nil
	}

	date := time.Now().UTC().Format("2006-01-02")
	if len(args) == 1 {
		date = args[0]
	}

	recs, err := store.Day(ctx, date)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Printf("no decisions recorded for %s\n", date)
		return nil
	}
	for _, r := range recs {
		line := fmt.Sprintf("%s  %-20s", r.Date, r.Outcome)
		if r.Strategy != "" {
			line += fmt.Sprintf("  %s x%d  credit %.2f  pop %.1f%%",
				r.Strategy, r.Contracts, r.NetCredit, r.ProbProfit*100)
		}
		if r.Reason != "" {
			line += fmt.Sprintf("  (%s)", r.Reason)
		}
		fmt.Println(line)
	}
	return nil
}
