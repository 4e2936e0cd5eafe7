package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/medibox-iot/medibox/config"
	"github.com/medibox-iot/medibox/core/doselog"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print adherence statistics from the dose log",
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dose, err := doselog.New(cfg.Dispenser.DoseLog)
	if err != nil {
		return fmt.Errorf("dose log: %w", err)
	}
	recs, err := dose.Read()
	if err != nil {
		return fmt.Errorf("read dose log: %w", err)
	}

	r := doselog.BuildReport(recs)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "dispensed: %d\n", r.Dispensed)
	fmt.Fprintf(out, "taken:     %d\n", r.Taken)
	fmt.Fprintf(out, "missed:    %d\n", r.Missed)
	if r.Taken+r.Missed > 0 {
		fmt.Fprintf(out, "adherence: %.1f%%\n", r.AdherenceRate*100)
	}
	if r.Days > 0 {
		fmt.Fprintf(out, "days:      %d (daily adherence %.1f%% ± %.1f%%)\n",
			r.Days, r.DailyMean*100, r.DailyStdDev*100)
	}
	return nil
}
