package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/medibox-iot/medibox/app"
	"github.com/medibox-iot/medibox/config"
	"github.com/medibox-iot/medibox/infra/logger"
)

var dispenserCmd = &cobra.Command{
	Use:   "dispenser",
	Short: "Run the dispenser node",
	RunE:  runDispenser,
}

func init() {
	rootCmd.AddCommand(dispenserCmd)
}

func runDispenser(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.NewDispenser(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}
