package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/medibox-iot/medibox/config"
	"github.com/medibox-iot/medibox/core/protocol"
	"github.com/medibox-iot/medibox/infra/logger"
	"github.com/medibox-iot/medibox/infra/mqtt"
)

var sendSlot int

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Publish a test dispense command",
	RunE:  sendCommand,
}

func init() {
	sendCmd.Flags().IntVar(&sendSlot, "slot", 1, "slot to dispense")
	rootCmd.AddCommand(sendCmd)
}

func sendCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New("send")
	client, err := mqtt.NewClient(cfg.MQTT, logg)
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer client.Disconnect()

	payload := protocol.CommandPayload(strconv.Itoa(sendSlot))
	if err := client.Publish(cfg.MQTT.CommandTopic, payload); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	logg.Infof("sent %s on %s", payload, cfg.MQTT.CommandTopic)
	return nil
}
