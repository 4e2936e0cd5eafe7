package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/medibox-iot/medibox/config"
	"github.com/medibox-iot/medibox/core/bus"
	"github.com/medibox-iot/medibox/core/dispense"
	"github.com/medibox-iot/medibox/core/doselog"
	coremetrics "github.com/medibox-iot/medibox/core/metrics"
	"github.com/medibox-iot/medibox/infra/hardware"
	"github.com/medibox-iot/medibox/infra/logger"
	"github.com/medibox-iot/medibox/infra/metrics"
	"github.com/medibox-iot/medibox/infra/mqtt"
)

// DispenserService runs the dispenser node: command consumer, state
// machine tick loop, alert presenter and acknowledgment input.
type DispenserService struct {
	cfg       *config.Config
	client    bus.Client
	machine   *dispense.Machine
	presenter *dispense.AlertPresenter
	button    *hardware.SimButton
	sink      coremetrics.Sink
	log       logger.Logger
}

// NewDispenser creates the dispenser node from the configuration. The
// physical peripherals are represented by console-backed stand-ins; a line
// on stdin is a button press.
func NewDispenser(cfg *config.Config) (*DispenserService, error) {
	logg := logger.New("dispenser")

	dose, err := doselog.New(cfg.Dispenser.DoseLog)
	if err != nil {
		return nil, fmt.Errorf("dose log: %w", err)
	}

	client, err := mqtt.NewClient(cfg.MQTT, logger.New("mqtt_client"))
	if err != nil {
		return nil, fmt.Errorf("mqtt client: %w", err)
	}

	sink, err := buildSink(cfg.Metrics)
	if err != nil {
		client.Disconnect()
		return nil, err
	}

	button := hardware.NewSimButton(0)
	led := hardware.NewLogIndicator("led", logg)
	buzzer := hardware.NewLogIndicator("buzzer", logg)
	actuator := hardware.NewLogActuator(logg)

	machine := dispense.NewMachine(dispense.Config{
		AckTimeout:    time.Duration(cfg.Dispenser.AckTimeoutSeconds) * time.Second,
		PulseDuration: time.Duration(cfg.Dispenser.PulseMS) * time.Millisecond,
		StatusTopic:   cfg.MQTT.StatusTopic,
	}, client, button, actuator, led, buzzer, dose, sink, logg)

	blink := time.Duration(cfg.Dispenser.BlinkMS) * time.Millisecond
	presenter := dispense.NewAlertPresenter(machine, led, buzzer, blink)

	return &DispenserService{
		cfg:       cfg,
		client:    client,
		machine:   machine,
		presenter: presenter,
		button:    button,
		sink:      sink,
		log:       logg,
	}, nil
}

// Run starts all dispenser loops and blocks until the context is
// cancelled.
func (s *DispenserService) Run(ctx context.Context) error {
	if err := s.client.Subscribe(s.cfg.MQTT.CommandTopic, func(_ string, payload []byte) {
		s.machine.OnCommand(payload)
	}); err != nil {
		return fmt.Errorf("subscribe command: %w", err)
	}

	tick := time.Duration(s.cfg.Dispenser.TickMS) * time.Millisecond
	go s.machine.Run(ctx, tick)
	go s.presenter.Run(ctx)
	go s.button.RunReader(ctx, os.Stdin)
	go s.watchConnection(ctx)
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, ":"+s.cfg.Metrics.PrometheusPort, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	<-ctx.Done()
	return nil
}

func (s *DispenserService) watchConnection(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.client.Events():
			if !ok {
				return
			}
			if ev.Kind == bus.Reconnecting {
				if err := s.sink.RecordReconnect(coremetrics.ReconnectEvent{Wait: ev.Wait, Time: time.Now()}); err != nil {
					s.log.Errorf("metrics: %v", err)
				}
			}
		}
	}
}

// Close releases resources held by the service.
func (s *DispenserService) Close() error {
	s.client.Disconnect()
	return nil
}
