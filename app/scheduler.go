// Package app wires the two node services from configuration.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/medibox-iot/medibox/config"
	"github.com/medibox-iot/medibox/core/bus"
	"github.com/medibox-iot/medibox/core/doselog"
	coremetrics "github.com/medibox-iot/medibox/core/metrics"
	"github.com/medibox-iot/medibox/core/protocol"
	"github.com/medibox-iot/medibox/core/schedule"
	"github.com/medibox-iot/medibox/infra/logger"
	"github.com/medibox-iot/medibox/infra/metrics"
	"github.com/medibox-iot/medibox/infra/mqtt"
	"github.com/medibox-iot/medibox/infra/ui"
	"github.com/medibox-iot/medibox/internal/eventbus"
)

// StatusEvent is a dispenser outcome received on the status topic.
type StatusEvent struct {
	Status protocol.Status
	At     time.Time
}

// Announcer voices a dispense outcome to whoever is nearby. The device
// shells out to a speech synthesizer; off-device the default logs instead.
type Announcer interface {
	Announce(status protocol.Status)
}

// LogAnnouncer logs the announcement text.
type LogAnnouncer struct {
	Log logger.Logger
}

func (a LogAnnouncer) Announce(status protocol.Status) {
	switch status {
	case protocol.StatusTaken:
		a.Log.Infof("announce: medication is taken by patient")
	case protocol.StatusMissed:
		a.Log.Warnf("announce: medication missed, check patient")
	}
}

// SchedulerService runs the scheduler node: trigger loop, schedule store,
// status consumer and operator console.
type SchedulerService struct {
	cfg       *config.Config
	client    bus.Client
	store     *schedule.Store
	trigger   *schedule.Trigger
	dose      *doselog.Log
	events    *eventbus.Bus[StatusEvent]
	console   *ui.Console
	announcer Announcer
	sink      coremetrics.Sink
	log       logger.Logger
}

// NewScheduler creates the scheduler node from the configuration.
func NewScheduler(cfg *config.Config) (*SchedulerService, error) {
	logg := logger.New("scheduler")

	dose, err := doselog.New(cfg.Scheduler.DoseLog)
	if err != nil {
		return nil, fmt.Errorf("dose log: %w", err)
	}

	store := schedule.NewStore(cfg.Scheduler.MaxSlots, schedule.NewJSONFile(cfg.Scheduler.ScheduleFile), logg)
	if err := store.Load(); err != nil {
		// The store is a recovery aid, not authoritative.
		logg.Errorf("load schedule: %v", err)
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

	poll := time.Duration(cfg.Scheduler.PollSeconds) * time.Second
	trigger := schedule.NewTrigger(store, client, cfg.MQTT.CommandTopic, poll, dose, sink, logg)

	return &SchedulerService{
		cfg:       cfg,
		client:    client,
		store:     store,
		trigger:   trigger,
		dose:      dose,
		events:    eventbus.New[StatusEvent](),
		console:   ui.NewConsole(store, os.Stdin, os.Stdout, logg),
		announcer: LogAnnouncer{Log: logg},
		sink:      sink,
		log:       logg,
	}, nil
}

// Run starts all scheduler loops and blocks until the context is
// cancelled.
func (s *SchedulerService) Run(ctx context.Context) error {
	if err := s.client.Subscribe(s.cfg.MQTT.StatusTopic, s.onStatus); err != nil {
		return fmt.Errorf("subscribe status: %w", err)
	}

	go s.trigger.Run(ctx)
	go s.console.Run(ctx)
	go s.watchConnection(ctx)
	go s.consumeStatus(ctx)
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

// onStatus runs on the bus client's receive loop and must not block.
func (s *SchedulerService) onStatus(_ string, payload []byte) {
	status, ok := protocol.ParseStatus(payload)
	if !ok {
		s.log.Warnf("unexpected status payload %q", payload)
		return
	}
	s.events.Publish(StatusEvent{Status: status, At: time.Now()})
}

func (s *SchedulerService) consumeStatus(ctx context.Context) {
	sub := s.events.Subscribe()
	defer s.events.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			s.handleStatus(ev)
		}
	}
}

func (s *SchedulerService) handleStatus(ev StatusEvent) {
	s.log.Infof("received status %s", ev.Status)
	switch ev.Status {
	case protocol.StatusTaken:
		s.console.Notify("Medication Taken")
	case protocol.StatusMissed:
		s.console.Notify("Medication Missed")
	}
	s.announcer.Announce(ev.Status)
	// The protocol carries no slot in status messages; the log line uses
	// the unknown sentinel on this side.
	if err := s.dose.Append(ev.At, protocol.UnknownSlot, doselog.Action(ev.Status)); err != nil {
		s.log.Errorf("dose log: %v", err)
	}
}

func (s *SchedulerService) watchConnection(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.client.Events():
			if !ok {
				return
			}
			switch ev.Kind {
			case bus.Connected:
				s.console.Notify("Connected to broker")
			case bus.ConnectionLost:
				s.console.Notify("Broker connection lost, reconnecting")
			case bus.Reconnecting:
				if err := s.sink.RecordReconnect(coremetrics.ReconnectEvent{Wait: ev.Wait, Time: time.Now()}); err != nil {
					s.log.Errorf("metrics: %v", err)
				}
			}
		}
	}
}

// Close releases resources held by the service.
func (s *SchedulerService) Close() error {
	s.events.Close()
	s.client.Disconnect()
	return nil
}
