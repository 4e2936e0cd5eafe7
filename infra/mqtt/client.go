package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/medibox-iot/medibox/core/bus"
	"github.com/medibox-iot/medibox/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker       string          `json:"broker"`
	ClientID     string          `json:"client_id"`
	Username     string          `json:"username"`
	Password     string          `json:"password"`
	QoS          byte            `json:"qos"`
	CommandTopic string          `json:"command_topic"`
	StatusTopic  string          `json:"status_topic"`
	Reconnect    ReconnectConfig `json:"reconnect"`
}

// ReconnectConfig bounds the exponential backoff applied after a lost
// broker link.
type ReconnectConfig struct {
	InitialSeconds int `json:"initial_seconds"`
	MaxSeconds     int `json:"max_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Broker == "" {
		c.Broker = "tcp://broker.emqx.io:1883"
	}
	if c.ClientID == "" {
		c.ClientID = "medibox"
	}
	if c.CommandTopic == "" {
		c.CommandTopic = "dispenser/command"
	}
	if c.StatusTopic == "" {
		c.StatusTopic = "dispenser/status"
	}
	if c.Reconnect.InitialSeconds == 0 {
		c.Reconnect.InitialSeconds = 1
	}
	if c.Reconnect.MaxSeconds == 0 {
		c.Reconnect.MaxSeconds = 32
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("broker is required")
	}
	if c.Reconnect.MaxSeconds < c.Reconnect.InitialSeconds {
		return fmt.Errorf("reconnect max_seconds below initial_seconds")
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newPahoClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Client implements bus.Client using Eclipse Paho. Paho's built-in
// auto-reconnect is disabled: reconnection is owned by a supervisor
// goroutine so the backoff state is observable and the node's timing loops
// are never blocked by a redial.
type Client struct {
	cli pahoClient
	qos byte
	log logger.Logger

	mu   sync.Mutex
	subs map[string]bus.MessageHandler

	events chan bus.Event
	lost   chan error
	done   chan struct{}
	once   sync.Once
}

// NewClient connects to the broker and starts the reconnect supervisor. The
// configured client ID is suffixed with a random token so two nodes sharing
// a config file never evict each other from the broker.
func NewClient(cfg Config, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.NopLogger{}
	}
	c := &Client{
		qos:    cfg.QoS,
		log:    log,
		subs:   make(map[string]bus.MessageHandler),
		events: make(chan bus.Event, 8),
		lost:   make(chan error, 1),
		done:   make(chan struct{}),
	}

	clientID := fmt.Sprintf("%s-%s", cfg.ClientID, uuid.NewString()[:8])
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(clientID)
	opts.AutoReconnect = false
	opts.SetConnectTimeout(5 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(_ paho.Client) {
		log.Infof("connected to broker %s", cfg.Broker)
		c.resubscribe()
		c.emit(bus.Event{Kind: bus.Connected})
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
		c.emit(bus.Event{Kind: bus.ConnectionLost, Err: err})
		select {
		case c.lost <- err:
		default:
		}
	}

	c.cli = newPahoClient(opts)
	if token := c.cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	backoff := NewBackoff(
		time.Duration(cfg.Reconnect.InitialSeconds)*time.Second,
		time.Duration(cfg.Reconnect.MaxSeconds)*time.Second,
	)
	go c.supervise(backoff)
	return c, nil
}

// supervise redials after a lost connection, doubling the wait on every
// failed attempt and resetting it once the link is back.
func (c *Client) supervise(backoff *Backoff) {
	for {
		select {
		case <-c.done:
			return
		case <-c.lost:
		}
		for {
			wait := backoff.Next()
			c.log.Warnf("reconnecting in %s", wait)
			c.emit(bus.Event{Kind: bus.Reconnecting, Wait: wait})
			select {
			case <-c.done:
				return
			case <-time.After(wait):
			}
			token := c.cli.Connect()
			if token.Wait() && token.Error() != nil {
				c.log.Errorf("reconnect failed: %v", token.Error())
				continue
			}
			backoff.Reset()
			break
		}
	}
}

func (c *Client) resubscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for topic, handler := range c.subs {
		h := handler
		token := c.cli.Subscribe(topic, c.qos, func(_ paho.Client, msg paho.Message) {
			h(msg.Topic(), msg.Payload())
		})
		if token.Wait() && token.Error() != nil {
			c.log.Errorf("subscribe %s: %v", topic, token.Error())
		}
	}
}

// Publish sends a payload on the given topic.
func (c *Client) Publish(topic string, payload []byte) error {
	if !c.cli.IsConnected() {
		return bus.ErrNotConnected
	}
	token := c.cli.Publish(topic, c.qos, false, payload)
	token.Wait()
	return token.Error()
}

// Subscribe registers the handler and subscribes immediately when the link
// is up. The subscription is replayed after every reconnect.
func (c *Client) Subscribe(topic string, handler bus.MessageHandler) error {
	c.mu.Lock()
	c.subs[topic] = handler
	c.mu.Unlock()
	if !c.cli.IsConnected() {
		return nil
	}
	token := c.cli.Subscribe(topic, c.qos, func(_ paho.Client, msg paho.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	token.Wait()
	return token.Error()
}

// Connected reports whether the broker link is currently up.
func (c *Client) Connected() bool { return c.cli.IsConnected() }

// Events exposes connection lifecycle notifications.
func (c *Client) Events() <-chan bus.Event { return c.events }

// Disconnect stops the supervisor and closes the broker link cleanly.
func (c *Client) Disconnect() {
	c.once.Do(func() { close(c.done) })
	if c.cli.IsConnected() {
		c.cli.Disconnect(250)
	}
}

func (c *Client) emit(ev bus.Event) {
	select {
	case c.events <- ev:
	default:
	}
}
