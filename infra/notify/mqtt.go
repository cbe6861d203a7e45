// Package notify pushes workspace events to an MQTT broker so dashboards
// and other program tooling can react to schedule changes without polling.
package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/pcouderc/worksched/core/events"
	"github.com/pcouderc/worksched/infra/logger"
	"github.com/pcouderc/worksched/internal/eventbus"
)

// Config defines the connection parameters for the MQTT notifier.
type Config struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Broker      string `json:"broker" yaml:"broker"`
	ClientID    string `json:"client_id" yaml:"client_id"`
	Username    string `json:"username" yaml:"username"`
	Password    string `json:"password" yaml:"password"`
	TopicPrefix string `json:"topic_prefix" yaml:"topic_prefix"`
	QoS         byte   `json:"qos" yaml:"qos"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "worksched"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "worksched"
	}
}

// Validate checks the configuration when the notifier is enabled.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return errors.New("notify: broker is required when enabled")
	}
	if c.QoS > 2 {
		return fmt.Errorf("notify: invalid qos %d", c.QoS)
	}
	return nil
}

type pahoClient interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Notifier relays engine events from the bus to MQTT topics under the
// configured prefix: <prefix>/mutation, <prefix>/mode, <prefix>/apply,
// <prefix>/refresh. Payloads are JSON.
type Notifier struct {
	cli    pahoClient
	prefix string
	qos    byte
	log    logger.Logger
	bus    eventbus.EventBus
	sub    <-chan eventbus.Event
	done   chan struct{}
}

// NewNotifier connects to the broker and starts relaying events. It
// returns nil when the notifier is disabled.
func NewNotifier(cfg Config, bus eventbus.EventBus) (*Notifier, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	cli := newMQTTClient(opts)
	if tok := cli.Connect(); tok.Wait() && tok.Error() != nil {
		return nil, fmt.Errorf("notify: connect: %w", tok.Error())
	}
	n := &Notifier{
		cli:    cli,
		prefix: cfg.TopicPrefix,
		qos:    cfg.QoS,
		log:    logger.New("notify"),
		bus:    bus,
		sub:    bus.Subscribe(),
		done:   make(chan struct{}),
	}
	go n.run()
	return n, nil
}

func (n *Notifier) run() {
	defer close(n.done)
	for ev := range n.sub {
		topic, ok := n.topicFor(ev)
		if !ok {
			continue
		}
		payload, err := json.Marshal(ev)
		if err != nil {
			n.log.Errorf("encode event: %v", err)
			continue
		}
		if tok := n.cli.Publish(topic, n.qos, false, payload); tok.Wait() && tok.Error() != nil {
			n.log.Warnf("publish %s: %v", topic, tok.Error())
		}
	}
}

func (n *Notifier) topicFor(ev eventbus.Event) (string, bool) {
	switch ev.(type) {
	case events.MutationEvent:
		return n.prefix + "/mutation", true
	case events.ModeEvent:
		return n.prefix + "/mode", true
	case events.ApplyEvent:
		return n.prefix + "/apply", true
	case events.RefreshEvent:
		return n.prefix + "/refresh", true
	default:
		return "", false
	}
}

// Close stops the relay and disconnects from the broker.
func (n *Notifier) Close() {
	if n == nil {
		return
	}
	n.bus.Unsubscribe(n.sub)
	<-n.done
	n.cli.Disconnect(250)
}
