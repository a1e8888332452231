// Package mqtt publishes solved charging schedules for charge-point
// controllers that subscribe to their session topics.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/chargeplan/core/model"
	"github.com/kilianp07/chargeplan/core/plan"
	"github.com/kilianp07/chargeplan/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT publisher.
// An empty Broker disables publishing entirely.
type Config struct {
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	QoS         byte   `json:"qos"`
	TopicPrefix string `json:"topic_prefix"`
}

// SetDefaults applies the default topic layout.
func (c *Config) SetDefaults() {
	if c.TopicPrefix == "" {
		c.TopicPrefix = "chargeplan"
	}
	if c.ClientID == "" {
		c.ClientID = "chargeplan-" + uuid.NewString()[:8]
	}
}

// Enabled reports whether a broker is configured.
func (c Config) Enabled() bool { return c.Broker != "" }

// Setpoint is one scheduled power level for a slot.
type Setpoint struct {
	Slot    int       `json:"slot"`
	Time    time.Time `json:"time"`
	PowerKW float64   `json:"power_kw"`
}

// ScheduleMessage is the per-session payload.
type ScheduleMessage struct {
	RunID     string     `json:"run_id"`
	SessionID string     `json:"session_id"`
	Setpoints []Setpoint `json:"setpoints"`
}

// pahoClient is the subset of the Paho client the publisher needs. It can
// be swapped in tests.
type pahoClient interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Publisher pushes schedules and run summaries to an MQTT broker.
type Publisher struct {
	cli pahoClient
	cfg Config
	log logger.Logger
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPublisher connects to the configured broker.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &Publisher{cli: c, cfg: cfg, log: logger.New("mqtt-publisher")}, nil
}

// PublishPlan sends one schedule message per session followed by the run
// summary.
func (p *Publisher) PublishPlan(h *model.Horizon, sessions []model.ChargingSession, pl *plan.Plan, sum model.Summary) error {
	for _, s := range sessions {
		msg := ScheduleMessage{RunID: sum.RunID, SessionID: s.ID}
		for t := s.ArrivalSlot; t <= s.DepartureSlot; t++ {
			msg.Setpoints = append(msg.Setpoints, Setpoint{
				Slot:    t,
				Time:    h.Timestamp(t),
				PowerKW: pl.PowerAt(s.ID, t),
			})
		}
		if err := p.publishJSON(p.cfg.TopicPrefix+"/schedule/"+s.ID, msg); err != nil {
			return err
		}
	}
	return p.publishJSON(p.cfg.TopicPrefix+"/summary", sum)
}

func (p *Publisher) publishJSON(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	token := p.cli.Publish(topic, p.cfg.QoS, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish %s: %w", topic, token.Error())
	}
	p.log.Debugf("published %s (%d bytes)", topic, len(payload))
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.cli.Disconnect(250)
}
