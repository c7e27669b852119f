package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/itohio/waterqm/pkg/alert"
	"github.com/itohio/waterqm/pkg/config"
	"github.com/itohio/waterqm/pkg/link"
	"github.com/itohio/waterqm/pkg/output"
)

const (
	// defaults
	DefaultServer     = "tcp://localhost:1883"
	DefaultClientID   = "waterqm"
	DefaultStateTopic = "waterqm/state"
	DefaultAlertTopic = "waterqm/alert"
	discoveryTopicFmt = "%s/sensor/%s_%s/config"
	disconnectQuiesce = 250 // ms
	// discovery payload keys/values
	keyName               = "name"
	keyStateTopic         = "state_topic"
	keyUnitOfMeasurement  = "unit_of_measurement"
	keyDeviceClass        = "device_class"
	keyStateClass         = "state_class"
	keyValueTemplate      = "value_template"
	keyUniqueID           = "unique_id"
	stateClassMeasurement = "measurement"
)

// publisher is the part of mqtt.Client used for publishing.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type MQTTOutput struct {
	client     mqtt.Client
	pub        publisher
	stateTopic string
	alertTopic string
}

type statePayload struct {
	PH         float32 `json:"ph"`
	WaterLevel float32 `json:"water_level"`
	Turbidity  float32 `json:"turbidity"`
	Time       string  `json:"time"`
}

type alertPayload struct {
	alert.Alert
	Time string `json:"time"`
}

type discoverySensor struct {
	key         string
	name        string
	unit        string
	deviceClass string
}

var discoverySensors = []discoverySensor{
	{key: "ph", name: "pH", unit: "pH", deviceClass: "ph"},
	{key: "water_level", name: "Water level", unit: "%"},
	{key: "turbidity", name: "Turbidity", unit: "NTU"},
}

// NewMQTT connects to the broker and, when a discovery prefix is configured,
// announces the three sensors.
func NewMQTT(cfg config.MQTTConfig) (output.Output, error) {
	cfg = withDefaults(cfg)

	opts := mqtt.NewClientOptions().AddBroker(cfg.Server).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	m := newOutput(client, cfg)
	m.client = client

	if cfg.DiscoveryPrefix != "" {
		if err := m.announce(cfg); err != nil {
			log.Printf("mqtt discovery publish error: %v", err)
		}
	}

	return m, nil
}

func newOutput(pub publisher, cfg config.MQTTConfig) *MQTTOutput {
	cfg = withDefaults(cfg)
	return &MQTTOutput{pub: pub, stateTopic: cfg.StateTopic, alertTopic: cfg.AlertTopic}
}

func withDefaults(cfg config.MQTTConfig) config.MQTTConfig {
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	if cfg.StateTopic == "" {
		cfg.StateTopic = DefaultStateTopic
	}
	if cfg.AlertTopic == "" {
		cfg.AlertTopic = DefaultAlertTopic
	}
	return cfg
}

func (m *MQTTOutput) Publish(s link.Sample, alerts []alert.Alert) error {
	ts := s.Timestamp.Format(time.RFC3339)

	state := statePayload{PH: s.PH, WaterLevel: s.WaterLevel, Turbidity: s.Turbidity, Time: ts}
	if err := m.publishJSON(m.stateTopic, false, state); err != nil {
		return fmt.Errorf("publish state: %w", err)
	}

	for _, a := range alerts {
		if err := m.publishJSON(m.alertTopic, false, alertPayload{Alert: a, Time: ts}); err != nil {
			return fmt.Errorf("publish alert: %w", err)
		}
	}
	return nil
}

func (m *MQTTOutput) Close() error {
	if m.client != nil {
		m.client.Disconnect(disconnectQuiesce)
	}
	return nil
}

// announce publishes retained Home Assistant discovery entries, one per sensor.
func (m *MQTTOutput) announce(cfg config.MQTTConfig) error {
	for _, d := range discoverySensors {
		topic := fmt.Sprintf(discoveryTopicFmt, cfg.DiscoveryPrefix, cfg.ClientID, d.key)
		if err := m.publishJSON(topic, true, discoveryPayload(cfg, d)); err != nil {
			return err
		}
	}
	return nil
}

// helper: base discovery payload for one sensor
func discoveryPayload(cfg config.MQTTConfig, d discoverySensor) map[string]interface{} {
	payload := map[string]interface{}{
		keyName:              d.name,
		keyStateTopic:        cfg.StateTopic,
		keyUnitOfMeasurement: d.unit,
		keyStateClass:        stateClassMeasurement,
		keyValueTemplate:     fmt.Sprintf("{{ value_json.%s }}", d.key),
		keyUniqueID:          fmt.Sprintf("%s_%s", cfg.ClientID, d.key),
	}
	if d.deviceClass != "" {
		payload[keyDeviceClass] = d.deviceClass
	}
	return payload
}

// helper: marshal and publish JSON payload
func (m *MQTTOutput) publishJSON(topic string, retained bool, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := m.pub.Publish(topic, 0, retained, b)
	token.Wait()
	return token.Error()
}
