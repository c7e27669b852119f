package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/waterqm/pkg/alert"
	"github.com/itohio/waterqm/pkg/config"
	"github.com/itohio/waterqm/pkg/link"
	"github.com/itohio/waterqm/pkg/wire"
)

type fakeToken struct{ err error }

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type message struct {
	topic    string
	retained bool
	payload  []byte
}

type fakePublisher struct {
	msgs []message
	err  error
}

func (p *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	p.msgs = append(p.msgs, message{topic: topic, retained: retained, payload: payload.([]byte)})
	return &fakeToken{err: p.err}
}

var ts = time.Date(2025, 9, 19, 14, 41, 54, 0, time.UTC)

func TestPublish(t *testing.T) {
	pub := &fakePublisher{}
	m := newOutput(pub, config.MQTTConfig{StateTopic: "pond/state"})

	s := link.Sample{Timestamp: ts, Frame: wire.Frame{PH: 9, WaterLevel: 40, Turbidity: 30}}
	alerts := alert.Thresholds{PHMin: 6.5, PHMax: 8.5, WaterLevelMin: 2, TurbidityMax: 25}.Evaluate(s.Frame)
	require.NoError(t, m.Publish(s, alerts))

	require.Len(t, pub.msgs, 3)
	assert.Equal(t, "pond/state", pub.msgs[0].topic)
	assert.False(t, pub.msgs[0].retained)
	assert.JSONEq(t, `{"ph":9,"water_level":40,"turbidity":30,"time":"2025-09-19T14:41:54Z"}`, string(pub.msgs[0].payload))

	assert.Equal(t, DefaultAlertTopic, pub.msgs[1].topic)
	assert.JSONEq(t, `{"parameter":"ph","level":"high","value":9,"threshold":8.5,"message":"pH level is too high","time":"2025-09-19T14:41:54Z"}`, string(pub.msgs[1].payload))

	var a map[string]interface{}
	require.NoError(t, json.Unmarshal(pub.msgs[2].payload, &a))
	assert.Equal(t, "turbidity", a["parameter"])
}

func TestPublish_Error(t *testing.T) {
	boom := errors.New("boom")
	m := newOutput(&fakePublisher{err: boom}, config.MQTTConfig{})

	err := m.Publish(link.Sample{Timestamp: ts}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestAnnounce(t *testing.T) {
	pub := &fakePublisher{}
	cfg := withDefaults(config.MQTTConfig{DiscoveryPrefix: "homeassistant", ClientID: "pond"})
	m := newOutput(pub, cfg)
	require.NoError(t, m.announce(cfg))

	require.Len(t, pub.msgs, 3)
	assert.Equal(t, "homeassistant/sensor/pond_ph/config", pub.msgs[0].topic)
	assert.Equal(t, "homeassistant/sensor/pond_water_level/config", pub.msgs[1].topic)
	assert.Equal(t, "homeassistant/sensor/pond_turbidity/config", pub.msgs[2].topic)
	for _, msg := range pub.msgs {
		assert.True(t, msg.retained)
	}

	assert.JSONEq(t, `{
		"name": "pH",
		"state_topic": "waterqm/state",
		"unit_of_measurement": "pH",
		"device_class": "ph",
		"state_class": "measurement",
		"value_template": "{{ value_json.ph }}",
		"unique_id": "pond_ph"
	}`, string(pub.msgs[0].payload))

	var level map[string]interface{}
	require.NoError(t, json.Unmarshal(pub.msgs[1].payload, &level))
	assert.NotContains(t, level, "device_class")
	assert.Equal(t, "{{ value_json.water_level }}", level["value_template"])
}

func TestWithDefaults(t *testing.T) {
	cfg := withDefaults(config.MQTTConfig{})
	assert.Equal(t, DefaultServer, cfg.Server)
	assert.Equal(t, DefaultClientID, cfg.ClientID)
	assert.Equal(t, DefaultStateTopic, cfg.StateTopic)
	assert.Equal(t, DefaultAlertTopic, cfg.AlertTopic)

	cfg = withDefaults(config.MQTTConfig{Server: "tcp://b:1883", StateTopic: "s"})
	assert.Equal(t, "tcp://b:1883", cfg.Server)
	assert.Equal(t, "s", cfg.StateTopic)
}

func TestCloseWithoutClient(t *testing.T) {
	m := newOutput(&fakePublisher{}, config.MQTTConfig{})
	assert.NoError(t, m.Close())
}
