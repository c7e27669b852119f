package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/itohio/waterqm/pkg/sensor"
)

// Source types.
const (
	SourceMCP3008 = "mcp3008"
	SourceMock    = "mock"
)

// Output types.
const (
	OutputConsole = "console"
	OutputMQTT    = "mqtt"
)

// Config represents the application configuration.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Interval time.Duration  `yaml:"interval"`
	Source   SourceConfig   `yaml:"source"`
	Channels ChannelsConfig `yaml:"channels"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Outputs  []OutputConfig `yaml:"outputs"`
	Mock     MockConfig     `yaml:"mock"`
}

// SerialConfig contains serial port configuration. The baud rate is fixed.
type SerialConfig struct {
	Port string `yaml:"port"`
}

// SourceConfig selects where raw samples come from.
type SourceConfig struct {
	Type       string `yaml:"type"`       // mcp3008 or mock
	SPIPort    string `yaml:"spi_port"`   // empty selects the first SPI port
	SpeedHz    int64  `yaml:"speed_hz"`   // SPI clock
	Oversample int    `yaml:"oversample"` // samples averaged per reading (0 or 1 = disabled)
}

// ChannelsConfig holds calibration of the three sensor inputs.
type ChannelsConfig struct {
	PH         ChannelConfig `yaml:"ph"`
	WaterLevel ChannelConfig `yaml:"water_level"`
	Turbidity  ChannelConfig `yaml:"turbidity"`
}

// ChannelConfig is the YAML form of sensor.Channel.
type ChannelConfig struct {
	Input       int          `yaml:"input"` // ADC input the sensor is wired to
	Unit        string       `yaml:"unit"`
	RawMax      int          `yaml:"raw_max"`
	RefVoltage  float32      `yaml:"ref_voltage"`
	Transfer    string       `yaml:"transfer"` // linear or remap
	Slope       float32      `yaml:"slope"`
	Offset      float32      `yaml:"offset"`
	Remap       *RemapConfig `yaml:"remap,omitempty"`
	Floor       bool         `yaml:"floor"`
	ValidMin    float32      `yaml:"valid_min"`
	ValidMax    float32      `yaml:"valid_max"`
	PassThrough bool         `yaml:"pass_through"`
}

// RemapConfig is the YAML form of sensor.RemapRange.
type RemapConfig struct {
	InMin  int `yaml:"in_min"`
	InMax  int `yaml:"in_max"`
	OutMin int `yaml:"out_min"`
	OutMax int `yaml:"out_max"`
}

// AlertsConfig contains alert thresholds applied to received readings.
type AlertsConfig struct {
	PHMin         float32 `yaml:"ph_min"`
	PHMax         float32 `yaml:"ph_max"`
	WaterLevelMin float32 `yaml:"water_level_min"`
	TurbidityMax  float32 `yaml:"turbidity_max"`
}

// OutputConfig describes one publishing target.
type OutputConfig struct {
	Type string      `yaml:"type"`
	MQTT *MQTTConfig `yaml:"mqtt,omitempty"`
}

// MQTTConfig contains MQTT broker configuration.
type MQTTConfig struct {
	Server     string `yaml:"server"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	ClientID   string `yaml:"client_id"`
	StateTopic string `yaml:"state_topic"`
	AlertTopic string `yaml:"alert_topic"`
	// DiscoveryPrefix enables Home Assistant discovery, e.g. "homeassistant".
	DiscoveryPrefix string `yaml:"discovery_prefix"`
}

// MockConfig contains mock ADC configuration. Levels are raw 10-bit values.
type MockConfig struct {
	PH         int           `yaml:"ph"`
	WaterLevel int           `yaml:"water_level"`
	Turbidity  int           `yaml:"turbidity"`
	Noise      float64       `yaml:"noise"`  // Peak deviation (raw counts)
	Period     time.Duration `yaml:"period"` // Waveform period
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "/dev/ttyACM0",
		},
		Interval: time.Second,
		Source: SourceConfig{
			Type:       SourceMCP3008,
			SpeedHz:    1_000_000,
			Oversample: 1,
		},
		Channels: ChannelsConfig{
			PH:         FromChannel(0, sensor.DefaultPH()),
			WaterLevel: FromChannel(1, sensor.DefaultWaterLevel()),
			Turbidity:  FromChannel(2, sensor.DefaultTurbidity()),
		},
		Alerts: AlertsConfig{
			PHMin:         6.5,
			PHMax:         8.5,
			WaterLevelMin: 2,
			TurbidityMax:  25,
		},
		Outputs: []OutputConfig{
			{Type: OutputConsole},
		},
		Mock: MockConfig{
			PH:         286, // ~1.4V
			WaterLevel: 512,
			Turbidity:  600,
			Noise:      4,
			Period:     30 * time.Second,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if _, err := cfg.Sensors(); err != nil {
		return nil, fmt.Errorf("invalid channel configuration: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Sensors returns the validated channel set.
func (c *Config) Sensors() (sensor.Set, error) {
	var (
		s   sensor.Set
		err error
	)
	if s.PH, err = c.Channels.PH.Channel("ph"); err != nil {
		return sensor.Set{}, err
	}
	if s.WaterLevel, err = c.Channels.WaterLevel.Channel("water_level"); err != nil {
		return sensor.Set{}, err
	}
	if s.Turbidity, err = c.Channels.Turbidity.Channel("turbidity"); err != nil {
		return sensor.Set{}, err
	}
	if err := s.Validate(); err != nil {
		return sensor.Set{}, err
	}
	return s, nil
}

// Inputs returns the ADC inputs of pH, water level and turbidity, in that order.
func (c *Config) Inputs() [3]int {
	return [3]int{c.Channels.PH.Input, c.Channels.WaterLevel.Input, c.Channels.Turbidity.Input}
}

// Channel converts the YAML form into a sensor.Channel.
func (cc ChannelConfig) Channel(name string) (sensor.Channel, error) {
	ch := sensor.Channel{
		Name:        name,
		Unit:        cc.Unit,
		RawMax:      cc.RawMax,
		RefVoltage:  cc.RefVoltage,
		Slope:       cc.Slope,
		Offset:      cc.Offset,
		Floor:       cc.Floor,
		ValidMin:    cc.ValidMin,
		ValidMax:    cc.ValidMax,
		PassThrough: cc.PassThrough,
	}

	switch cc.Transfer {
	case "", sensor.Linear.String():
		ch.Transfer = sensor.Linear
	case sensor.Remap.String():
		ch.Transfer = sensor.Remap
		if cc.Remap == nil {
			return sensor.Channel{}, fmt.Errorf("channel %s: remap transfer requires a remap range", name)
		}
		ch.Remap = sensor.RemapRange{
			InMin:  cc.Remap.InMin,
			InMax:  cc.Remap.InMax,
			OutMin: cc.Remap.OutMin,
			OutMax: cc.Remap.OutMax,
		}
	default:
		return sensor.Channel{}, fmt.Errorf("channel %s: unknown transfer %q", name, cc.Transfer)
	}

	return ch, nil
}

// FromChannel converts a sensor.Channel into its YAML form.
func FromChannel(input int, ch sensor.Channel) ChannelConfig {
	cc := ChannelConfig{
		Input:       input,
		Unit:        ch.Unit,
		RawMax:      ch.RawMax,
		RefVoltage:  ch.RefVoltage,
		Transfer:    ch.Transfer.String(),
		Slope:       ch.Slope,
		Offset:      ch.Offset,
		Floor:       ch.Floor,
		ValidMin:    ch.ValidMin,
		ValidMax:    ch.ValidMax,
		PassThrough: ch.PassThrough,
	}
	if ch.Transfer == sensor.Remap {
		cc.Remap = &RemapConfig{
			InMin:  ch.Remap.InMin,
			InMax:  ch.Remap.InMax,
			OutMin: ch.Remap.OutMin,
			OutMax: ch.Remap.OutMax,
		}
	}
	return cc
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}

	if c.Source.Type == "" {
		c.Source.Type = def.Source.Type
	}
	if c.Source.SpeedHz == 0 {
		c.Source.SpeedHz = def.Source.SpeedHz
	}
	if c.Source.Oversample <= 0 {
		c.Source.Oversample = def.Source.Oversample
	}

	c.Channels.PH.ensureDefaults(def.Channels.PH)
	c.Channels.WaterLevel.ensureDefaults(def.Channels.WaterLevel)
	c.Channels.Turbidity.ensureDefaults(def.Channels.Turbidity)

	if len(c.Outputs) == 0 {
		c.Outputs = def.Outputs
	}
	for i := range c.Outputs {
		if c.Outputs[i].Type == OutputMQTT && c.Outputs[i].MQTT == nil {
			c.Outputs[i].MQTT = &MQTTConfig{}
		}
	}

	if c.Mock.Period == 0 {
		c.Mock.Period = def.Mock.Period
	}
}

func (cc *ChannelConfig) ensureDefaults(def ChannelConfig) {
	if cc.RawMax == 0 {
		cc.RawMax = def.RawMax
	}
	if cc.RefVoltage == 0 {
		cc.RefVoltage = def.RefVoltage
	}
	if cc.Transfer == "" {
		cc.Transfer = def.Transfer
	}
	if cc.Unit == "" {
		cc.Unit = def.Unit
	}
	if cc.Transfer == sensor.Remap.String() && cc.Remap == nil && def.Remap != nil {
		r := *def.Remap
		cc.Remap = &r
	}
}
