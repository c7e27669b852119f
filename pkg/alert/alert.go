// Package alert evaluates received readings against water quality thresholds.
package alert

import (
	"fmt"

	"github.com/itohio/waterqm/pkg/config"
	"github.com/itohio/waterqm/pkg/wire"
)

// Parameter identifies the measured quantity an alert refers to.
type Parameter string

const (
	PH         Parameter = "ph"
	WaterLevel Parameter = "water_level"
	Turbidity  Parameter = "turbidity"
)

// Level tells on which side of the threshold the value lies.
type Level string

const (
	Low  Level = "low"
	High Level = "high"
)

// Alert is a threshold violation.
type Alert struct {
	Parameter Parameter `json:"parameter"`
	Level     Level     `json:"level"`
	Value     float32   `json:"value"`
	Threshold float32   `json:"threshold"`
	Message   string    `json:"message"`
}

func (a Alert) String() string {
	return fmt.Sprintf("%s: %.2f (threshold %.2f)", a.Message, a.Value, a.Threshold)
}

// Thresholds holds the alert limits.
type Thresholds struct {
	PHMin         float32
	PHMax         float32
	WaterLevelMin float32
	TurbidityMax  float32
}

// FromConfig returns the thresholds of cfg.
func FromConfig(cfg config.AlertsConfig) Thresholds {
	return Thresholds{
		PHMin:         cfg.PHMin,
		PHMax:         cfg.PHMax,
		WaterLevelMin: cfg.WaterLevelMin,
		TurbidityMax:  cfg.TurbidityMax,
	}
}

// Evaluate returns the alerts raised by f, in pH, water level, turbidity order.
func (t Thresholds) Evaluate(f wire.Frame) []Alert {
	var alerts []Alert

	switch {
	case f.PH > t.PHMax:
		alerts = append(alerts, Alert{Parameter: PH, Level: High, Value: f.PH, Threshold: t.PHMax, Message: "pH level is too high"})
	case f.PH < t.PHMin:
		alerts = append(alerts, Alert{Parameter: PH, Level: Low, Value: f.PH, Threshold: t.PHMin, Message: "pH level is too low"})
	}

	if f.WaterLevel < t.WaterLevelMin {
		alerts = append(alerts, Alert{Parameter: WaterLevel, Level: Low, Value: f.WaterLevel, Threshold: t.WaterLevelMin, Message: "Water level is too low"})
	}

	if f.Turbidity > t.TurbidityMax {
		alerts = append(alerts, Alert{Parameter: Turbidity, Level: High, Value: f.Turbidity, Threshold: t.TurbidityMax, Message: "Water turbidity is too high"})
	}

	return alerts
}
