package sensor

import "github.com/itohio/waterqm/pkg/wire"

// Set holds the three channels polled by the station.
type Set struct {
	PH         Channel
	WaterLevel Channel
	Turbidity  Channel
}

// Readings holds one conversion of every channel in a Set.
type Readings struct {
	PH         Reading
	WaterLevel Reading
	Turbidity  Reading
}

// DefaultPH returns the pH probe calibration: 0-5V mapped 1:1, valid 0-14.
func DefaultPH() Channel {
	return Channel{
		Name:       "ph",
		Unit:       "pH",
		RawMax:     DefaultRawMax,
		RefVoltage: DefaultRefVoltage,
		Transfer:   Linear,
		Slope:      1.0,
		Offset:     0.0,
		ValidMin:   0,
		ValidMax:   14,
	}
}

// DefaultWaterLevel returns the water level calibration. Out-of-range levels
// are passed through unchanged.
func DefaultWaterLevel() Channel {
	return Channel{
		Name:        "water_level",
		Unit:        "%",
		RawMax:      DefaultRawMax,
		RefVoltage:  DefaultRefVoltage,
		Transfer:    Linear,
		Slope:       1.0,
		Offset:      0.0,
		ValidMin:    0,
		ValidMax:    100,
		PassThrough: true,
	}
}

// DefaultTurbidity returns the turbidity calibration: raw 0-750 remapped onto
// 100-0 NTU, negative results clamped to 0, valid 0-3000.
func DefaultTurbidity() Channel {
	return Channel{
		Name:       "turbidity",
		Unit:       "NTU",
		RawMax:     DefaultRawMax,
		RefVoltage: DefaultRefVoltage,
		Transfer:   Remap,
		Remap:      RemapRange{InMin: 0, InMax: 750, OutMin: 100, OutMax: 0},
		Floor:      true,
		ValidMin:   0,
		ValidMax:   3000,
	}
}

// DefaultSet returns the factory calibration of all three channels.
func DefaultSet() Set {
	return Set{
		PH:         DefaultPH(),
		WaterLevel: DefaultWaterLevel(),
		Turbidity:  DefaultTurbidity(),
	}
}

// Validate validates every channel of the set.
func (s Set) Validate() error {
	for _, c := range []Channel{s.PH, s.WaterLevel, s.Turbidity} {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Convert converts one raw sample per channel.
func (s Set) Convert(ph, waterLevel, turbidity int) Readings {
	return Readings{
		PH:         Convert(ph, s.PH),
		WaterLevel: Convert(waterLevel, s.WaterLevel),
		Turbidity:  Convert(turbidity, s.Turbidity),
	}
}

// Frame returns the values to transmit. Invalid readings carry whatever value
// Convert produced for them (the sentinel or a passed-through value).
func (r Readings) Frame() wire.Frame {
	return wire.Frame{
		PH:         r.PH.Value,
		WaterLevel: r.WaterLevel.Value,
		Turbidity:  r.Turbidity.Value,
	}
}
