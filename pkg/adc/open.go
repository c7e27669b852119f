package adc

import (
	"fmt"

	"periph.io/x/conn/v3/physic"

	"github.com/itohio/waterqm/pkg/config"
)

// Open creates the source selected by cfg.Source, oversampling included.
func Open(cfg *config.Config) (Source, error) {
	var (
		src Source
		err error
	)

	switch cfg.Source.Type {
	case config.SourceMCP3008:
		src, err = OpenMCP3008(cfg.Source.SPIPort, physic.Frequency(cfg.Source.SpeedHz)*physic.Hertz)
		if err != nil {
			return nil, err
		}
	case config.SourceMock:
		src = NewMockFromConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Source.Type)
	}

	return Averaged(src, cfg.Source.Oversample), nil
}

// NewMockFromConfig creates a mock wired to the configured channel inputs.
func NewMockFromConfig(cfg *config.Config) *Mock {
	inputs := cfg.Inputs()
	levels := map[int]int{
		inputs[0]: cfg.Mock.PH,
		inputs[1]: cfg.Mock.WaterLevel,
		inputs[2]: cfg.Mock.Turbidity,
	}
	return NewMock(levels, cfg.Mock.Noise, cfg.Mock.Period)
}
