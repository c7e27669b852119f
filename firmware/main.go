//go:build tinygo

//go:generate tinygo flash -target=arduino

package main

import (
	"machine"
	"time"

	"github.com/itohio/waterqm/pkg/sensor"
	"github.com/itohio/waterqm/pkg/wire"
)

var (
	adcPH         machine.ADC
	adcWaterLevel machine.ADC
	adcTurbidity  machine.ADC
	uart          = machine.UART0

	// Calibration of the three probes
	channels = sensor.DefaultSet()

	// Output line buffer, reused every cycle
	line [32]byte
)

func main() {
	machine.InitADC()

	PIN_PH.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_WATER_LEVEL.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_TURBIDITY.Configure(machine.PinConfig{Mode: machine.PinInput})

	adcPH = machine.ADC{Pin: PIN_PH}
	adcWaterLevel = machine.ADC{Pin: PIN_WATER_LEVEL}
	adcTurbidity = machine.ADC{Pin: PIN_TURBIDITY}

	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}

	adcPH.Configure(adcConfig)
	adcWaterLevel.Configure(adcConfig)
	adcTurbidity.Configure(adcConfig)

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	// Main loop: read, convert, send, wait
	for {
		readings := channels.Convert(
			readRaw(adcPH),
			readRaw(adcWaterLevel),
			readRaw(adcTurbidity),
		)

		// Output format: "ph,water_level,turbidity\n", two decimals each
		buf := wire.Append(line[:0], readings.Frame())
		uart.Write(buf)

		time.Sleep(time.Duration(SAMPLE_INTERVAL_MS) * time.Millisecond)
	}
}

// readRaw returns the sample at ADC_RESOLUTION bits. machine.ADC.Get is
// always scaled to 16 bits.
func readRaw(adc machine.ADC) int {
	return int(adc.Get() >> (16 - ADC_RESOLUTION))
}
