//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_MS = 1000 // One line per second

	// ADC configuration
	ADC_REFERENCE_MV = 5000 // Reference voltage in millivolts (5V)
	ADC_RESOLUTION   = 10   // ADC resolution in bits (10-bit = 0-1023)

	// Sensor pins
	PIN_PH          = machine.ADC0
	PIN_WATER_LEVEL = machine.ADC1
	PIN_TURBIDITY   = machine.ADC2

	// Serial configuration
	// Line format: "ph,water_level,turbidity\n"
	// Example: "14.00,100.00,3000.00\n" = ~22 bytes max per line
	// 1 line/sec * 22 bytes/line = 22 bytes/sec, far below 960 bytes/sec at 9600 8N1
	UART_BAUD_RATE = 9600
)
