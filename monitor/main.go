package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/itohio/waterqm/pkg/adc"
	"github.com/itohio/waterqm/pkg/alert"
	"github.com/itohio/waterqm/pkg/config"
	"github.com/itohio/waterqm/pkg/link"
	"github.com/itohio/waterqm/pkg/output"
	"github.com/itohio/waterqm/pkg/output/console"
	"github.com/itohio/waterqm/pkg/output/mqtt"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., /dev/ttyACM0 or COM4)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use an in-process simulated station instead of the serial port")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	device, err := newDevice(cfg, *mockFlag)
	if err != nil {
		log.Fatal(err)
	}

	outputs, err := initOutputs(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		for _, o := range outputs {
			o.Close()
		}
	}()

	if err := device.Connect(); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer device.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run(ctx, device.Samples(), alert.FromConfig(cfg.Alerts), outputs)
}

func newDevice(cfg *config.Config, mock bool) (link.Device, error) {
	if !mock {
		return link.NewSerial(cfg.Serial.Port, link.DefaultBufferSize), nil
	}
	set, err := cfg.Sensors()
	if err != nil {
		return nil, err
	}
	src := adc.Averaged(adc.NewMockFromConfig(cfg), cfg.Source.Oversample)
	return link.NewLoopback(src, set, cfg.Inputs(), cfg.Interval, link.DefaultBufferSize), nil
}

// run publishes every received sample until the device stops or ctx is done.
func run(ctx context.Context, samples <-chan link.Sample, th alert.Thresholds, outputs []output.Output) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-samples:
			if !ok {
				log.Printf("Station link closed")
				return
			}
			alerts := th.Evaluate(s.Frame)
			for _, o := range outputs {
				if err := o.Publish(s, alerts); err != nil {
					log.Printf("Publish error: %v", err)
				}
			}
		}
	}
}

func initOutputs(cfg *config.Config) ([]output.Output, error) {
	outs := make([]output.Output, 0, len(cfg.Outputs))
	for _, oc := range cfg.Outputs {
		switch strings.ToLower(oc.Type) {
		case config.OutputConsole:
			outs = append(outs, console.NewConsole())
		case config.OutputMQTT:
			var mc config.MQTTConfig
			if oc.MQTT != nil {
				mc = *oc.MQTT
			}
			o, err := mqtt.NewMQTT(mc)
			if err != nil {
				closeAll(outs)
				return nil, err
			}
			outs = append(outs, o)
		default:
			closeAll(outs)
			return nil, fmt.Errorf("unknown output type %q", oc.Type)
		}
	}
	return outs, nil
}

func closeAll(outs []output.Output) {
	for _, o := range outs {
		o.Close()
	}
}
