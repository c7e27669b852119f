package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/waterqm/pkg/adc"
	"github.com/itohio/waterqm/pkg/config"
	"github.com/itohio/waterqm/pkg/link"
	"github.com/itohio/waterqm/pkg/poller"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port to write readings to (\"-\" writes to stdout)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use simulated sensors instead of the ADC")
		listFlag   = flag.Bool("list", false, "List serial ports and exit")
	)
	flag.Parse()

	if *listFlag {
		listPorts()
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *mockFlag {
		cfg.Source.Type = config.SourceMock
	}

	set, err := cfg.Sensors()
	if err != nil {
		log.Fatalf("Invalid sensor configuration: %v", err)
	}

	src, err := adc.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open %s source: %v", cfg.Source.Type, err)
	}
	defer src.Close()

	out, err := openOutput(cfg.Serial.Port)
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()

	p, err := poller.New(src, set, cfg.Inputs(), out, cfg.Interval)
	if err != nil {
		log.Fatalf("Failed to create poller: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Polling %s source every %v, writing to %s at %d baud", cfg.Source.Type, cfg.Interval, cfg.Serial.Port, link.BaudRate)
	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Station stopped: %v", err)
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func openOutput(port string) (io.WriteCloser, error) {
	if port == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return link.OpenPort(port)
}

func listPorts() {
	ports, err := link.Ports()
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range ports {
		log.Printf("%s\t%s", p.Name, p.Description)
	}
}
