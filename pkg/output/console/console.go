package console

import (
	"fmt"
	"io"
	"os"

	"github.com/itohio/waterqm/pkg/alert"
	"github.com/itohio/waterqm/pkg/link"
	"github.com/itohio/waterqm/pkg/output"
)

const timeFormat = "15:04:05"

type ConsoleOutput struct {
	w io.Writer
}

func NewConsole() output.Output { return &ConsoleOutput{w: os.Stdout} }

// NewWriter prints to w instead of stdout.
func NewWriter(w io.Writer) output.Output { return &ConsoleOutput{w: w} }

func (c *ConsoleOutput) Publish(s link.Sample, alerts []alert.Alert) error {
	ts := s.Timestamp.Format(timeFormat)
	if _, err := fmt.Fprintf(c.w, "%s ph=%.2f water_level=%.2f turbidity=%.2f\n", ts, s.PH, s.WaterLevel, s.Turbidity); err != nil {
		return err
	}
	for _, a := range alerts {
		if _, err := fmt.Fprintf(c.w, "%s ALERT %s %s\n", ts, a.Parameter, a); err != nil {
			return err
		}
	}
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }
