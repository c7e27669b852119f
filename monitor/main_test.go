package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/waterqm/pkg/alert"
	"github.com/itohio/waterqm/pkg/config"
	"github.com/itohio/waterqm/pkg/link"
	"github.com/itohio/waterqm/pkg/output"
	"github.com/itohio/waterqm/pkg/wire"
)

type recorder struct {
	samples []link.Sample
	alerts  [][]alert.Alert
	closed  bool
}

func (r *recorder) Publish(s link.Sample, a []alert.Alert) error {
	r.samples = append(r.samples, s)
	r.alerts = append(r.alerts, a)
	return nil
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func TestInitOutputs(t *testing.T) {
	cfg := config.Default()
	outs, err := initOutputs(cfg)
	require.NoError(t, err)
	assert.Len(t, outs, 1)

	cfg.Outputs = []config.OutputConfig{{Type: "console"}, {Type: "printer"}}
	_, err = initOutputs(cfg)
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	samples := make(chan link.Sample, 2)
	samples <- link.Sample{Frame: wire.Frame{PH: 7, WaterLevel: 50, Turbidity: 5}}
	samples <- link.Sample{Frame: wire.Frame{PH: 7, WaterLevel: 1, Turbidity: 5}}
	close(samples)

	rec := &recorder{}
	run(context.Background(), samples, alert.FromConfig(config.Default().Alerts), []output.Output{rec})

	require.Len(t, rec.samples, 2)
	assert.Empty(t, rec.alerts[0])
	require.Len(t, rec.alerts[1], 1)
	assert.Equal(t, alert.WaterLevel, rec.alerts[1][0].Parameter)
}

func TestRun_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		run(ctx, make(chan link.Sample), alert.Thresholds{}, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not stop")
	}
}

func TestNewDevice_Mock(t *testing.T) {
	cfg := config.Default()
	cfg.Interval = 5 * time.Millisecond
	cfg.Mock.Noise = 0
	cfg.Mock.PH = 1023

	d, err := newDevice(cfg, true)
	require.NoError(t, err)
	require.NoError(t, d.Connect())
	defer d.Close()

	select {
	case s := <-d.Samples():
		assert.Equal(t, float32(5), s.PH)
	case <-time.After(2 * time.Second):
		t.Fatal("no sample from loopback")
	}
}
