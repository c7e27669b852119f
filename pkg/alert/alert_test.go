package alert

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/itohio/waterqm/pkg/config"
	"github.com/itohio/waterqm/pkg/wire"
)

func TestEvaluate(t *testing.T) {
	th := FromConfig(config.Default().Alerts)

	tests := []struct {
		name  string
		frame wire.Frame
		want  []Alert
	}{
		{
			name:  "all good",
			frame: wire.Frame{PH: 7, WaterLevel: 50, Turbidity: 5},
		},
		{
			name:  "boundaries do not alert",
			frame: wire.Frame{PH: 8.5, WaterLevel: 2, Turbidity: 25},
		},
		{
			name:  "ph high",
			frame: wire.Frame{PH: 9, WaterLevel: 50, Turbidity: 5},
			want:  []Alert{{Parameter: PH, Level: High, Value: 9, Threshold: 8.5, Message: "pH level is too high"}},
		},
		{
			name:  "everything wrong",
			frame: wire.Frame{PH: 5, WaterLevel: 1, Turbidity: 100},
			want: []Alert{
				{Parameter: PH, Level: Low, Value: 5, Threshold: 6.5, Message: "pH level is too low"},
				{Parameter: WaterLevel, Level: Low, Value: 1, Threshold: 2, Message: "Water level is too low"},
				{Parameter: Turbidity, Level: High, Value: 100, Threshold: 25, Message: "Water turbidity is too high"},
			},
		},
		{
			// the wire carries 0.00 for failed readings, indistinguishable from a real zero
			name:  "sentinel zeros",
			frame: wire.Frame{},
			want: []Alert{
				{Parameter: PH, Level: Low, Value: 0, Threshold: 6.5, Message: "pH level is too low"},
				{Parameter: WaterLevel, Level: Low, Value: 0, Threshold: 2, Message: "Water level is too low"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := th.Evaluate(tt.frame)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Evaluate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAlertString(t *testing.T) {
	a := Alert{Parameter: Turbidity, Level: High, Value: 30, Threshold: 25, Message: "Water turbidity is too high"}
	assert.Equal(t, "Water turbidity is too high: 30.00 (threshold 25.00)", a.String())
}
