package sensor

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoltage(t *testing.T) {
	ch := DefaultPH()

	tests := []struct {
		name string
		raw  int
		want float32
	}{
		{name: "zero", raw: 0, want: 0.0},
		{name: "full scale", raw: 1023, want: 5.0},
		{name: "mid scale", raw: 512, want: 2.5024},
		{name: "below range clamps", raw: -10, want: 0.0},
		{name: "above range clamps", raw: 4095, want: 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ch.Voltage(tt.raw), 0.001)
		})
	}
}

func TestConvert_PH(t *testing.T) {
	ch := DefaultPH()

	t.Run("raw 0 is a true zero", func(t *testing.T) {
		r := Convert(0, ch)
		assert.True(t, r.Valid)
		assert.Equal(t, float32(0), r.Value)
	})

	t.Run("raw 1023 is 5.0", func(t *testing.T) {
		r := Convert(1023, ch)
		assert.True(t, r.Valid)
		assert.InDelta(t, 5.0, r.Value, 1e-5)
	})

	t.Run("offset and slope", func(t *testing.T) {
		c := ch
		c.Slope = 2.5
		c.Offset = -0.5
		r := Convert(1023, c)
		assert.True(t, r.Valid)
		assert.InDelta(t, 12.0, r.Value, 1e-4)
	})

	t.Run("above range yields sentinel", func(t *testing.T) {
		c := ch
		c.Slope = 4.0 // 5V -> 20 pH
		r := Convert(1023, c)
		assert.False(t, r.Valid)
		assert.Equal(t, float32(0), r.Value)
	})

	t.Run("below range yields sentinel", func(t *testing.T) {
		c := ch
		c.Offset = -1.0
		r := Convert(0, c)
		assert.False(t, r.Valid)
		assert.Equal(t, float32(0), r.Value)
	})

	t.Run("sentinel and true zero share a value", func(t *testing.T) {
		c := ch
		c.Offset = -1.0
		invalid := Convert(0, c)
		zero := Convert(0, ch)
		assert.Equal(t, zero.Value, invalid.Value)
		assert.NotEqual(t, zero.Valid, invalid.Valid)
	})
}

func TestConvert_WaterLevelPassThrough(t *testing.T) {
	ch := DefaultWaterLevel()

	t.Run("in range", func(t *testing.T) {
		r := Convert(1023, ch)
		assert.True(t, r.Valid)
		assert.InDelta(t, 5.0, r.Value, 1e-5)
	})

	t.Run("above range is transmitted unchanged", func(t *testing.T) {
		c := ch
		c.Slope = 30 // 5V -> 150
		r := Convert(1023, c)
		assert.False(t, r.Valid)
		assert.InDelta(t, 150.0, r.Value, 1e-3)
	})

	t.Run("below range is transmitted unchanged", func(t *testing.T) {
		c := ch
		c.Offset = -7.5
		r := Convert(0, c)
		assert.False(t, r.Valid)
		assert.Equal(t, float32(-7.5), r.Value)
	})

	t.Run("without pass through the sentinel is used", func(t *testing.T) {
		c := ch
		c.PassThrough = false
		c.Offset = -7.5
		r := Convert(0, c)
		assert.False(t, r.Valid)
		assert.Equal(t, float32(0), r.Value)
	})
}

func TestConvert_Turbidity(t *testing.T) {
	ch := DefaultTurbidity()

	tests := []struct {
		name string
		raw  int
		want float32
	}{
		{name: "clear water", raw: 0, want: 100},
		{name: "end of input range", raw: 750, want: 0},
		{name: "half of input range", raw: 375, want: 50},
		{name: "truncates toward zero", raw: 1, want: 100},
		{name: "truncates mid", raw: 10, want: 99},
		{name: "above input range clamps to zero", raw: 1023, want: 0},
		{name: "just above input range", raw: 760, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Convert(tt.raw, ch)
			assert.True(t, r.Valid)
			assert.Equal(t, tt.want, r.Value)
		})
	}
}

func TestConvert_TurbidityIgnoresVoltage(t *testing.T) {
	ch := DefaultTurbidity()
	ch.RefVoltage = 3.3
	ch.Slope = 100

	assert.Equal(t, float32(50), Convert(375, ch).Value)
}

func TestConvert_TurbidityWithoutFloor(t *testing.T) {
	ch := DefaultTurbidity()
	ch.Floor = false

	r := Convert(1023, ch)
	assert.False(t, r.Valid)
	assert.Equal(t, float32(0), r.Value)
}

func TestConvert_NonFinite(t *testing.T) {
	ch := DefaultWaterLevel()
	ch.Slope = math32.Inf(1)

	r := Convert(1023, ch)
	assert.False(t, r.Valid)
	assert.Equal(t, float32(0), r.Value)
}

func TestConvert_DoesNotModifyChannel(t *testing.T) {
	ch := DefaultTurbidity()
	before := ch
	_ = Convert(1023, ch)
	assert.Equal(t, before, ch)
}

func TestRemap(t *testing.T) {
	r := RemapRange{InMin: 0, InMax: 750, OutMin: 100, OutMax: 0}
	assert.Equal(t, 100, remap(0, r))
	assert.Equal(t, 0, remap(750, r))
	assert.Equal(t, -36, remap(1023, r))

	assert.Equal(t, 7, remap(5, RemapRange{InMin: 5, InMax: 5, OutMin: 7, OutMax: 9}))
}

func TestChannelValidate(t *testing.T) {
	require.NoError(t, DefaultPH().Validate())
	require.NoError(t, DefaultWaterLevel().Validate())
	require.NoError(t, DefaultTurbidity().Validate())

	tests := []struct {
		name   string
		mutate func(c *Channel)
		err    error
	}{
		{name: "raw max", mutate: func(c *Channel) { c.RawMax = 0 }, err: ErrRawMax},
		{name: "ref voltage", mutate: func(c *Channel) { c.RefVoltage = 0 }, err: ErrRefVoltage},
		{name: "valid range", mutate: func(c *Channel) { c.ValidMin, c.ValidMax = 10, 1 }, err: ErrValidRange},
		{name: "remap range", mutate: func(c *Channel) {
			c.Transfer = Remap
			c.Remap = RemapRange{InMin: 3, InMax: 3}
		}, err: ErrRemapRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultPH()
			tt.mutate(&c)
			assert.ErrorIs(t, c.Validate(), tt.err)
		})
	}

	c := DefaultPH()
	c.Transfer = Transfer(9)
	assert.Error(t, c.Validate())
}

func TestTransferString(t *testing.T) {
	assert.Equal(t, "linear", Linear.String())
	assert.Equal(t, "remap", Remap.String())
	assert.Equal(t, "transfer(7)", Transfer(7).String())
}
