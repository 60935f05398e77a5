package render

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/palette"
)

func TestParseHex(t *testing.T) {
	t.Parallel()

	c, err := ParseHex("#6378AA")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x63, G: 0x78, B: 0xAA, A: 0xff}, c)

	c, err = ParseHex("550000")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x55, A: 0xff}, c)

	for _, bad := range []string{"", "#FFF", "#GGGGGG", "#1234567"} {
		_, err := ParseHex(bad)
		assert.Error(t, err, bad)
	}
}

func TestGradientSample(t *testing.T) {
	t.Parallel()

	g := DefaultGradient()
	tests := []struct {
		t    float64
		want color.Color
	}{
		{0, color.NRGBA{R: 0xFF, G: 0xAA, B: 0xAA, A: 0xff}},
		{0.25, color.NRGBA{R: 0xD4, G: 0x6A, B: 0x6A, A: 0xff}},
		{0.5, color.NRGBA{R: 0xAA, G: 0x39, B: 0x39, A: 0xff}},
		{1, color.NRGBA{R: 0x55, A: 0xff}},
		{0.125, color.NRGBA{R: 234, G: 138, B: 138, A: 0xff}},
		{-3, color.NRGBA{R: 0xFF, G: 0xAA, B: 0xAA, A: 0xff}},
		{7, color.NRGBA{R: 0x55, A: 0xff}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, g.Sample(tt.t), "t=%v", tt.t)
	}
	assert.Nil(t, g.Sample(math.NaN()))
}

func TestGradientColorMap(t *testing.T) {
	t.Parallel()

	g := DefaultGradient()
	g.SetMin(10)
	g.SetMax(20)
	assert.Equal(t, 10.0, g.Min())
	assert.Equal(t, 20.0, g.Max())

	c, err := g.At(20)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x55, A: 0xff}, c)

	_, err = g.At(9)
	assert.ErrorIs(t, err, palette.ErrUnderflow)
	_, err = g.At(21)
	assert.ErrorIs(t, err, palette.ErrOverflow)
	_, err = g.At(math.NaN())
	assert.ErrorIs(t, err, palette.ErrNaN)

	g.SetAlpha(0.5)
	c, err = g.At(10)
	require.NoError(t, err)
	_, _, _, a := c.RGBA()
	assert.InDelta(t, 0x8080, a, 0x100)
}

func TestGradientPalette(t *testing.T) {
	t.Parallel()

	cols := DefaultGradient().Palette(len(DefaultStops)).Colors()
	require.Len(t, cols, len(DefaultStops))
	for i, s := range DefaultStops {
		want, err := ParseHex(s)
		require.NoError(t, err)
		assert.Equal(t, want, cols[i], "stop %d", i)
	}
}

func TestNewGradient_TooFewStops(t *testing.T) {
	t.Parallel()

	_, err := NewGradient("#FFFFFF")
	assert.Error(t, err)
}
