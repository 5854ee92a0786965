package color

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexPattern = regexp.MustCompile(`^#[0-9A-F]{6}$`)

func TestPalette_Shape(t *testing.T) {
	p := Palette()
	require.Len(t, p, PaletteSize)

	for i, c := range p {
		assert.Regexp(t, hexPattern, c, "entry %d", i)
	}
}

func TestPalette_FirstEntry(t *testing.T) {
	// hue 0, bold tier (85%, 75%)
	assert.Equal(t, "#F58989", At(0))
}

func TestPalette_Deterministic(t *testing.T) {
	assert.Equal(t, buildPalette(), palette)
}

func TestPalette_ReturnsCopy(t *testing.T) {
	p := Palette()
	p[0] = "#000000"
	assert.Equal(t, "#F58989", At(0))
}

func TestForTagID_Wraps(t *testing.T) {
	assert.Equal(t, At(0), ForTagID(1))
	assert.Equal(t, ForTagID(1), ForTagID(129))
	assert.Equal(t, At(1), ForTagID(2))
	assert.Equal(t, At(127), ForTagID(128))
}

func TestHSLToRGB(t *testing.T) {
	tests := []struct {
		name    string
		h, s, l float64
		r, g, b uint8
	}{
		{"white", 0, 0, 1, 255, 255, 255},
		{"black", 0, 0, 0, 0, 0, 0},
		{"red", 0, 1, 0.5, 255, 0, 0},
		{"green", 120, 1, 0.5, 0, 255, 0},
		{"blue", 240, 1, 0.5, 0, 0, 255},
		{"mid gray rounds up", 0, 0, 0.5, 128, 128, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := hslToRGB(tt.h, tt.s, tt.l)
			assert.Equal(t, []uint8{tt.r, tt.g, tt.b}, []uint8{r, g, b})
		})
	}
}
