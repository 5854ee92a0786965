// Package color generates the tag color palette.
package color

import (
	"fmt"
	"math"
)

// PaletteSize is the number of distinct tag colors.
const PaletteSize = 128

// Golden ratio conjugate; stepping hue by it spreads consecutive entries around the wheel.
const goldenRatio = 0.6180339887

// tier is a saturation/lightness pair. Entries cycle bold, medium, whisper.
type tier struct {
	saturation float64
	lightness  float64
}

var tiers = [3]tier{
	{saturation: 0.85, lightness: 0.75},
	{saturation: 0.65, lightness: 0.85},
	{saturation: 0.45, lightness: 0.93},
}

var palette = buildPalette()

func buildPalette() [PaletteSize]string {
	var p [PaletteSize]string
	for i := range PaletteSize {
		_, hue := math.Modf(float64(i) * goldenRatio)
		t := tiers[i%len(tiers)]
		r, g, b := hslToRGB(hue*360, t.saturation, t.lightness)
		p[i] = fmt.Sprintf("#%02X%02X%02X", r, g, b)
	}
	return p
}

// Palette returns a copy of the full palette.
func Palette() []string {
	out := make([]string, PaletteSize)
	copy(out, palette[:])
	return out
}

// At returns palette entry i modulo the palette size.
func At(i int) string {
	return palette[((i%PaletteSize)+PaletteSize)%PaletteSize]
}

// ForTagID returns the color a tag receives when it has none: palette[(id-1) mod 128].
func ForTagID(tagID int64) string {
	return At(int((tagID - 1) % PaletteSize))
}

// hslToRGB converts HSL to RGB channels, rounding half up.
// h: hue (0-360), s: saturation (0-1), l: lightness (0-1).
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	h /= 360.0

	var r1, g1, b1 float64
	if s == 0 {
		r1, g1, b1 = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q

		r1 = hueToRGB(p, q, h+1.0/3.0)
		g1 = hueToRGB(p, q, h)
		b1 = hueToRGB(p, q, h-1.0/3.0)
	}

	return channel(r1), channel(g1), channel(b1)
}

func channel(v float64) uint8 {
	return uint8(math.Floor(v*255 + 0.5))
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
