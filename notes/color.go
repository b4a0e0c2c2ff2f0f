package notes

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/chase3718/lou-leds/adalight"
)

// ColorForNote maps a note to one of twelve fully saturated hues spaced
// evenly around the colour wheel. Notes an octave apart share a colour.
func ColorForNote(note int) adalight.RGB {
	key := note % 12
	if key < 0 {
		key += 12
	}
	// key*360/12 stays exact for every key
	c := colorful.Hsv(float64(key)*360/12, 1, 1)
	return toRGB(c)
}

// Dim scales c toward black. level 1 keeps c, level 0 is black; values
// outside [0,1] are clamped.
func Dim(c adalight.RGB, level float64) adalight.RGB {
	level = clamp01(level)
	black := colorful.Color{}
	return toRGB(fromRGB(c).BlendRgb(black, 1-level))
}

func fromRGB(c adalight.RGB) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// toRGB rounds each channel to the nearest 8-bit value.
func toRGB(c colorful.Color) adalight.RGB {
	r, g, b := c.Clamped().RGB255()
	return adalight.RGB{R: r, G: g, B: b}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
