package notes

import "math"

// Range is an inclusive pair of bounds. Low may be greater than High to
// express a strip row wired in the opposite direction.
type Range struct {
	Low, High int
}

// Mapper places a note on two rows of lights by linear interpolation.
type Mapper struct {
	Notes Range
	Row1  Range
	Row2  Range
}

// InverseLerp returns where v sits between a and b, clamped to [0,1].
// A zero-width range yields 0.
func InverseLerp(a, b, v float64) float64 {
	if a == b {
		return 0
	}
	return clamp01((v - a) / (b - a))
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LightsForNote returns the light on each row that represents note. Notes
// outside the configured note range land on the nearest end of each row.
// Halfway positions round to the even index.
func (m Mapper) LightsForNote(note int) [2]int {
	t := InverseLerp(float64(m.Notes.Low), float64(m.Notes.High), float64(note))
	return [2]int{m.Row1.at(t), m.Row2.at(t)}
}

func (r Range) at(t float64) int {
	return int(math.RoundToEven(Lerp(float64(r.Low), float64(r.High), t)))
}
