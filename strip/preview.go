package strip

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chase3718/lou-leds/adalight"
)

// Preview stands in for the serial port when no strip is attached. Every
// frame it receives is decoded and drawn as one line of coloured cells.
type Preview struct {
	out   io.Writer
	width int
}

// NewPreview draws frames to out, wrapping after width lights (0 means one
// line per frame).
func NewPreview(out io.Writer, width int) *Preview {
	return &Preview{out: out, width: width}
}

func (p *Preview) Write(b []byte) (int, error) {
	px, err := adalight.Decode(b)
	if err != nil {
		return 0, err
	}
	if _, err := io.WriteString(p.out, Render(px, p.width)); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (p *Preview) Close() error { return nil }

// Render draws px as rows of two-space cells with the pixel colour as
// background.
func Render(px []adalight.RGB, width int) string {
	var sb strings.Builder
	for i, c := range px {
		if width > 0 && i > 0 && i%width == 0 {
			sb.WriteByte('\n')
		}
		hex := fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
		sb.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  "))
	}
	sb.WriteByte('\n')
	return sb.String()
}
