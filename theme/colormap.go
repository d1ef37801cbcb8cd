// Package theme builds the colormaps the viewer paints intensities with:
// either one hue per channel spread around the color wheel, or a named
// sequential ramp shared by every channel.
package theme

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

type RGB [3]uint8

// Hex formats the color for terminal styling.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

var (
	White = RGB{255, 255, 255}
	Black = RGB{0, 0, 0}
)

// Colormap maps a normalized intensity to a color by interpolating over a
// fixed list of stops.
type Colormap struct {
	Name   string
	Colors []RGB
}

// Lookup returns the interpolated color for norm in [0, 1].
func (m Colormap) Lookup(norm float64) RGB {
	if norm <= 0 {
		return m.Colors[0]
	}
	if norm >= 1 {
		return m.Colors[len(m.Colors)-1]
	}

	pos := norm * float64(len(m.Colors)-1)
	i := int(pos)
	frac := pos - float64(i)

	c0 := m.Colors[i]
	c1 := m.Colors[i+1]

	return RGB{
		lerp(c0[0], c1[0], frac),
		lerp(c0[1], c1[1], frac),
		lerp(c0[2], c1[2], frac),
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}

// rampSteps matches the 128 intensity levels of the roll.
const rampSteps = 128

// Ramp builds a colormap fading from lo to hi in RGB space.
func Ramp(name string, lo, hi RGB, steps int) Colormap {
	from := toColorful(lo)
	to := toColorful(hi)
	colors := make([]RGB, steps)
	for i := range colors {
		t := float64(i) / float64(steps-1)
		colors[i] = fromColorful(from.BlendRgb(to, t))
	}
	return Colormap{Name: name, Colors: colors}
}

// Sequential scheme anchors: zero intensity fades in from the background,
// full intensity reaches the anchor.
var anchors = map[string]RGB{
	"Greys":   {82, 82, 82},
	"Purples": {84, 39, 143},
	"Blues":   {8, 69, 148},
	"Greens":  {0, 109, 44},
	"Oranges": {217, 72, 1},
	"Reds":    {165, 15, 21},
}

// ChannelScheme assigns each channel its own hue instead of a shared ramp.
const ChannelScheme = "Channel"

// Names lists the selectable schemes, ChannelScheme first.
func Names() []string {
	return []string{ChannelScheme, "Greys", "Purples", "Blues", "Greens", "Oranges", "Reds"}
}

// Maps returns one colormap per channel for the named scheme over the given
// background. Unknown names fall back to the channel-hue scheme.
func Maps(name string, nch int, bg RGB) []Colormap {
	anchor, ok := anchors[name]
	if !ok {
		return ChannelMaps(nch, bg)
	}
	maps := make([]Colormap, nch)
	shared := Ramp(name, bg, anchor, rampSteps)
	for i := range maps {
		maps[i] = shared
	}
	return maps
}

// ChannelMaps spreads channel hues evenly around the color wheel, each
// ramping up from the background color.
func ChannelMaps(nch int, bg RGB) []Colormap {
	maps := make([]Colormap, nch)
	for i := range maps {
		hue := 360 * float64(i) / float64(nch)
		full := fromColorful(colorful.Hsv(hue, 1, 1))
		maps[i] = Ramp(fmt.Sprintf("channel %d", i), bg, full, rampSteps)
	}
	return maps
}

func toColorful(c RGB) colorful.Color {
	return colorful.Color{
		R: float64(c[0]) / 255,
		G: float64(c[1]) / 255,
		B: float64(c[2]) / 255,
	}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{r, g, b}
}
