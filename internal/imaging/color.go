package imaging

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-pad-mcp/internal/boundary"
	"github.com/ironsheep/image-pad-mcp/internal/ndimage"
	"github.com/ironsheep/image-pad-mcp/internal/region"
)

// RGBAColor represents an RGBA color with 8-bit components including alpha.
type RGBAColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
	A uint8 `json:"a"` // Alpha/opacity component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a sampled color and where it was read from.
type ColorResult struct {
	X    int       `json:"x"`    // Requested X coordinate
	Y    int       `json:"y"`    // Requested Y coordinate
	Hex  string    `json:"hex"`  // Hex format "#RRGGBB" (no alpha)
	RGBA RGBAColor `json:"rgba"` // RGBA components with alpha
	HSL  HSLColor  `json:"hsl"`  // HSL representation

	// Extended is true when (X, Y) lies outside the image and the color was
	// taken from the nearest edge pixel at (SourceX, SourceY).
	Extended bool `json:"extended"`
	SourceX  int  `json:"source_x"`
	SourceY  int  `json:"source_y"`
}

// SampleColor returns the color at (x, y) of the zero-flux Neumann extension
// of px: coordinates inside the image read the pixel itself, coordinates
// outside read the nearest edge pixel, each axis clamped on its own.
//
// This is the value the pad filter would write at (x, y) for any padding
// large enough to reach it.
func SampleColor(px *ndimage.Image[color.NRGBA], x, y int) (*ColorResult, error) {
	valid := px.BufferedRegion()
	if valid.Dimension() != 2 || valid.IsEmpty() {
		return nil, fmt.Errorf("cannot sample from empty image")
	}

	idx := region.MustIndex(x, y)
	src := boundary.ReflectIndex(boundary.ZeroFluxNeumann{}, idx, valid)
	c := px.GetPixel(src)

	return &ColorResult{
		X:        x,
		Y:        y,
		Hex:      hexColor(c),
		RGBA:     RGBAColor{R: c.R, G: c.G, B: c.B, A: c.A},
		HSL:      hslColor(c),
		Extended: src != idx,
		SourceX:  src.At(0),
		SourceY:  src.At(1),
	}, nil
}

// LabeledPoint represents a pixel coordinate with an optional descriptive label.
type LabeledPoint struct {
	X     int    // X coordinate (0-based, may lie outside the image)
	Y     int    // Y coordinate (0-based, may lie outside the image)
	Label string // Optional descriptive label for this point
}

// LabeledColorResult combines a color sample with its optional label.
type LabeledColorResult struct {
	Label string      `json:"label,omitempty"`
	Color ColorResult `json:"color"`
}

// MultiColorResult contains color samples from multiple points, in input order.
type MultiColorResult struct {
	Samples []LabeledColorResult `json:"samples"`
}

// SampleColorsMulti samples several points at once. See SampleColor.
func SampleColorsMulti(px *ndimage.Image[color.NRGBA], points []LabeledPoint) (*MultiColorResult, error) {
	samples := make([]LabeledColorResult, 0, len(points))
	for _, p := range points {
		c, err := SampleColor(px, p.X, p.Y)
		if err != nil {
			return nil, fmt.Errorf("point %q (%d,%d): %w", p.Label, p.X, p.Y, err)
		}
		samples = append(samples, LabeledColorResult{Label: p.Label, Color: *c})
	}
	return &MultiColorResult{Samples: samples}, nil
}

// toColorful drops alpha; colour reports describe the stored RGB channels.
func toColorful(c color.NRGBA) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

func hexColor(c color.NRGBA) string {
	return strings.ToUpper(toColorful(c).Hex())
}

func hslColor(c color.NRGBA) HSLColor {
	h, s, l := toColorful(c).Hsl()
	return HSLColor{
		H: int(math.Round(h)) % 360,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}
}
