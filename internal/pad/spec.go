package pad

import (
	"errors"
	"fmt"

	"github.com/ironsheep/image-pad-mcp/internal/region"
)

var (
	// ErrNoInput is returned when the filter runs without an input image.
	ErrNoInput = errors.New("no input image")

	// ErrEmptyInput is returned when the input covers no pixels.
	ErrEmptyInput = errors.New("input region is empty")

	// ErrDimensionMismatch is returned when pad amounts and input differ in
	// dimension.
	ErrDimensionMismatch = errors.New("pad dimension does not match input")

	// ErrRegionUnreachable is returned when the requested output region
	// extends past what the configured pads can supply.
	ErrRegionUnreachable = errors.New("requested region not reachable under configured padding")
)

// Spec describes a padding: per-axis amounts added below and above the input
// region, and the resulting output region.
type Spec struct {
	Lower  region.Size
	Upper  region.Size
	Input  region.Region
	Output region.Region
}

// NewSpec computes the padded geometry of input. A zero-dimension lower or
// upper size means no padding on that side.
func NewSpec(input region.Region, lower, upper region.Size) (Spec, error) {
	if input.Dimension() == 0 || input.IsEmpty() {
		return Spec{}, fmt.Errorf("%w: %s", ErrEmptyInput, input)
	}
	dim := input.Dimension()
	if lower.Dimension() == 0 {
		lower, _ = region.UniformSize(dim, 0)
	}
	if upper.Dimension() == 0 {
		upper, _ = region.UniformSize(dim, 0)
	}
	if lower.Dimension() != dim || upper.Dimension() != dim {
		return Spec{}, fmt.Errorf("%w: input has %d axes, lower pad %d, upper pad %d",
			ErrDimensionMismatch, dim, lower.Dimension(), upper.Dimension())
	}

	output, err := input.Grow(lower, upper)
	if err != nil {
		return Spec{}, err
	}
	return Spec{Lower: lower, Upper: upper, Input: input, Output: output}, nil
}

// CheckRequested verifies that requested can be produced from the input.
func (s Spec) CheckRequested(requested region.Region) error {
	if !s.Output.Contains(requested) {
		return fmt.Errorf("%w: %s not inside %s", ErrRegionUnreachable, requested, s.Output)
	}
	return nil
}
