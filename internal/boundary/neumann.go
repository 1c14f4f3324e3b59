// Package boundary maps coordinates that fall outside an image back inside
// it.
package boundary

import (
	"fmt"

	"github.com/ironsheep/image-pad-mcp/internal/region"
)

// Condition resolves an out-of-range coordinate along one axis.
type Condition interface {
	// Reflect maps c into [lo, hi). hi must be greater than lo.
	Reflect(c, lo, hi int) int
}

// ZeroFluxNeumann extends an image by repeating its nearest edge pixel, so the
// first derivative across the boundary is zero. Each axis is clamped on its
// own; corner pixels take the nearest in-bounds pixel along every axis.
type ZeroFluxNeumann struct{}

var _ Condition = ZeroFluxNeumann{}

// Reflect clamps c into [lo, hi). It panics when the range is empty.
func (ZeroFluxNeumann) Reflect(c, lo, hi int) int {
	if hi <= lo {
		panic(fmt.Sprintf("boundary: empty valid range [%d, %d)", lo, hi))
	}
	if c < lo {
		return lo
	}
	if c >= hi {
		return hi - 1
	}
	return c
}

// ReflectIndex applies cond to every axis of idx against valid.
func ReflectIndex(cond Condition, idx region.Index, valid region.Region) region.Index {
	for d := 0; d < idx.Dimension(); d++ {
		idx = idx.With(d, cond.Reflect(idx.At(d), valid.Lo(d), valid.Hi(d)))
	}
	return idx
}
