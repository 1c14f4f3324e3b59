package region

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// MaxDimension is the largest supported image dimension.
const MaxDimension = 8

var (
	// ErrDimension reports an unsupported or mismatched dimension.
	ErrDimension = errors.New("invalid dimension")

	// ErrNegativeSize reports a negative size component.
	ErrNegativeSize = errors.New("negative size")

	// ErrTooLarge reports a coordinate, extent or pixel count that does not
	// fit in an int.
	ErrTooLarge = errors.New("region too large")
)

// Index is an N-dimensional pixel coordinate. Dimension 0 varies fastest in
// memory. Index is a value type; With returns a modified copy.
type Index struct {
	dim uint8
	c   [MaxDimension]int
}

// NewIndex builds an Index from its coordinates.
func NewIndex(coords ...int) (Index, error) {
	if len(coords) < 1 || len(coords) > MaxDimension {
		return Index{}, fmt.Errorf("%w: %d coordinates (want 1..%d)", ErrDimension, len(coords), MaxDimension)
	}
	var idx Index
	idx.dim = uint8(len(coords))
	copy(idx.c[:], coords)
	return idx, nil
}

// MustIndex is like NewIndex but panics on error.
func MustIndex(coords ...int) Index {
	idx, err := NewIndex(coords...)
	if err != nil {
		panic(err)
	}
	return idx
}

// Dimension returns the number of coordinates.
func (i Index) Dimension() int { return int(i.dim) }

// At returns coordinate d.
func (i Index) At(d int) int {
	checkAxis(d, int(i.dim))
	return i.c[d]
}

// With returns a copy of i with coordinate d set to v.
func (i Index) With(d, v int) Index {
	checkAxis(d, int(i.dim))
	i.c[d] = v
	return i
}

// Coords returns the coordinates as a new slice.
func (i Index) Coords() []int {
	out := make([]int, i.dim)
	copy(out, i.c[:i.dim])
	return out
}

func (i Index) String() string {
	return formatInts(i.c[:i.dim])
}

// Size is the extent of a region along each dimension. Components are never
// negative.
type Size struct {
	dim uint8
	s   [MaxDimension]int
}

// NewSize builds a Size from its components.
func NewSize(sizes ...int) (Size, error) {
	if len(sizes) < 1 || len(sizes) > MaxDimension {
		return Size{}, fmt.Errorf("%w: %d sizes (want 1..%d)", ErrDimension, len(sizes), MaxDimension)
	}
	var sz Size
	sz.dim = uint8(len(sizes))
	for d, v := range sizes {
		if v < 0 {
			return Size{}, fmt.Errorf("%w: component %d is %d", ErrNegativeSize, d, v)
		}
		sz.s[d] = v
	}
	return sz, nil
}

// MustSize is like NewSize but panics on error.
func MustSize(sizes ...int) Size {
	sz, err := NewSize(sizes...)
	if err != nil {
		panic(err)
	}
	return sz
}

// UniformSize returns a Size of dimension dim with every component set to v.
func UniformSize(dim, v int) (Size, error) {
	if dim < 1 || dim > MaxDimension {
		return Size{}, fmt.Errorf("%w: %d", ErrDimension, dim)
	}
	sizes := make([]int, dim)
	for d := range sizes {
		sizes[d] = v
	}
	return NewSize(sizes...)
}

// Dimension returns the number of components.
func (s Size) Dimension() int { return int(s.dim) }

// At returns component d.
func (s Size) At(d int) int {
	checkAxis(d, int(s.dim))
	return s.s[d]
}

// With returns a copy of s with component d set to v. v must not be negative.
func (s Size) With(d, v int) Size {
	checkAxis(d, int(s.dim))
	if v < 0 {
		panic(fmt.Errorf("%w: component %d is %d", ErrNegativeSize, d, v))
	}
	s.s[d] = v
	return s
}

// Components returns the components as a new slice.
func (s Size) Components() []int {
	out := make([]int, s.dim)
	copy(out, s.s[:s.dim])
	return out
}

// Product returns the number of pixels covered. It wraps silently on
// overflow; use CheckedProduct for sizes that come from outside.
func (s Size) Product() int {
	if s.dim == 0 {
		return 0
	}
	n := 1
	for d := 0; d < int(s.dim); d++ {
		n *= s.s[d]
	}
	return n
}

// CheckedProduct is like Product but returns ErrTooLarge when the pixel count
// overflows int.
func (s Size) CheckedProduct() (int, error) {
	if s.dim == 0 {
		return 0, nil
	}
	for d := 0; d < int(s.dim); d++ {
		if s.s[d] == 0 {
			return 0, nil
		}
	}
	n := 1
	for d := 0; d < int(s.dim); d++ {
		if n > math.MaxInt/s.s[d] {
			return 0, fmt.Errorf("%w: %s pixels overflow int", ErrTooLarge, s)
		}
		n *= s.s[d]
	}
	return n, nil
}

// IsZero reports whether every component is zero.
func (s Size) IsZero() bool {
	for d := 0; d < int(s.dim); d++ {
		if s.s[d] != 0 {
			return false
		}
	}
	return true
}

func (s Size) String() string {
	return formatInts(s.s[:s.dim])
}

func checkAxis(d, dim int) {
	if d < 0 || d >= dim {
		panic(fmt.Errorf("%w: axis %d out of range for dimension %d", ErrDimension, d, dim))
	}
}

func formatInts(v []int) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprint(x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
