package region

import "fmt"

// Region is a half-open hyper-rectangle in index space: along each axis d it
// covers [Index.At(d), Index.At(d)+Size.At(d)). A region with any zero size
// component is empty.
type Region struct {
	index Index
	size  Size
}

// New builds a Region from a start index and a size of the same dimension.
func New(index Index, size Size) (Region, error) {
	if index.Dimension() == 0 || index.Dimension() != size.Dimension() {
		return Region{}, fmt.Errorf("%w: index has %d axes, size has %d",
			ErrDimension, index.Dimension(), size.Dimension())
	}
	if _, err := size.CheckedProduct(); err != nil {
		return Region{}, err
	}
	for d := 0; d < index.Dimension(); d++ {
		if lo := index.At(d); lo+size.At(d) < lo {
			return Region{}, fmt.Errorf("%w: axis %d ends past the largest index", ErrTooLarge, d)
		}
	}
	return Region{index: index, size: size}, nil
}

// Must is like New but panics on error.
func Must(index Index, size Size) Region {
	r, err := New(index, size)
	if err != nil {
		panic(err)
	}
	return r
}

// FromSize returns the region of the given size starting at the origin.
func FromSize(size Size) Region {
	return Region{index: Index{dim: size.dim}, size: size}
}

// Index returns the start index.
func (r Region) Index() Index { return r.index }

// Size returns the extent.
func (r Region) Size() Size { return r.size }

// Dimension returns the number of axes.
func (r Region) Dimension() int { return r.index.Dimension() }

// Lo returns the first index along axis d.
func (r Region) Lo(d int) int { return r.index.At(d) }

// Hi returns one past the last index along axis d.
func (r Region) Hi(d int) int { return r.index.At(d) + r.size.At(d) }

// NumberOfPixels returns the number of indices covered.
func (r Region) NumberOfPixels() int { return r.size.Product() }

// IsEmpty reports whether the region covers no pixels.
func (r Region) IsEmpty() bool { return r.NumberOfPixels() == 0 }

// IsInside reports whether idx lies within the region.
func (r Region) IsInside(idx Index) bool {
	if idx.Dimension() != r.Dimension() {
		return false
	}
	for d := 0; d < r.Dimension(); d++ {
		c := idx.At(d)
		if c < r.Lo(d) || c >= r.Hi(d) {
			return false
		}
	}
	return true
}

// Contains reports whether every pixel of o lies within r. An empty o of the
// same dimension is always contained.
func (r Region) Contains(o Region) bool {
	if o.Dimension() != r.Dimension() {
		return false
	}
	if o.IsEmpty() {
		return true
	}
	for d := 0; d < r.Dimension(); d++ {
		if o.Lo(d) < r.Lo(d) || o.Hi(d) > r.Hi(d) {
			return false
		}
	}
	return true
}

// Grow returns r extended by lower[d] before and upper[d] after each axis.
// It returns ErrTooLarge when a bound, an extent or the pixel count of the
// result would overflow int.
func (r Region) Grow(lower, upper Size) (Region, error) {
	if lower.Dimension() != r.Dimension() || upper.Dimension() != r.Dimension() {
		return Region{}, fmt.Errorf("%w: region has %d axes, pads have %d and %d",
			ErrDimension, r.Dimension(), lower.Dimension(), upper.Dimension())
	}
	out := r
	for d := 0; d < r.Dimension(); d++ {
		lo, below, above := r.Lo(d), lower.At(d), upper.At(d)
		start := lo - below
		extent := r.size.At(d) + below
		grown := extent + above
		if start > lo || extent < below || grown < extent || start+grown < start {
			return Region{}, fmt.Errorf("%w: axis %d of %s grown by %d and %d",
				ErrTooLarge, d, r, below, above)
		}
		out.index = out.index.With(d, start)
		out.size = out.size.With(d, grown)
	}
	if _, err := out.size.CheckedProduct(); err != nil {
		return Region{}, err
	}
	return out, nil
}

// Offset returns the position of idx in a buffer laid out over r with axis 0
// varying fastest. idx must lie inside r.
func (r Region) Offset(idx Index) int {
	off, stride := 0, 1
	for d := 0; d < r.Dimension(); d++ {
		off += (idx.At(d) - r.Lo(d)) * stride
		stride *= r.size.At(d)
	}
	return off
}

// ForEach calls fn for every index of r, axis 0 varying fastest.
func (r Region) ForEach(fn func(Index)) {
	if r.IsEmpty() {
		return
	}
	idx := r.index
	dim := r.Dimension()
	for {
		fn(idx)
		d := 0
		for ; d < dim; d++ {
			idx.c[d]++
			if idx.c[d] < r.Hi(d) {
				break
			}
			idx.c[d] = r.Lo(d)
		}
		if d == dim {
			return
		}
	}
}

func (r Region) String() string {
	return fmt.Sprintf("Region{Index: %s, Size: %s}", r.index, r.size)
}
