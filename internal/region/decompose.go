package region

import "fmt"

// span is one contiguous index range along a single axis.
type span struct {
	start, size int
}

// Decomposer walks an output region as the product of per-axis ranges. Each
// axis of the output is cut at the bounds of an interior region into at most
// three ranges: the lower margin, the part overlapping the interior, and the
// upper margin. Sub-regions are produced like a multi-radix odometer with
// axis 0 as the fastest counter, so the order is fixed for a given input.
//
//	d, _ := region.NewDecomposer(output, input)
//	for r, ok := d.Next(); ok; r, ok = d.Next() {
//	    // ...
//	}
type Decomposer struct {
	dim     int
	spans   [MaxDimension][]span
	counter [MaxDimension]int
	more    bool
}

// NewDecomposer prepares the decomposition of output against interior. The
// two regions must have the same dimension; interior need not lie inside
// output.
func NewDecomposer(output, interior Region) (*Decomposer, error) {
	if output.Dimension() == 0 || output.Dimension() != interior.Dimension() {
		return nil, fmt.Errorf("%w: output has %d axes, interior has %d",
			ErrDimension, output.Dimension(), interior.Dimension())
	}
	d := &Decomposer{dim: output.Dimension(), more: !output.IsEmpty()}
	if !d.more {
		return d, nil
	}
	for axis := 0; axis < d.dim; axis++ {
		lo, hi := output.Lo(axis), output.Hi(axis)
		cuts := []int{
			lo,
			clampInt(interior.Lo(axis), lo, hi),
			clampInt(interior.Hi(axis), lo, hi),
			hi,
		}
		for i := 0; i+1 < len(cuts); i++ {
			if n := cuts[i+1] - cuts[i]; n > 0 {
				d.spans[axis] = append(d.spans[axis], span{start: cuts[i], size: n})
			}
		}
	}
	return d, nil
}

// More reports whether Next will produce another region.
func (d *Decomposer) More() bool {
	return d.more
}

// Next returns the next sub-region, or false once the decomposition is
// exhausted.
func (d *Decomposer) Next() (Region, bool) {
	if !d.more {
		return Region{}, false
	}

	var r Region
	r.index.dim = uint8(d.dim)
	r.size.dim = uint8(d.dim)
	for axis := 0; axis < d.dim; axis++ {
		s := d.spans[axis][d.counter[axis]]
		r.index.c[axis] = s.start
		r.size.s[axis] = s.size
	}

	// Advance the odometer, carrying into slower axes.
	d.more = false
	for axis := 0; axis < d.dim; axis++ {
		d.counter[axis]++
		if d.counter[axis] < len(d.spans[axis]) {
			d.more = true
			break
		}
		d.counter[axis] = 0
	}
	return r, true
}

// Decompose returns every sub-region NewDecomposer(output, interior) would
// produce, in order.
func Decompose(output, interior Region) ([]Region, error) {
	d, err := NewDecomposer(output, interior)
	if err != nil {
		return nil, err
	}
	var out []Region
	for r, ok := d.Next(); ok; r, ok = d.Next() {
		out = append(out, r)
	}
	return out, nil
}

// Split divides r into min(pieces, extent) disjoint slabs along the slowest
// varying axis whose extent is greater than one. Slab heights differ by at
// most one. An empty region yields no pieces.
func Split(r Region, pieces int) []Region {
	if r.IsEmpty() {
		return nil
	}
	if pieces < 1 {
		pieces = 1
	}

	axis := -1
	for d := r.Dimension() - 1; d >= 0; d-- {
		if r.size.At(d) > 1 {
			axis = d
			break
		}
	}
	if axis < 0 || pieces == 1 {
		return []Region{r}
	}

	extent := r.size.At(axis)
	count := min(pieces, extent)
	base, extra := extent/count, extent%count

	out := make([]Region, 0, count)
	start := 0
	for i := 0; i < count; i++ {
		n := base
		if i < extra {
			n++
		}
		piece := r
		piece.index = piece.index.With(axis, r.Lo(axis)+start)
		piece.size = piece.size.With(axis, n)
		out = append(out, piece)
		start += n
	}
	return out
}

// clampInt limits v to the closed range [lo, hi].
func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
