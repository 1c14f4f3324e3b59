// Package ndimage provides an N-dimensional image with indexed pixel access.
//
// An Image owns one contiguous buffer covering its buffered region, laid out
// with axis 0 varying fastest (for 2-D images: row-major, x then y). Images
// are reference-counted objects; their modification time advances whenever a
// producer marks new contents with Modified.
//
// Example usage:
//
//	r := region.Must(region.MustIndex(0, 0), region.MustSize(640, 480))
//	img := ndimage.New[uint8](r)
//	img.SetPixel(region.MustIndex(10, 20), 255)
//	defer img.Release()
package ndimage

import (
	"fmt"

	"github.com/ironsheep/image-pad-mcp/internal/object"
	"github.com/ironsheep/image-pad-mcp/internal/region"
)

// Image is an N-dimensional pixel container.
type Image[T any] struct {
	object.Object

	region region.Region
	data   []T
}

// New allocates an image whose buffered region is r. Pixels start at the
// zero value of T.
func New[T any](r region.Region) *Image[T] {
	img := &Image[T]{
		region: r,
		data:   make([]T, r.NumberOfPixels()),
	}
	img.init()
	return img
}

// FromSlice wraps data as the buffer of an image over r. data is used
// directly, not copied.
func FromSlice[T any](r region.Region, data []T) (*Image[T], error) {
	if len(data) != r.NumberOfPixels() {
		return nil, fmt.Errorf("buffer holds %d pixels, region %s needs %d",
			len(data), r, r.NumberOfPixels())
	}
	img := &Image[T]{region: r, data: data}
	img.init()
	return img, nil
}

func (img *Image[T]) init() {
	img.Init("Image")
	img.SetDeleteMethod(func() { img.data = nil })
	img.Modified()
}

// BufferedRegion returns the region covered by the buffer.
func (img *Image[T]) BufferedRegion() region.Region {
	return img.region
}

// Buffer returns the underlying pixel storage.
func (img *Image[T]) Buffer() []T {
	return img.data
}

// GetPixel returns the pixel at idx. idx outside the buffered region panics.
func (img *Image[T]) GetPixel(idx region.Index) T {
	return img.data[img.offset(idx)]
}

// SetPixel stores v at idx. idx outside the buffered region panics.
func (img *Image[T]) SetPixel(idx region.Index, v T) {
	img.data[img.offset(idx)] = v
}

// Line returns the n pixels starting at idx along axis 0. The run must lie
// inside the buffered region.
func (img *Image[T]) Line(idx region.Index, n int) []T {
	if n == 0 {
		return nil
	}
	off := img.offset(idx)
	if end := idx.At(0) + n; n < 0 || end > img.region.Hi(0) {
		panic(fmt.Sprintf("ndimage: line of %d from %s leaves buffered region %s", n, idx, img.region))
	}
	return img.data[off : off+n]
}

// Fill sets every pixel to v.
func (img *Image[T]) Fill(v T) {
	for i := range img.data {
		img.data[i] = v
	}
}

func (img *Image[T]) offset(idx region.Index) int {
	if !img.region.IsInside(idx) {
		panic(fmt.Sprintf("ndimage: index %s outside buffered region %s", idx, img.region))
	}
	return img.region.Offset(idx)
}
