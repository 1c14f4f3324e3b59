package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-pad-mcp/internal/ndimage"
	"github.com/ironsheep/image-pad-mcp/internal/region"
	"github.com/ironsheep/image-pad-mcp/internal/workerpool"
)

// ToNDImage converts img to a 2-D NRGBA ndimage whose region starts at (0,0),
// whatever the bounds of img. Axis 0 is X, axis 1 is Y.
//
// Rows are converted in parallel on pool when it is non-nil.
func ToNDImage(img image.Image, pool *workerpool.Pool) *ndimage.Image[color.NRGBA] {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	nd := ndimage.New[color.NRGBA](region.Must(region.MustIndex(0, 0), region.MustSize(w, h)))
	dst := nd.Buffer()

	parallelRows(pool, h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				i := src.PixOffset(x, y)
				s := src.Pix[i : i+4 : i+4]
				dst[y*w+x] = color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]}
			}
		}
	})
	return nd
}

// FromNDImage converts a 2-D NRGBA ndimage back to an *image.NRGBA with
// bounds starting at (0,0).
func FromNDImage(nd *ndimage.Image[color.NRGBA], pool *workerpool.Pool) (*image.NRGBA, error) {
	r := nd.BufferedRegion()
	if r.Dimension() != 2 {
		return nil, fmt.Errorf("cannot convert %d-D image to NRGBA", r.Dimension())
	}
	w, h := r.Size().At(0), r.Size().At(1)
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	src := nd.Buffer()

	parallelRows(pool, h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				c := src[y*w+x]
				i := out.PixOffset(x, y)
				d := out.Pix[i : i+4 : i+4]
				d[0], d[1], d[2], d[3] = c.R, c.G, c.B, c.A
			}
		}
	})
	return out, nil
}

func parallelRows(pool *workerpool.Pool, rows int, fn func(start, end int)) {
	if pool == nil {
		fn(0, rows)
		return
	}
	pool.ParallelFor(rows, fn)
}
