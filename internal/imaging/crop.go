package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-pad-mcp/internal/ndimage"
	"github.com/ironsheep/image-pad-mcp/internal/pad"
	"github.com/ironsheep/image-pad-mcp/internal/region"
	"github.com/ironsheep/image-pad-mcp/internal/workerpool"
)

// CropResult contains the cropped image data
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// Extended is true when the rectangle reached outside the image and part
	// of the result was filled from the nearest edge pixels.
	Extended bool `json:"extended"`
}

// Crop extracts the rectangle (x1,y1)-(x2,y2) of the image's edge-replicated
// extension: (x1,y1) inclusive, (x2,y2) exclusive. The rectangle may lie partly
// or wholly outside the image. Only the requested pixels are computed.
func Crop(px *ndimage.Image[color.NRGBA], x1, y1, x2, y2 int, scale float64, pool *workerpool.Pool) (*CropResult, error) {
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	in := px.BufferedRegion()
	if in.Dimension() != 2 {
		return nil, fmt.Errorf("cannot crop %d-D image", in.Dimension())
	}

	w, h := x2-x1, y2-y1
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: crop width or height exceeds %d", ErrImageTooLarge, math.MaxInt)
	}
	want, err := region.New(region.MustIndex(x1, y1), region.MustSize(w, h))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageTooLarge, err)
	}
	if err := checkOutputSize(want); err != nil {
		return nil, err
	}
	lower, err := region.NewSize(padBefore(in.Lo(0), x1), padBefore(in.Lo(1), y1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageTooLarge, err)
	}
	upper, err := region.NewSize(padAfter(in.Hi(0), x2), padAfter(in.Hi(1), y2))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageTooLarge, err)
	}

	f := pad.New[color.NRGBA]()
	defer f.Release()
	f.SetPool(pool)
	f.SetInput(px)
	f.SetPadLowerBound(lower)
	f.SetPadUpperBound(upper)
	f.SetRequestedRegion(want)

	out, err := f.Update()
	if err != nil {
		return nil, err
	}
	cropped, err := FromNDImage(out, pool)
	if err != nil {
		return nil, err
	}

	var result image.Image = cropped
	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		result = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		Width:       result.Bounds().Dx(),
		Height:      result.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		Extended:    !in.Contains(want),
	}, nil
}

// padBefore is the padding needed below lo to reach c, or -1 when that
// does not fit in an int.
func padBefore(lo, c int) int {
	if c >= lo {
		return 0
	}
	if n := lo - c; n > 0 {
		return n
	}
	return -1
}

// padAfter is the padding needed above hi to reach c, or -1 when that does
// not fit in an int.
func padAfter(hi, c int) int {
	if c <= hi {
		return 0
	}
	if n := c - hi; n > 0 {
		return n
	}
	return -1
}
