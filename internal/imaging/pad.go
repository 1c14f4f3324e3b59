package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-pad-mcp/internal/ndimage"
	"github.com/ironsheep/image-pad-mcp/internal/pad"
	"github.com/ironsheep/image-pad-mcp/internal/region"
	"github.com/ironsheep/image-pad-mcp/internal/workerpool"
)

// MaxOutputPixels caps the pixel count of a padded or cropped image.
const MaxOutputPixels = 1 << 28

// ErrImageTooLarge is returned when a result would exceed MaxOutputPixels.
var ErrImageTooLarge = errors.New("output image too large")

// checkOutputSize rejects regions larger than MaxOutputPixels.
func checkOutputSize(r region.Region) error {
	n, err := r.Size().CheckedProduct()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrImageTooLarge, err)
	}
	if n > MaxOutputPixels {
		return fmt.Errorf("%w: %s has %d pixels, limit is %d", ErrImageTooLarge, r.Size(), n, MaxOutputPixels)
	}
	return nil
}

// PadOptions describes how many pixels to add on each side of an image.
type PadOptions struct {
	Left   int
	Top    int
	Right  int
	Bottom int

	// Scale resizes the padded result (e.g. 2.0 doubles it). 0 or 1 keeps it.
	Scale float64

	// Workers is the number of pieces the fill is split into. 0 keeps the
	// filter default (one per CPU).
	Workers int
}

func (o PadOptions) bounds() (lower, upper region.Size, err error) {
	lower, err = region.NewSize(o.Left, o.Top)
	if err != nil {
		return region.Size{}, region.Size{}, fmt.Errorf("invalid padding: %w", err)
	}
	upper, err = region.NewSize(o.Right, o.Bottom)
	if err != nil {
		return region.Size{}, region.Size{}, fmt.Errorf("invalid padding: %w", err)
	}
	return lower, upper, nil
}

// spec validates the options against input and the output size limit.
func (o PadOptions) spec(input region.Region) (pad.Spec, error) {
	lower, upper, err := o.bounds()
	if err != nil {
		return pad.Spec{}, err
	}
	s, err := pad.NewSpec(input, lower, upper)
	if err != nil {
		return pad.Spec{}, fmt.Errorf("invalid padding: %w", err)
	}
	if err := checkOutputSize(s.Output); err != nil {
		return pad.Spec{}, err
	}
	return s, nil
}

// PadResult contains the padded image data.
type PadResult struct {
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	OriginalWidth  int    `json:"original_width"`
	OriginalHeight int    `json:"original_height"`
	PadLeft        int    `json:"pad_left"`
	PadTop         int    `json:"pad_top"`
	PadRight       int    `json:"pad_right"`
	PadBottom      int    `json:"pad_bottom"`
	ImageBase64    string `json:"image_base64"`
	MimeType       string `json:"mime_type"`

	// CornerColors holds the hex colour of each corner of the padded image
	// (before scaling), keyed "top_left", "top_right", "bottom_left",
	// "bottom_right".
	CornerColors map[string]string `json:"corner_colors"`
}

// Pad grows img by the requested amounts, filling the margin with the nearest
// edge pixel (zero-flux Neumann boundary), and returns it as a base64 PNG.
func Pad(img image.Image, opts PadOptions, pool *workerpool.Pool) (*PadResult, error) {
	if _, _, err := opts.bounds(); err != nil {
		return nil, err
	}

	src := ToNDImage(img, pool)
	defer src.Release()

	s, err := opts.spec(src.BufferedRegion())
	if err != nil {
		return nil, err
	}

	f := pad.New[color.NRGBA]()
	defer f.Release()
	f.SetPool(pool)
	f.SetInput(src)
	f.SetPadLowerBound(s.Lower)
	f.SetPadUpperBound(s.Upper)
	if opts.Workers > 0 {
		f.SetNumberOfWorkers(opts.Workers)
	}

	out, err := f.Update()
	if err != nil {
		return nil, err
	}
	return encodePadResult(src, out, opts, pool)
}

// Padder keeps one pad filter per image path, so a repeated request for an
// unchanged image with unchanged options returns the previous output without
// filling again.
//
// Padder is safe for concurrent use.
type Padder struct {
	mu      sync.Mutex
	filters map[string]*pad.Filter[color.NRGBA]
	pool    *workerpool.Pool
	debug   bool
}

// NewPadder creates a Padder whose filters run on pool (the shared default
// pool when nil).
func NewPadder(pool *workerpool.Pool) *Padder {
	return &Padder{
		filters: make(map[string]*pad.Filter[color.NRGBA]),
		pool:    pool,
	}
}

// SetDebug turns debug logging on or off for filters created from now on.
func (p *Padder) SetDebug(flag bool) {
	p.mu.Lock()
	p.debug = flag
	p.mu.Unlock()
}

// Pad pads the pixels of a cached entry.
func (p *Padder) Pad(e *Entry, opts PadOptions) (*PadResult, error) {
	s, err := opts.spec(e.Pixels().BufferedRegion())
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	f, ok := p.filters[e.Path]
	if !ok {
		f = pad.New[color.NRGBA]()
		f.SetDebug(p.debug)
		if p.pool != nil {
			f.SetPool(p.pool)
		}
		p.filters[e.Path] = f
	}
	f.SetInput(e.Pixels())
	f.SetPadLowerBound(s.Lower)
	f.SetPadUpperBound(s.Upper)
	if opts.Workers > 0 {
		f.SetNumberOfWorkers(opts.Workers)
	}
	out, err := f.Update()
	if err == nil {
		// Keep the output alive while encoding; the next request may replace it.
		out.Acquire()
	}
	p.mu.Unlock()

	if err != nil {
		return nil, err
	}
	defer out.Release()
	return encodePadResult(e.Pixels(), out, opts, p.pool)
}

// Forget drops the filter kept for path.
func (p *Padder) Forget(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if f, ok := p.filters[path]; ok {
		f.Release()
		delete(p.filters, path)
	}
}

// Close releases every filter.
func (p *Padder) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for path, f := range p.filters {
		f.Release()
		delete(p.filters, path)
	}
}

func encodePadResult(src, out *ndimage.Image[color.NRGBA], opts PadOptions, pool *workerpool.Pool) (*PadResult, error) {
	padded, err := FromNDImage(out, pool)
	if err != nil {
		return nil, err
	}

	w, h := padded.Bounds().Dx(), padded.Bounds().Dy()
	corners := map[string]string{
		"top_left":     hexColor(padded.NRGBAAt(0, 0)),
		"top_right":    hexColor(padded.NRGBAAt(w-1, 0)),
		"bottom_left":  hexColor(padded.NRGBAAt(0, h-1)),
		"bottom_right": hexColor(padded.NRGBAAt(w-1, h-1)),
	}

	var result image.Image = padded
	if opts.Scale != 1.0 && opts.Scale > 0 {
		newWidth := int(float64(w) * opts.Scale)
		newHeight := int(float64(h) * opts.Scale)
		result = imaging.Resize(padded, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to encode padded image: %w", err)
	}

	in := src.BufferedRegion()
	return &PadResult{
		Width:          result.Bounds().Dx(),
		Height:         result.Bounds().Dy(),
		OriginalWidth:  in.Size().At(0),
		OriginalHeight: in.Size().At(1),
		PadLeft:        opts.Left,
		PadTop:         opts.Top,
		PadRight:       opts.Right,
		PadBottom:      opts.Bottom,
		ImageBase64:    base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:       "image/png",
		CornerColors:   corners,
	}, nil
}
