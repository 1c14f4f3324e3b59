package imaging

import (
	"fmt"
	"runtime"

	"github.com/ironsheep/image-pad-mcp/internal/region"
)

// Rect is an axis-aligned pixel rectangle in padded-image coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PlanPart is one sub-region a worker fills. Interior parts are copied from
// the source image; the others are filled from the nearest edge pixel.
type PlanPart struct {
	Rect     Rect `json:"rect"`
	Interior bool `json:"interior"`
}

// PlanPiece is the share of the output assigned to one worker.
type PlanPiece struct {
	Worker int        `json:"worker"`
	Rect   Rect       `json:"rect"`
	Parts  []PlanPart `json:"parts"`
}

// PadPlan describes how a pad would be carried out without running it.
type PadPlan struct {
	Width    int         `json:"width"`
	Height   int         `json:"height"`
	Interior Rect        `json:"interior"`
	Workers  int         `json:"workers"`
	Pieces   []PlanPiece `json:"pieces"`
}

// PlanPad reports how padding an image of the given size with opts would be
// split among workers, and how each worker's piece decomposes into interior
// and margin parts, listed in fill order.
func PlanPad(width, height int, opts PadOptions) (*PadPlan, error) {
	input, err := region.New(region.MustIndex(0, 0), region.MustSize(max(width, 0), max(height, 0)))
	if err != nil {
		return nil, err
	}
	spec, err := opts.spec(input)
	if err != nil {
		return nil, fmt.Errorf("cannot plan padding: %w", err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	plan := &PadPlan{
		Width:    spec.Output.Size().At(0),
		Height:   spec.Output.Size().At(1),
		Interior: toRect(spec.Input, spec.Output),
		Workers:  workers,
	}
	for i, piece := range region.Split(spec.Output, workers) {
		parts, err := region.Decompose(piece, spec.Input)
		if err != nil {
			return nil, err
		}
		pp := PlanPiece{Worker: i, Rect: toRect(piece, spec.Output)}
		for _, part := range parts {
			pp.Parts = append(pp.Parts, PlanPart{
				Rect:     toRect(part, spec.Output),
				Interior: spec.Input.Contains(part),
			})
		}
		plan.Pieces = append(plan.Pieces, pp)
	}
	return plan, nil
}

// toRect converts r to coordinates relative to the top-left of output.
func toRect(r, output region.Region) Rect {
	return Rect{
		X:      r.Lo(0) - output.Lo(0),
		Y:      r.Lo(1) - output.Lo(1),
		Width:  r.Size().At(0),
		Height: r.Size().At(1),
	}
}
