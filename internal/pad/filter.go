package pad

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/ironsheep/image-pad-mcp/internal/boundary"
	"github.com/ironsheep/image-pad-mcp/internal/ndimage"
	"github.com/ironsheep/image-pad-mcp/internal/object"
	"github.com/ironsheep/image-pad-mcp/internal/region"
	"github.com/ironsheep/image-pad-mcp/internal/workerpool"
)

var (
	defaultPool     *workerpool.Pool
	defaultPoolOnce sync.Once
)

func sharedPool() *workerpool.Pool {
	defaultPoolOnce.Do(func() {
		defaultPool = workerpool.New(0)
	})
	return defaultPool
}

// Filter grows its input image by per-axis pad amounts and fills the new
// pixels with the zero-flux Neumann rule.
//
// The output is recomputed by Update only when the filter or its input has
// been modified since the last run. The filter holds a reference to its input
// and to its output; callers that keep the output past the next Update or
// past the filter's destruction must Acquire it.
type Filter[T any] struct {
	object.Object

	mu        sync.Mutex
	input     *ndimage.Image[T]
	lower     region.Size
	upper     region.Size
	requested region.Region
	workers   int
	pool      *workerpool.Pool
	cond      boundary.Condition

	output     *ndimage.Image[T]
	filterTime uint64
	inputTime  uint64
}

// New returns a filter with no input, zero padding and one worker per CPU.
func New[T any]() *Filter[T] {
	f := &Filter[T]{
		workers: runtime.GOMAXPROCS(0),
		cond:    boundary.ZeroFluxNeumann{},
	}
	f.Init("ZeroFluxNeumannPadFilter")
	f.SetDeleteMethod(func() {
		if f.input != nil {
			f.input.Release()
			f.input = nil
		}
		if f.output != nil {
			f.output.Release()
			f.output = nil
		}
	})
	return f
}

// SetInput replaces the input image. The filter acquires img and releases
// the previous input.
func (f *Filter[T]) SetInput(img *ndimage.Image[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if img == f.input {
		return
	}
	if img != nil {
		img.Acquire()
	}
	if f.input != nil {
		f.input.Release()
	}
	f.input = img
	f.Modified()
}

// Input returns the current input image.
func (f *Filter[T]) Input() *ndimage.Image[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input
}

// SetPadLowerBound sets the number of pixels added before each axis.
func (f *Filter[T]) SetPadLowerBound(s region.Size) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s == f.lower {
		return
	}
	f.lower = s
	f.Modified()
}

// PadLowerBound returns the lower pad amounts.
func (f *Filter[T]) PadLowerBound() region.Size {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lower
}

// SetPadUpperBound sets the number of pixels added after each axis.
func (f *Filter[T]) SetPadUpperBound(s region.Size) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s == f.upper {
		return
	}
	f.upper = s
	f.Modified()
}

// PadUpperBound returns the upper pad amounts.
func (f *Filter[T]) PadUpperBound() region.Size {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upper
}

// SetPadBound sets the same amounts below and above every axis.
func (f *Filter[T]) SetPadBound(s region.Size) {
	f.SetPadLowerBound(s)
	f.SetPadUpperBound(s)
}

// SetNumberOfWorkers sets how many pieces the output is split into.
// Values below 1 are treated as 1.
func (f *Filter[T]) SetNumberOfWorkers(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n = max(n, 1)
	if n == f.workers {
		return
	}
	f.workers = n
	f.Modified()
}

// NumberOfWorkers returns the configured worker count.
func (f *Filter[T]) NumberOfWorkers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.workers
}

// SetPool makes the filter run its workers on p instead of the shared
// default pool.
func (f *Filter[T]) SetPool(p *workerpool.Pool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pool = p
}

// SetRequestedRegion limits Update to r, which must lie inside the padded
// output region.
func (f *Filter[T]) SetRequestedRegion(r region.Region) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r == f.requested {
		return
	}
	f.requested = r
	f.Modified()
}

// ResetRequestedRegion makes Update produce the whole padded region again.
func (f *Filter[T]) ResetRequestedRegion() {
	f.SetRequestedRegion(region.Region{})
}

// Spec returns the padding geometry for the current input and pad amounts.
func (f *Filter[T]) Spec() (Spec, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.spec()
}

func (f *Filter[T]) spec() (Spec, error) {
	if f.input == nil {
		return Spec{}, ErrNoInput
	}
	return NewSpec(f.input.BufferedRegion(), f.lower, f.upper)
}

// OutputRegion returns the full padded region.
func (f *Filter[T]) OutputRegion() (region.Region, error) {
	s, err := f.Spec()
	if err != nil {
		return region.Region{}, err
	}
	return s.Output, nil
}

// Validate reports configuration errors without running the filter.
func (f *Filter[T]) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := f.validate()
	return err
}

func (f *Filter[T]) validate() (region.Region, error) {
	s, err := f.spec()
	if err != nil {
		return region.Region{}, err
	}
	requested := f.requested
	if requested.Dimension() == 0 {
		requested = s.Output
	}
	if err := s.CheckRequested(requested); err != nil {
		return region.Region{}, err
	}
	return requested, nil
}

// Output returns the result of the last Update, or nil.
func (f *Filter[T]) Output() *ndimage.Image[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.output
}

// Update produces the padded image. Configuration errors are returned before
// any worker starts. When neither the filter nor its input changed since the
// last run, the previous output is returned as is.
func (f *Filter[T]) Update() (*ndimage.Image[T], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	requested, err := f.validate()
	if err != nil {
		return nil, fmt.Errorf("pad filter setup: %w", err)
	}

	if f.output != nil &&
		f.filterTime == f.ModificationTime() &&
		f.inputTime == f.input.ModificationTime() {
		f.Debugf("output up to date")
		return f.output, nil
	}

	f.generateData(requested)

	f.filterTime = f.ModificationTime()
	f.inputTime = f.input.ModificationTime()
	return f.output, nil
}

// generateData allocates the output once, then fills one piece per worker.
func (f *Filter[T]) generateData(requested region.Region) {
	if f.output != nil {
		f.output.Release()
	}
	f.output = ndimage.New[T](requested)

	pieces := region.Split(requested, f.workers)
	pool := f.pool
	if pool == nil {
		pool = sharedPool()
	}
	f.Debugf("filling %s in %d pieces", requested, len(pieces))

	pool.Run(len(pieces), func(worker int) {
		f.ThreadedGenerateData(pieces[worker], worker)
	})
	f.output.Modified()
}

// ThreadedGenerateData fills outputRegionForThread of the current output.
// Pieces handed to concurrent calls must be disjoint. Interior parts are
// copied row by row; margin parts resolve each coordinate through the
// boundary condition.
func (f *Filter[T]) ThreadedGenerateData(outputRegionForThread region.Region, workerID int) {
	in, out := f.input, f.output
	if in == nil || out == nil {
		panic("pad: ThreadedGenerateData called before output allocation")
	}
	valid := in.BufferedRegion()

	d, err := region.NewDecomposer(outputRegionForThread, valid)
	if err != nil {
		panic(fmt.Sprintf("pad: worker %d: %v", workerID, err))
	}

	for piece, ok := d.Next(); ok; piece, ok = d.Next() {
		if valid.Contains(piece) {
			copyRows(out, in, piece)
			continue
		}
		piece.ForEach(func(idx region.Index) {
			src := boundary.ReflectIndex(f.cond, idx, valid)
			if !valid.IsInside(src) {
				panic(fmt.Sprintf("pad: worker %d: %s reflected to %s outside %s",
					workerID, idx, src, valid))
			}
			out.SetPixel(idx, in.GetPixel(src))
		})
	}
}

// copyRows copies piece from in to out one axis-0 run at a time.
func copyRows[T any](out, in *ndimage.Image[T], piece region.Region) {
	n := piece.Size().At(0)
	starts := region.Must(piece.Index(), piece.Size().With(0, 1))
	starts.ForEach(func(idx region.Index) {
		copy(out.Line(idx, n), in.Line(idx, n))
	})
}

// Pad runs a one-off filter over img and returns the padded image. The
// caller owns the returned image and must Release it.
func Pad[T any](img *ndimage.Image[T], lower, upper region.Size, workers int) (*ndimage.Image[T], error) {
	f := New[T]()
	defer f.Release()

	f.SetInput(img)
	f.SetPadLowerBound(lower)
	f.SetPadUpperBound(upper)
	f.SetNumberOfWorkers(workers)

	out, err := f.Update()
	if err != nil {
		return nil, err
	}
	out.Acquire()
	return out, nil
}
