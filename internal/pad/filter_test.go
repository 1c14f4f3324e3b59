package pad

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ironsheep/image-pad-mcp/internal/ndimage"
	"github.com/ironsheep/image-pad-mcp/internal/region"
	"github.com/ironsheep/image-pad-mcp/internal/workerpool"
)

// newImage builds a 2-D image from rows given top to bottom.
func newImage(t *testing.T, rows [][]int) *ndimage.Image[int] {
	t.Helper()
	h, w := len(rows), len(rows[0])
	data := make([]int, 0, w*h)
	for _, row := range rows {
		data = append(data, row...)
	}
	img, err := ndimage.FromSlice(region.Must(region.MustIndex(0, 0), region.MustSize(w, h)), data)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	return img
}

// rowsOf reads a 2-D image back into rows.
func rowsOf(img *ndimage.Image[int]) [][]int {
	r := img.BufferedRegion()
	out := make([][]int, 0, r.Size().At(1))
	for y := r.Lo(1); y < r.Hi(1); y++ {
		row := make([]int, 0, r.Size().At(0))
		for x := r.Lo(0); x < r.Hi(0); x++ {
			row = append(row, img.GetPixel(region.MustIndex(x, y)))
		}
		out = append(out, row)
	}
	return out
}

func equalRows(a, b [][]int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func TestFilter_1D(t *testing.T) {
	in, err := ndimage.FromSlice(region.Must(region.MustIndex(0), region.MustSize(5)), []int{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	defer in.Release()

	f := New[int]()
	defer f.Release()
	f.SetInput(in)
	f.SetPadLowerBound(region.MustSize(2))
	f.SetPadUpperBound(region.MustSize(1))

	out, err := f.Update()
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	wantRegion := region.Must(region.MustIndex(-2), region.MustSize(8))
	if out.BufferedRegion() != wantRegion {
		t.Errorf("output region: got %s, want %s", out.BufferedRegion(), wantRegion)
	}
	want := []int{1, 1, 1, 2, 3, 4, 5, 5}
	got := out.Buffer()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("output: got %v, want %v", got, want)
		}
	}
}

func TestFilter_2DCorner(t *testing.T) {
	in := newImage(t, [][]int{
		{1, 2, 3, 4, 5},
		{3, 3, 5, 5, 6},
		{4, 4, 6, 7, 8},
	})
	defer in.Release()

	f := New[int]()
	defer f.Release()
	f.SetInput(in)
	f.SetPadLowerBound(region.MustSize(2, 2))

	out, err := f.Update()
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	want := [][]int{
		{1, 1, 1, 2, 3, 4, 5},
		{1, 1, 1, 2, 3, 4, 5},
		{1, 1, 1, 2, 3, 4, 5},
		{3, 3, 3, 3, 5, 5, 6},
		{4, 4, 4, 4, 6, 7, 8},
	}
	if got := rowsOf(out); !equalRows(got, want) {
		t.Errorf("padded image:\ngot  %v\nwant %v", got, want)
	}
}

func TestFilter_AllSides(t *testing.T) {
	in := newImage(t, [][]int{
		{1, 2},
		{3, 4},
	})
	defer in.Release()

	f := New[int]()
	defer f.Release()
	f.SetInput(in)
	f.SetPadBound(region.MustSize(1, 2))

	out, err := f.Update()
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	want := [][]int{
		{1, 1, 2, 2},
		{1, 1, 2, 2},
		{1, 1, 2, 2},
		{3, 3, 4, 4},
		{3, 3, 4, 4},
		{3, 3, 4, 4},
	}
	if got := rowsOf(out); !equalRows(got, want) {
		t.Errorf("padded image:\ngot  %v\nwant %v", got, want)
	}
}

func TestFilter_ZeroPadCopiesInput(t *testing.T) {
	in := newImage(t, [][]int{{9, 8, 7}})
	defer in.Release()

	out, err := Pad(in, region.Size{}, region.Size{}, 2)
	if err != nil {
		t.Fatalf("Pad failed: %v", err)
	}
	defer out.Release()

	if out.BufferedRegion() != in.BufferedRegion() {
		t.Errorf("region: got %s, want %s", out.BufferedRegion(), in.BufferedRegion())
	}
	if got := rowsOf(out); !equalRows(got, [][]int{{9, 8, 7}}) {
		t.Errorf("got %v", got)
	}
}

func TestFilter_WorkerCountDoesNotChangeOutput(t *testing.T) {
	r := region.Must(region.MustIndex(3, -4, 1), region.MustSize(7, 5, 4))
	in := ndimage.New[int](r)
	defer in.Release()
	for i := range in.Buffer() {
		in.Buffer()[i] = i*7919 + 3
	}

	lower := region.MustSize(2, 0, 3)
	upper := region.MustSize(1, 4, 2)

	single, err := Pad(in, lower, upper, 1)
	if err != nil {
		t.Fatalf("Pad with 1 worker failed: %v", err)
	}
	defer single.Release()

	pool := workerpool.New(4)
	defer pool.Close()

	for _, workers := range []int{2, 3, 8, 64} {
		f := New[int]()
		f.SetPool(pool)
		f.SetInput(in)
		f.SetPadLowerBound(lower)
		f.SetPadUpperBound(upper)
		f.SetNumberOfWorkers(workers)

		multi, err := f.Update()
		if err != nil {
			t.Fatalf("Update with %d workers failed: %v", workers, err)
		}
		if multi.BufferedRegion() != single.BufferedRegion() {
			t.Fatalf("%d workers: region %s, want %s", workers, multi.BufferedRegion(), single.BufferedRegion())
		}
		a, b := single.Buffer(), multi.Buffer()
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("%d workers: pixel %d differs: %d vs %d", workers, i, b[i], a[i])
			}
		}
		f.Release()
	}
}

func TestFilter_UpdateCachesUntilModified(t *testing.T) {
	in := newImage(t, [][]int{{1, 2, 3}})
	defer in.Release()

	f := New[int]()
	defer f.Release()
	f.SetInput(in)
	f.SetPadBound(region.MustSize(1, 0))

	first, err := f.Update()
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	firstTime := first.ModificationTime()

	again, err := f.Update()
	if err != nil {
		t.Fatalf("second Update failed: %v", err)
	}
	if again != first || again.ModificationTime() != firstTime {
		t.Error("Update re-ran without any upstream change")
	}

	// Setting identical pads is not a modification.
	f.SetPadBound(region.MustSize(1, 0))
	if same, _ := f.Update(); same != first {
		t.Error("identical pad settings forced a re-run")
	}

	// Changing the input contents and marking it modified invalidates.
	in.Buffer()[0] = 100
	in.Modified()
	third, err := f.Update()
	if err != nil {
		t.Fatalf("Update after input change failed: %v", err)
	}
	if third.ModificationTime() <= firstTime {
		t.Error("output not regenerated after input modification")
	}
	if got := rowsOf(third); !equalRows(got, [][]int{{100, 100, 2, 3, 3}}) {
		t.Errorf("regenerated output: got %v", got)
	}

	// Changing the filter itself invalidates too.
	f.SetPadUpperBound(region.MustSize(0, 0))
	fourth, _ := f.Update()
	if got := rowsOf(fourth); !equalRows(got, [][]int{{100, 100, 2, 3}}) {
		t.Errorf("after pad change: got %v", got)
	}
}

func TestFilter_SettersModify(t *testing.T) {
	f := New[int]()
	defer f.Release()

	tests := []struct {
		name string
		set  func()
	}{
		{"lower", func() { f.SetPadLowerBound(region.MustSize(1, 1)) }},
		{"upper", func() { f.SetPadUpperBound(region.MustSize(2, 2)) }},
		{"workers", func() { f.SetNumberOfWorkers(f.NumberOfWorkers() + 1) }},
		{"requested", func() { f.SetRequestedRegion(region.Must(region.MustIndex(0, 0), region.MustSize(1, 1))) }},
		{"input", func() {
			img := ndimage.New[int](region.Must(region.MustIndex(0, 0), region.MustSize(2, 2)))
			f.SetInput(img)
			img.Release()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.ModificationTime()
			tt.set()
			if f.ModificationTime() <= before {
				t.Errorf("setter did not advance the modification time")
			}
		})
	}

	if f.PadLowerBound() != region.MustSize(1, 1) || f.PadUpperBound() != region.MustSize(2, 2) {
		t.Error("pad getters do not return what was set")
	}
}

func TestFilter_ConfigurationErrors(t *testing.T) {
	in2D := func() *ndimage.Image[int] {
		return ndimage.New[int](region.Must(region.MustIndex(0, 0), region.MustSize(4, 4)))
	}

	tests := []struct {
		name      string
		configure func(f *Filter[int])
		want      error
	}{
		{
			name:      "no input",
			configure: func(f *Filter[int]) {},
			want:      ErrNoInput,
		},
		{
			name: "empty input",
			configure: func(f *Filter[int]) {
				img := ndimage.New[int](region.Must(region.MustIndex(0, 0), region.MustSize(4, 0)))
				f.SetInput(img)
				img.Release()
			},
			want: ErrEmptyInput,
		},
		{
			name: "pad dimension mismatch",
			configure: func(f *Filter[int]) {
				img := in2D()
				f.SetInput(img)
				img.Release()
				f.SetPadLowerBound(region.MustSize(1, 1, 1))
			},
			want: ErrDimensionMismatch,
		},
		{
			name: "requested region beyond pads",
			configure: func(f *Filter[int]) {
				img := in2D()
				f.SetInput(img)
				img.Release()
				f.SetPadBound(region.MustSize(1, 1))
				f.SetRequestedRegion(region.Must(region.MustIndex(-2, 0), region.MustSize(3, 3)))
			},
			want: ErrRegionUnreachable,
		},
		{
			name: "pixel count overflows",
			configure: func(f *Filter[int]) {
				img := ndimage.New[int](region.Must(region.MustIndex(0, 0), region.MustSize(1, 1)))
				f.SetInput(img)
				img.Release()
				f.SetPadLowerBound(region.MustSize(1<<61, 3))
				f.SetPadUpperBound(region.MustSize(1<<61, 0))
				f.SetNumberOfWorkers(4)
			},
			want: region.ErrTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New[int]()
			defer f.Release()
			tt.configure(f)

			if err := f.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate: got %v, want %v", err, tt.want)
			}
			out, err := f.Update()
			if !errors.Is(err, tt.want) {
				t.Errorf("Update: got %v, want %v", err, tt.want)
			}
			if out != nil || f.Output() != nil {
				t.Error("no output should be produced on configuration error")
			}
		})
	}
}

func TestFilter_RequestedRegion(t *testing.T) {
	in := newImage(t, [][]int{
		{1, 2, 3},
		{4, 5, 6},
	})
	defer in.Release()

	f := New[int]()
	defer f.Release()
	f.SetInput(in)
	f.SetPadBound(region.MustSize(2, 2))

	full, err := f.OutputRegion()
	if err != nil {
		t.Fatalf("OutputRegion failed: %v", err)
	}
	if full != region.Must(region.MustIndex(-2, -2), region.MustSize(7, 6)) {
		t.Errorf("OutputRegion: got %s", full)
	}

	// Only the top-right corner block.
	f.SetRequestedRegion(region.Must(region.MustIndex(2, -2), region.MustSize(3, 2)))
	out, err := f.Update()
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got := rowsOf(out); !equalRows(got, [][]int{{3, 3, 3}, {3, 3, 3}}) {
		t.Errorf("corner block: got %v", got)
	}

	f.ResetRequestedRegion()
	out, err = f.Update()
	if err != nil {
		t.Fatalf("Update after reset failed: %v", err)
	}
	if out.BufferedRegion() != full {
		t.Errorf("after reset: got %s, want %s", out.BufferedRegion(), full)
	}
}

func TestFilter_HoldsReferences(t *testing.T) {
	in := newImage(t, [][]int{{1, 2}})
	f := New[int]()
	f.SetInput(in)
	if in.ReferenceCount() != 2 {
		t.Fatalf("input ReferenceCount: got %d, want 2", in.ReferenceCount())
	}

	out, err := f.Update()
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	out.Acquire()

	f.Release()
	if in.ReferenceCount() != 1 || in.Destroyed() {
		t.Errorf("filter destruction should drop exactly its input reference (count %d)", in.ReferenceCount())
	}
	if out.Destroyed() || out.Buffer() == nil {
		t.Error("acquired output must survive the filter")
	}
	out.Release()
	in.Release()
	if !in.Destroyed() || !out.Destroyed() {
		t.Error("images should be destroyed after their last release")
	}
}

func TestFilter_SetInputSwapsReferences(t *testing.T) {
	a := newImage(t, [][]int{{1}})
	b := newImage(t, [][]int{{2}})
	f := New[int]()

	f.SetInput(a)
	f.SetInput(b)
	if a.ReferenceCount() != 1 || b.ReferenceCount() != 2 {
		t.Errorf("counts after swap: a=%d b=%d", a.ReferenceCount(), b.ReferenceCount())
	}
	f.SetInput(nil)
	if b.ReferenceCount() != 1 {
		t.Errorf("b count after clearing input: %d", b.ReferenceCount())
	}
	f.Release()
	a.Release()
	b.Release()
}

// shifted moves every coordinate one step past the upper bound, which no
// valid boundary condition would do.
type shifted struct{}

func (shifted) Reflect(c, lo, hi int) int { return hi }

func TestFilter_ReflectionOutsideInputPanics(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Close()

	// With several workers the panic is raised on a pool goroutine and must
	// still reach the caller of Update.
	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			in := newImage(t, [][]int{{1, 2, 3}})
			defer in.Release()

			f := New[int]()
			defer f.Release()
			f.SetPool(pool)
			f.SetInput(in)
			f.SetPadLowerBound(region.MustSize(1, 0))
			f.SetNumberOfWorkers(workers)
			f.cond = shifted{}

			defer func() {
				if recover() == nil {
					t.Error("a reflected coordinate outside the input should panic")
				}
			}()
			f.Update()
		})
	}
}

func TestThreadedGenerateData_DirectPieces(t *testing.T) {
	in := newImage(t, [][]int{
		{1, 2, 3},
		{4, 5, 6},
	})
	defer in.Release()

	f := New[int]()
	defer f.Release()
	f.SetInput(in)
	f.SetPadBound(region.MustSize(1, 1))

	// Update once to allocate, then refill by hand in two pieces.
	out, err := f.Update()
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	expected := rowsOf(out)
	out.Fill(-1)

	pieces := region.Split(out.BufferedRegion(), 2)
	for worker, piece := range pieces {
		f.ThreadedGenerateData(piece, worker)
	}
	if got := rowsOf(out); !equalRows(got, expected) {
		t.Errorf("manual fill:\ngot  %v\nwant %v", got, expected)
	}
}

func TestNewSpec(t *testing.T) {
	input := region.Must(region.MustIndex(0, 0), region.MustSize(5, 3))
	s, err := NewSpec(input, region.MustSize(2, 2), region.Size{})
	if err != nil {
		t.Fatalf("NewSpec failed: %v", err)
	}
	if s.Upper != region.MustSize(0, 0) {
		t.Errorf("Upper: got %s, want [0, 0]", s.Upper)
	}
	if s.Output != region.Must(region.MustIndex(-2, -2), region.MustSize(7, 5)) {
		t.Errorf("Output: got %s", s.Output)
	}
	if !s.Output.Contains(s.Input) || s.Output == s.Input {
		t.Error("output should strictly contain the input when padding")
	}
	if err := s.CheckRequested(input); err != nil {
		t.Errorf("input region should be reachable: %v", err)
	}
}
