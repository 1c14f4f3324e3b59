package ndimage

import (
	"testing"

	"github.com/ironsheep/image-pad-mcp/internal/region"
)

func TestNew(t *testing.T) {
	r := region.Must(region.MustIndex(-1, 2), region.MustSize(4, 3))
	img := New[float32](r)

	if img.BufferedRegion() != r {
		t.Errorf("BufferedRegion: got %s, want %s", img.BufferedRegion(), r)
	}
	if len(img.Buffer()) != 12 {
		t.Errorf("buffer length: got %d, want 12", len(img.Buffer()))
	}
	if img.ReferenceCount() != 1 {
		t.Errorf("ReferenceCount: got %d, want 1", img.ReferenceCount())
	}
	if img.ModificationTime() == 0 {
		t.Error("new image should carry a modification time")
	}
}

func TestImage_GetSetPixel(t *testing.T) {
	r := region.Must(region.MustIndex(-1, 2), region.MustSize(4, 3))
	img := New[int](r)

	r.ForEach(func(idx region.Index) {
		img.SetPixel(idx, idx.At(0)*100+idx.At(1))
	})
	r.ForEach(func(idx region.Index) {
		if got, want := img.GetPixel(idx), idx.At(0)*100+idx.At(1); got != want {
			t.Errorf("GetPixel(%s): got %d, want %d", idx, got, want)
		}
	})

	// Axis 0 is contiguous.
	if got := img.Buffer()[1]; got != 0*100+2 {
		t.Errorf("buffer[1]: got %d, want 2", got)
	}
}

func TestImage_OutOfRangePanics(t *testing.T) {
	img := New[uint8](region.Must(region.MustIndex(0, 0), region.MustSize(2, 2)))

	tests := []struct {
		name string
		idx  region.Index
	}{
		{"negative", region.MustIndex(-1, 0)},
		{"past end", region.MustIndex(0, 2)},
		{"wrong dimension", region.MustIndex(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("GetPixel(%s) should panic", tt.idx)
				}
			}()
			img.GetPixel(tt.idx)
		})
	}
}

func TestImage_Line(t *testing.T) {
	r := region.Must(region.MustIndex(0, 0), region.MustSize(5, 2))
	img := New[int](r)
	for i := range img.Buffer() {
		img.Buffer()[i] = i
	}

	line := img.Line(region.MustIndex(1, 1), 3)
	want := []int{6, 7, 8}
	for i := range want {
		if line[i] != want[i] {
			t.Errorf("line[%d]: got %d, want %d", i, line[i], want[i])
		}
	}

	defer func() {
		if recover() == nil {
			t.Error("Line past the end of the row should panic")
		}
	}()
	img.Line(region.MustIndex(3, 0), 3)
}

func TestFromSlice(t *testing.T) {
	r := region.Must(region.MustIndex(0), region.MustSize(5))
	img, err := FromSlice(r, []int{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if img.GetPixel(region.MustIndex(4)) != 5 {
		t.Errorf("GetPixel(4): got %d, want 5", img.GetPixel(region.MustIndex(4)))
	}

	if _, err := FromSlice(r, []int{1, 2}); err == nil {
		t.Error("FromSlice should reject a short buffer")
	}
}

func TestImage_FillAndRelease(t *testing.T) {
	img := New[uint16](region.Must(region.MustIndex(0, 0), region.MustSize(3, 3)))
	img.Fill(7)
	for i, v := range img.Buffer() {
		if v != 7 {
			t.Fatalf("pixel %d: got %d, want 7", i, v)
		}
	}

	img.Acquire()
	img.Release()
	if img.Buffer() == nil {
		t.Fatal("buffer freed while still held")
	}
	img.Release()
	if img.Buffer() != nil {
		t.Error("buffer should be freed when the last holder releases")
	}
}
