package imaging

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ironsheep/image-pad-mcp/internal/ndimage"
	"github.com/ironsheep/image-pad-mcp/internal/object"
	"github.com/ironsheep/image-pad-mcp/internal/workerpool"
)

// Entry is one decoded image held by an ImageCache.
//
// Entries are reference-counted. The cache holds one reference for as long as
// the entry is cached; Load hands the caller another. The decoded pixels are
// freed when the last holder calls Release, so an entry evicted while a
// request is still using it stays valid until that request finishes.
type Entry struct {
	object.Object

	// Path is the path the entry was loaded from.
	Path string

	// Format is the detected image format: "png", "jpeg", "gif", or "unknown".
	Format string

	image   image.Image
	pixels  *ndimage.Image[color.NRGBA]
	modTime time.Time
	size    int64
}

// Image returns the decoded image.
func (e *Entry) Image() image.Image {
	return e.image
}

// Pixels returns the image as a 2-D NRGBA ndimage with its origin at (0,0).
// Its modification time changes only when the file is reloaded.
func (e *Entry) Pixels() *ndimage.Image[color.NRGBA] {
	return e.pixels
}

// FileSize returns the size of the file on disk in bytes.
func (e *Entry) FileSize() int64 {
	return e.size
}

// ImageCache provides thread-safe caching of loaded images to avoid redundant disk reads.
//
// The cache stores reference-counted Entry objects keyed by their file path. Once an
// image is loaded, subsequent Load() calls for the same path return the cached entry
// without decoding again, unless the file's size or modification time changed on disk,
// in which case it is reloaded and the stale entry released.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Example Usage
//
//	cache := imaging.NewImageCache(nil)
//	entry, err := cache.Load("/path/to/image.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer entry.Release()
//	// Use entry.Image() or entry.Pixels()...
type ImageCache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	pool    *workerpool.Pool
}

// NewImageCache creates an empty image cache. pool, if non-nil, is used to
// convert decoded images to ndimage form in parallel.
func NewImageCache(pool *workerpool.Pool) *ImageCache {
	return &ImageCache{
		entries: make(map[string]*Entry),
		pool:    pool,
	}
}

// Load returns the cached entry for path, loading it from disk if it is not
// cached or the file changed since it was cached.
//
// The returned entry carries a reference owned by the caller, who must call
// Release when done with it.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a valid PNG, JPEG, or GIF image
func (c *ImageCache) Load(path string) (*Entry, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	c.mu.RLock()
	if e, ok := c.entries[path]; ok && e.modTime.Equal(stat.ModTime()) && e.size == stat.Size() {
		// The cache's own reference keeps e alive while the read lock is held.
		e.Acquire()
		c.mu.RUnlock()
		return e, nil
	}
	c.mu.RUnlock()

	e, err := c.decode(path, stat)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if old, ok := c.entries[path]; ok {
		old.Release()
	}
	c.entries[path] = e
	e.Acquire()
	c.mu.Unlock()

	return e, nil
}

func (c *ImageCache) decode(path string, stat os.FileInfo) (*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	e := &Entry{
		Path:    path,
		Format:  formatFromExt(path),
		image:   img,
		pixels:  ToNDImage(img, c.pool),
		modTime: stat.ModTime(),
		size:    stat.Size(),
	}
	e.Init("ImageCacheEntry")
	e.SetDeleteMethod(func() {
		e.pixels.Release()
		e.pixels = nil
		e.image = nil
	})
	e.Modified()
	return e, nil
}

// Clear removes all images from the cache. Entries still held by callers stay
// valid until they are released.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	for path, e := range c.entries {
		e.Release()
		delete(c.entries, path)
	}
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
// After eviction, the next Load() call for this path will read from disk.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	if e, ok := c.entries[path]; ok {
		e.Release()
		delete(c.entries, path)
	}
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func formatFromExt(path string) string {
	switch filepath.Ext(path) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	}
	return "unknown"
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format: "png", "jpeg", "gif", or "unknown".
	// Detection is based on file extension, not file contents.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image and returns metadata about it.
//
// # Color Depth Detection
//
// Color depth is determined by the Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	e, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	defer e.Release()

	img := e.Image()
	bounds := img.Bounds()

	hasAlpha := false
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        e.Format,
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: e.FileSize(),
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image without additional metadata.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	e, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	defer e.Release()

	bounds := e.Image().Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
