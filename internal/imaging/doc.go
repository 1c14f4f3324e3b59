// Package imaging connects decoded image files to the N-dimensional pad
// filter for the MCP server.
//
// Files are decoded once into reference-counted cache entries that hold both
// the original image.Image and a 2-D NRGBA ndimage of its pixels. Padding and
// colour sampling work on that ndimage, so a request for an unchanged file
// with unchanged options is answered from the pad filter's previous output.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel), ndimage axis 0
//   - Y: vertical position (0 = topmost pixel), ndimage axis 1
//
// Sampling accepts coordinates outside the image. They resolve to the nearest
// edge pixel, clamping X and Y independently, which is exactly the value the
// pad filter writes at that position.
//
// # Thread Safety
//
// ImageCache and Padder are safe for concurrent use. Entries returned by
// ImageCache.Load stay valid until the caller releases them, even if the file
// is reloaded or evicted in the meantime.
//
// # Color Representation
//
// Colors are returned in multiple formats for flexibility:
//   - Hex: 6-character format "#RRGGBB" (alpha excluded)
//   - RGBA: 8-bit components with alpha (0-255)
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100)
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Negative padding amounts
//   - Empty images
//   - File I/O errors during image loading
//   - Encoding errors during image output
//
// # Performance Considerations
//
// Pixel conversion and the pad fill run on a shared worker pool. Large images
// may consume significant memory when cached; use Evict() or Clear() to manage
// memory for long-running processes.
package imaging
