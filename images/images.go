// Package images inspects uploaded image headers without decoding pixels.
// It is used for diagnostics only: an unrecognised format is not an error
// for the caller, the label backend decides what it accepts.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Info describes an image header.
type Info struct {
	Format string
	Width  int
	Height int
	Size   int
}

// Describe reads only the header of b to determine format and dimensions
func Describe(b []byte) (Info, error) {
	info := Info{Size: len(b)}
	if len(b) == 0 {
		return info, fmt.Errorf("empty image")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return info, fmt.Errorf("failed to read image header: %w", err)
	}

	info.Format = format
	info.Width = cfg.Width
	info.Height = cfg.Height
	return info, nil
}

// LogAttrs returns key/value pairs for slog.
func (i Info) LogAttrs() []any {
	return []any{"format", i.Format, "width", i.Width, "height", i.Height, "size", i.Size}
}
