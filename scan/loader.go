// Package scan loads raster images and runs the full PDF417 decoding
// pipeline over them.
package scan

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"io"
	"os"

	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP

	pdf417scan "github.com/ericlevine/pdf417scan"
)

const (
	// MinImageWidth is the width in pixels of a one column symbol at one
	// pixel per module.
	MinImageWidth = 86
	// MinImageHeight is the height of a three row symbol at one pixel per row.
	MinImageHeight = 3
)

// LoadFile reads and decodes the image at path.
func LoadFile(ctx context.Context, path string) (*pdf417scan.ImageLuminanceSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadReader(ctx, f)
}

// LoadBytes decodes an in-memory image.
func LoadBytes(data []byte) (*pdf417scan.ImageLuminanceSource, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, unsupported(err)
	}
	return FromImage(img)
}

// LoadReader decodes an image read from r. Reading stops with Cancelled
// when ctx ends.
func LoadReader(ctx context.Context, r io.Reader) (*pdf417scan.ImageLuminanceSource, error) {
	data, err := io.ReadAll(&contextReader{ctx: ctx, r: r})
	if err != nil {
		if cerr := pdf417scan.ContextError(ctx); cerr != nil {
			return nil, cerr
		}
		return nil, err
	}
	return LoadBytes(data)
}

// FromImage converts img to luminance after checking that it can hold a
// symbol.
func FromImage(img image.Image) (*pdf417scan.ImageLuminanceSource, error) {
	b := img.Bounds()
	long, short := max(b.Dx(), b.Dy()), min(b.Dx(), b.Dy())
	if long < MinImageWidth || short < MinImageHeight {
		return nil, pdf417scan.Errorf(pdf417scan.ImageTooSmall,
			"%dx%d image cannot hold a symbol (minimum %dx%d)", b.Dx(), b.Dy(), MinImageWidth, MinImageHeight)
	}
	return pdf417scan.NewImageLuminanceSource(img), nil
}

func unsupported(err error) error {
	if errors.Is(err, image.ErrFormat) {
		return pdf417scan.Errorf(pdf417scan.UnsupportedFormat, "no decoder recognizes the data")
	}
	return pdf417scan.Errorf(pdf417scan.UnsupportedFormat, "decode image: %v", err)
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
