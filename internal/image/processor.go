package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

// Telegram's sendPhoto limits.
const (
	maxPhotoSideSum = 10000
	maxPhotoRatio   = 20

	ThumbnailSize = 320
)

var ErrEmpty = errors.New("empty image data")

type Info struct {
	Format string
	Width  int
	Height int
	Size   int64
}

// Ext returns the file extension matching the decoded format.
func (i Info) Ext() string {
	switch i.Format {
	case "jpeg":
		return ".jpg"
	case "":
		return ".bin"
	default:
		return "." + i.Format
	}
}

type Processor struct{}

// Inspect reads only the image header; it does not decode pixels.
func (p *Processor) Inspect(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, ErrEmpty
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, fmt.Errorf("invalid image dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return Info{
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   int64(len(data)),
	}, nil
}

// FitsPhoto reports whether Telegram will accept the image as a photo
// rather than requiring a document upload.
func (p *Processor) FitsPhoto(info Info, maxFileSize int64) bool {
	if info.Size > maxFileSize {
		return false
	}
	if info.Width+info.Height > maxPhotoSideSum {
		return false
	}
	long, short := info.Width, info.Height
	if short > long {
		long, short = short, long
	}
	return long <= short*maxPhotoRatio
}

// Thumbnail renders a JPEG preview no larger than ThumbnailSize on either
// side. Transparent areas are flattened onto white.
func (p *Processor) Thumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	small := resize.Thumbnail(ThumbnailSize, ThumbnailSize, img, resize.Lanczos3)

	flat := image.NewRGBA(small.Bounds())
	draw.Draw(flat, flat.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), small, small.Bounds().Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
