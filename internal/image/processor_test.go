package image

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 50, B: 50, A: uint8((x * 255) / w)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestInspect(t *testing.T) {
	p := &Processor{}
	data := encodePNG(t, 40, 30)

	info, err := p.Inspect(data)
	require.NoError(t, err)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, 40, info.Width)
	assert.Equal(t, 30, info.Height)
	assert.Equal(t, int64(len(data)), info.Size)
	assert.Equal(t, ".png", info.Ext())
}

func TestInspect_Errors(t *testing.T) {
	p := &Processor{}

	_, err := p.Inspect(nil)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = p.Inspect([]byte("definitely not an image"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode image header")
}

func TestFitsPhoto(t *testing.T) {
	p := &Processor{}
	const limit = 10 << 20

	tests := []struct {
		name string
		info Info
		want bool
	}{
		{"regular", Info{Width: 1280, Height: 960, Size: 1 << 20}, true},
		{"too heavy", Info{Width: 1280, Height: 960, Size: limit + 1}, false},
		{"sides too long", Info{Width: 6000, Height: 5000, Size: 1 << 20}, false},
		{"ratio too wide", Info{Width: 2100, Height: 100, Size: 1 << 10}, false},
		{"ratio at limit", Info{Width: 2000, Height: 100, Size: 1 << 10}, true},
		{"ratio too tall", Info{Width: 100, Height: 2100, Size: 1 << 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.FitsPhoto(tt.info, limit))
		})
	}
}

func TestThumbnail(t *testing.T) {
	p := &Processor{}

	out, err := p.Thumbnail(encodePNG(t, 1000, 500))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, ThumbnailSize, img.Bounds().Dx())
	assert.Equal(t, ThumbnailSize/2, img.Bounds().Dy())
}

func TestThumbnail_InvalidData(t *testing.T) {
	_, err := (&Processor{}).Thumbnail([]byte("nope"))
	require.Error(t, err)
}
