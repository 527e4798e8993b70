package avatar

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

// encodeTestImage renders a solid-color image of the given size in the
// requested format.
func encodeTestImage(t *testing.T, format string, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		require.NoError(t, png.Encode(&buf, img))
	case "jpeg":
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	default:
		t.Fatalf("unknown format %q", format)
	}
	return buf.Bytes()
}

func TestProcessor_NormalizesToFixedSizePNG(t *testing.T) {
	p := NewProcessor()

	tests := []struct {
		name     string
		filename string
		format   string
		width    int
		height   int
	}{
		{"small png", "me.png", "png", 10, 20},
		{"large jpeg", "me.jpg", "jpeg", 640, 480},
		{"jpeg alt extension", "me.jpeg", "jpeg", 50, 50},
		{"uppercase extension", "ME.PNG", "png", 300, 290},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodeTestImage(t, tt.format, tt.width, tt.height)

			out, err := p.Process(tt.filename, data)
			require.NoError(t, err)

			decoded, err := png.Decode(bytes.NewReader(out))
			require.NoError(t, err, "output must always be PNG")
			assert.Equal(t, Width, decoded.Bounds().Dx())
			assert.Equal(t, Height, decoded.Bounds().Dy())
		})
	}
}

func TestProcessor_RejectsBadUploads(t *testing.T) {
	p := NewProcessor()
	valid := encodeTestImage(t, "png", 10, 10)

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := p.Process("resume.pdf", valid)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("no extension", func(t *testing.T) {
		_, err := p.Process("avatar", valid)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("oversized upload", func(t *testing.T) {
		big := make([]byte, MaxUploadBytes+1)
		_, err := p.Process("me.png", big)
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("not an image", func(t *testing.T) {
		_, err := p.Process("me.png", []byte("definitely not a png"))
		assert.ErrorIs(t, err, ErrUndecodable)
	})
}
