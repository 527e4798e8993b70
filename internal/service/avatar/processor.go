// Package avatar normalizes uploaded profile images.
package avatar

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Normalized avatar dimensions. Every stored avatar is exactly this size;
// the resize deliberately ignores the input's aspect ratio.
const (
	Width  = 300
	Height = 290
)

// MaxUploadBytes is the largest accepted upload.
const MaxUploadBytes = 1_000_000

// Upload validation errors.
var (
	// ErrUnsupportedFormat is returned for files that are not jpg, jpeg or png.
	ErrUnsupportedFormat = errors.New("the uploaded file must be an image (jpg, jpeg or png)")

	// ErrTooLarge is returned when the upload exceeds MaxUploadBytes.
	ErrTooLarge = fmt.Errorf("the uploaded file must not exceed %d bytes", MaxUploadBytes)

	// ErrUndecodable is returned when the bytes cannot be decoded as an image.
	ErrUndecodable = errors.New("the uploaded file could not be decoded as an image")
)

// AllowedExtension reports whether the filename carries one of the accepted
// image extensions. The check is case-insensitive.
func AllowedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// Processor normalizes uploaded avatar images to a fixed-size PNG.
// It is stateless; a single instance is shared across requests.
type Processor struct{}

// NewProcessor creates a new avatar Processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// Process validates and normalizes an uploaded avatar. The input may be JPEG
// or PNG in any dimensions; the output is always a Width x Height PNG.
func (p *Processor) Process(filename string, data []byte) ([]byte, error) {
	if !AllowedExtension(filename) {
		return nil, ErrUnsupportedFormat
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	resized := imaging.Resize(img, Width, Height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode avatar as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
