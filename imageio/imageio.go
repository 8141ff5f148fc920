// Package imageio turns raw RGBA8 readback buffers into images and writes them to disk.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var (
	// ErrBufferSize is returned when a pixel buffer does not hold exactly width*height RGBA8 pixels.
	ErrBufferSize = errors.New("imageio: buffer size does not match dimensions")

	// ErrUnsupportedFormat is returned when the output path has no known image extension.
	ErrUnsupportedFormat = errors.New("imageio: unsupported image format")
)

// Encoder writes img to w in a single image format.
type Encoder func(w io.Writer, img image.Image) error

var encoders = map[string]Encoder{
	".png":  png.Encode,
	".bmp":  bmp.Encode,
	".tif":  encodeTIFF,
	".tiff": encodeTIFF,
}

func encodeTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}

// FromRGBA wraps a tightly packed, row-major, top-row-first RGBA8 buffer as an image.
// The buffer is used in place, not copied.
//
// Parameters:
//   - buf: the pixel data, four bytes per pixel
//   - width: the image width in pixels
//   - height: the image height in pixels
//
// Returns:
//   - *image.RGBA: an image backed by buf
//   - error: ErrBufferSize if len(buf) != width*height*4
func FromRGBA(buf []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d has no area", ErrBufferSize, width, height)
	}
	if want := width * height * 4; len(buf) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d for %dx%d", ErrBufferSize, len(buf), want, width, height)
	}
	return &image.RGBA{
		Pix:    buf,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}, nil
}

// EncoderFor returns the encoder for the extension of path, compared case-insensitively.
//
// Parameters:
//   - path: the output file path
//
// Returns:
//   - Encoder: the encoder for the file's format
//   - error: ErrUnsupportedFormat when the extension is unknown
func EncoderFor(path string) (Encoder, error) {
	ext := strings.ToLower(filepath.Ext(path))
	enc, ok := encoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return enc, nil
}

// WriteFile encodes img in the format named by the extension of path and writes it there,
// replacing any existing file. The image is encoded into a temporary file in the same
// directory which is renamed over path only once it is complete, so a failed write never
// leaves a partial image behind.
//
// Parameters:
//   - path: the output file path; .png, .bmp, .tif and .tiff are supported
//   - img: the image to write
//
// Returns:
//   - error: ErrUnsupportedFormat, or an error if encoding or any file operation fails
func WriteFile(path string, img image.Image) (err error) {
	enc, err := EncoderFor(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("imageio: create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = enc(tmp, img); err != nil {
		return fmt.Errorf("imageio: encode %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("imageio: close %s: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("imageio: chmod %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("imageio: rename to %s: %w", path, err)
	}
	return nil
}
