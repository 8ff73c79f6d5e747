// Package image produces the square artist thumbnails shown on cards.
package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Supported image format names.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// Thumbnail size bounds in pixels.
const (
	MinSize = 16
	MaxSize = 1024
)

// MaxSourceSide caps the width and height of a source image accepted for
// decoding. A small compressed file can still declare a huge raster.
const MaxSourceSide = 8000

// ErrImageTooLarge is returned for source images above MaxSourceSide.
var ErrImageTooLarge = errors.New("image dimensions too large")

// DetectFormat reads the first bytes from r to identify the image format.
// Returns "jpeg", "png", or "webp". The returned reader replays the consumed bytes.
func DetectFormat(r io.Reader) (format string, replay io.Reader, err error) {
	// 12 bytes covers every supported magic number.
	buf := make([]byte, 12)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("reading header: %w", err)
	}
	buf = buf[:n]

	replay = io.MultiReader(bytes.NewReader(buf), r)

	if n >= 3 && buf[0] == 0xFF && buf[1] == 0xD8 && buf[2] == 0xFF {
		return FormatJPEG, replay, nil
	}
	if n >= 8 && string(buf[:8]) == "\x89PNG\r\n\x1a\n" {
		return FormatPNG, replay, nil
	}
	if n >= 12 && string(buf[:4]) == "RIFF" && string(buf[8:12]) == "WEBP" {
		return FormatWebP, replay, nil
	}

	return "", replay, fmt.Errorf("unrecognized image format")
}

// GetDimensions decodes only the image header to read width and height.
func GetDimensions(r io.Reader) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, fmt.Errorf("decoding image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Square center-crops the image from src to a square and scales it to
// size x size. JPEG stays JPEG; PNG and WebP input come out as PNG.
func Square(src io.Reader, size int) ([]byte, string, error) {
	if size < MinSize || size > MaxSize {
		return nil, "", fmt.Errorf("thumbnail size %d outside %d-%d", size, MinSize, MaxSize)
	}

	format, replay, err := DetectFormat(src)
	if err != nil {
		return nil, "", fmt.Errorf("detecting format: %w", err)
	}

	// Read the header first and replay it for the full decode.
	var header bytes.Buffer
	width, height, err := GetDimensions(io.TeeReader(replay, &header))
	if err != nil {
		return nil, "", err
	}
	if width > MaxSourceSide || height > MaxSourceSide {
		return nil, "", fmt.Errorf("%w: %dx%d", ErrImageTooLarge, width, height)
	}

	img, _, err := image.Decode(io.MultiReader(&header, replay))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image: %w", err)
	}

	crop := centerSquare(img.Bounds())
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Over, nil)

	// No WebP encoder is available.
	outFormat := format
	if outFormat == FormatWebP {
		outFormat = FormatPNG
	}

	data, err := encode(dst, outFormat, 85)
	if err != nil {
		return nil, "", err
	}
	return data, outFormat, nil
}

// ContentType returns the MIME type for a format name.
func ContentType(format string) string {
	switch format {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatWebP:
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// centerSquare returns the largest square centered in b.
func centerSquare(b image.Rectangle) image.Rectangle {
	side := min(b.Dx(), b.Dy())
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}

// encode writes an image in the specified format to a byte slice.
func encode(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encoding jpeg: %w", err)
		}
	case FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding png: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	return buf.Bytes(), nil
}
