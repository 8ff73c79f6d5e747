package image

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// makeJPEG creates a JPEG-encoded image of the given dimensions.
func makeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encoding test jpeg: %v", err)
	}
	return buf.Bytes()
}

// makePNG creates a PNG-encoded image of the given dimensions.
func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 64, A: 200})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test png: %v", err)
	}
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", makeJPEG(t, 10, 10), FormatJPEG},
		{"png", makePNG(t, 10, 10), FormatPNG},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), FormatWebP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, _, err := DetectFormat(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if format != tt.want {
				t.Errorf("got format %q, want %q", format, tt.want)
			}
		})
	}
}

func TestDetectFormat_ReplayStillDecodes(t *testing.T) {
	data := makeJPEG(t, 10, 10)
	_, replay, err := DetectFormat(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := jpeg.Decode(replay); err != nil {
		t.Errorf("replay reader should still decode: %v", err)
	}
}

func TestDetectFormat_Unknown(t *testing.T) {
	_, _, err := DetectFormat(bytes.NewReader([]byte("not an image")))
	if err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSquare(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		size       int
		wantFormat string
	}{
		{"landscape jpeg", makeJPEG(t, 640, 480), 200, FormatJPEG},
		{"portrait png", makePNG(t, 300, 500), 250, FormatPNG},
		{"upscale small jpeg", makeJPEG(t, 64, 64), 128, FormatJPEG},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, format, err := Square(bytes.NewReader(tt.data), tt.size)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if format != tt.wantFormat {
				t.Errorf("got format %q, want %q", format, tt.wantFormat)
			}
			w, h, err := GetDimensions(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("reading result dimensions: %v", err)
			}
			if w != tt.size || h != tt.size {
				t.Errorf("got %dx%d, want %dx%d", w, h, tt.size, tt.size)
			}
		})
	}
}

func TestSquare_RejectsBadInput(t *testing.T) {
	if _, _, err := Square(bytes.NewReader(makePNG(t, 10, 10)), 8); err == nil {
		t.Error("expected error for size below minimum")
	}
	if _, _, err := Square(bytes.NewReader(makePNG(t, 10, 10)), MaxSize+1); err == nil {
		t.Error("expected error for size above maximum")
	}
	if _, _, err := Square(bytes.NewReader([]byte("garbage")), 100); err == nil {
		t.Error("expected error for undecodable input")
	}
}

// withPNGSize rewrites the IHDR dimensions of a PNG, leaving the pixel data
// as it was. Only the header is consistent afterwards.
func withPNGSize(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	out := bytes.Clone(data)
	// signature(8) length(4) "IHDR"(4) width(4) height(4) ... crc
	if string(out[12:16]) != "IHDR" {
		t.Fatal("IHDR is not the first chunk")
	}
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestSquare_RejectsOversizedSource(t *testing.T) {
	huge := withPNGSize(t, makePNG(t, 4, 4), 20000, 20000)

	w, h, err := GetDimensions(bytes.NewReader(huge))
	if err != nil {
		t.Fatalf("GetDimensions: %v", err)
	}
	if w != 20000 || h != 20000 {
		t.Fatalf("header says %dx%d, want 20000x20000", w, h)
	}

	_, _, err = Square(bytes.NewReader(huge), 200)
	if !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("Square err = %v, want ErrImageTooLarge", err)
	}

	tall := withPNGSize(t, makePNG(t, 4, 4), 10, MaxSourceSide+1)
	if _, _, err := Square(bytes.NewReader(tall), 200); !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("Square err = %v, want ErrImageTooLarge for a tall image", err)
	}
}

func TestCenterSquare(t *testing.T) {
	tests := []struct {
		in   image.Rectangle
		want image.Rectangle
	}{
		{image.Rect(0, 0, 640, 480), image.Rect(80, 0, 560, 480)},
		{image.Rect(0, 0, 300, 500), image.Rect(0, 100, 300, 400)},
		{image.Rect(0, 0, 100, 100), image.Rect(0, 0, 100, 100)},
		{image.Rect(10, 10, 30, 20), image.Rect(15, 10, 25, 20)},
	}
	for _, tt := range tests {
		if got := centerSquare(tt.in); got != tt.want {
			t.Errorf("centerSquare(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestContentType(t *testing.T) {
	if got := ContentType(FormatJPEG); got != "image/jpeg" {
		t.Errorf("ContentType(jpeg) = %q", got)
	}
	if got := ContentType(FormatPNG); got != "image/png" {
		t.Errorf("ContentType(png) = %q", got)
	}
	if got := ContentType("tiff"); got != "application/octet-stream" {
		t.Errorf("ContentType(tiff) = %q", got)
	}
}

func bytesReader(b []byte) *bytes.Reader { return bytes.NewReader(b) }
