// Command genicons renders the PNG app icons from the bar-chart glyph in
// web/static/img/favicon.svg: white ascending bars on a green rounded square.
// Run from the repository root: go run ./tools/genicons
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/vector"
)

const (
	viewboxSz = 32.0
	cornerR   = 7.0
)

var bgColor = color.NRGBA{29, 185, 84, 255} // #1DB954

// bars are {x, y, w, h} in the 32x32 viewBox, matching favicon.svg.
var bars = [][4]float32{
	{7, 18, 4, 7},
	{14, 12, 4, 13},
	{21, 7, 4, 18},
}

// iconTargets are the files the page head links to.
var iconTargets = []struct {
	name string
	size int
}{
	{"favicon-16x16.png", 16},
	{"favicon-32x32.png", 32},
	{"apple-touch-icon.png", 180},
	{"icon-512x512.png", 512},
}

func main() {
	outDir := filepath.Join("web", "static", "img")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create dir: %v\n", err)
		os.Exit(1)
	}

	for _, t := range iconTargets {
		p := filepath.Join(outDir, t.name)
		if err := writePNG(p, renderIcon(t.size)); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", p, err)
			os.Exit(1)
		}
		fmt.Printf("generated %s (%dx%d)\n", p, t.size, t.size)
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return f.Close()
}

func renderIcon(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	half := float64(size) / 2.0
	cr := cornerR * float64(size) / viewboxSz
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := roundedBoxSDF(float64(x)+0.5-half, float64(y)+0.5-half, half, half, cr)
			if d <= -0.5 {
				img.SetNRGBA(x, y, bgColor)
			} else if d < 0.5 {
				blend(img, x, y, bgColor, 0.5-d)
			}
		}
	}

	rasterizeBars(img, size)
	return img
}

// rasterizeBars draws the chart bars in white, anti-aliased.
func rasterizeBars(img *image.NRGBA, size int) {
	s := float32(size) / viewboxSz

	var r vector.Rasterizer
	r.Reset(size, size)
	for _, b := range bars {
		x0, y0 := b[0]*s, b[1]*s
		x1, y1 := (b[0]+b[2])*s, (b[1]+b[3])*s
		r.MoveTo(x0, y0)
		r.LineTo(x1, y0)
		r.LineTo(x1, y1)
		r.LineTo(x0, y1)
		r.ClosePath()
	}
	r.Draw(img, img.Bounds(), image.White, image.Point{})
}

// roundedBoxSDF is the signed distance from (px, py) to a rounded rect
// centered at the origin; negative inside.
func roundedBoxSDF(px, py, bx, by, r float64) float64 {
	qx := math.Abs(px) - bx + r
	qy := math.Abs(py) - by + r
	return math.Hypot(math.Max(qx, 0), math.Max(qy, 0)) + math.Min(math.Max(qx, qy), 0) - r
}

// blend composites c at alpha over the pixel at (x, y).
func blend(img *image.NRGBA, x, y int, c color.NRGBA, alpha float64) {
	if alpha <= 0 {
		return
	}
	alpha = math.Min(alpha, 1)

	dst := img.NRGBAAt(x, y)
	sa := float64(c.A) / 255.0 * alpha
	da := float64(dst.A) / 255.0
	oa := sa + da*(1-sa)
	if oa == 0 {
		return
	}
	mix := func(cs, cd uint8) uint8 {
		return uint8(math.Round((float64(cs)*sa + float64(cd)*da*(1-sa)) / oa))
	}
	img.SetNRGBA(x, y, color.NRGBA{
		R: mix(c.R, dst.R),
		G: mix(c.G, dst.G),
		B: mix(c.B, dst.B),
		A: uint8(math.Round(oa * 255)),
	})
}
