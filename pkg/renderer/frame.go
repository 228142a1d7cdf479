package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// Color8 is a quantized pixel with one byte per channel
type Color8 struct {
	R, G, B uint8
}

// ToColor8 converts an averaged linear color to 8-bit channels.
// Each channel is gamma corrected, clamped to [0, 0.999] and scaled by 256.
// NaN channels quantize to 0.
func ToColor8(c core.Vec3, gamma float64) Color8 {
	c = c.GammaCorrect(gamma)
	return Color8{
		R: quantize(c.X),
		G: quantize(c.Y),
		B: quantize(c.Z),
	}
}

func quantize(x float64) uint8 {
	if math.IsNaN(x) {
		return 0
	}
	x = min(max(x, 0.0), 0.999)
	return uint8(256 * x)
}

// Frame is a finished image stored row-major with row 0 at the top
type Frame struct {
	Width  int
	Height int
	Pixels []Color8
}

// NewFrame allocates a black frame of the given size
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pixels: make([]Color8, width*height),
	}
}

// At returns the pixel at column x of row y
func (f *Frame) At(x, y int) Color8 {
	return f.Pixels[y*f.Width+x]
}

// Set stores the pixel at column x of row y
func (f *Frame) Set(x, y int, c Color8) {
	f.Pixels[y*f.Width+x] = c
}

// Row returns the pixels of row y; the slice aliases the frame
func (f *Frame) Row(y int) []Color8 {
	return f.Pixels[y*f.Width : (y+1)*f.Width]
}

// ToImage converts the frame to an opaque RGBA image
func (f *Frame) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x, c := range f.Row(y) {
			img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return img
}

// CalculateAverageLuminance returns the mean luminance of img in [0, 1]
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			c := core.NewVec3(float64(r)/0xffff, float64(g)/0xffff, float64(b)/0xffff)
			total += c.Luminance()
		}
	}
	return total / float64(pixels)
}
