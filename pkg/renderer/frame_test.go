package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

func TestToColor8(t *testing.T) {
	tests := []struct {
		name     string
		color    core.Vec3
		gamma    float64
		expected Color8
	}{
		{"black", core.NewVec3(0, 0, 0), 2.0, Color8{0, 0, 0}},
		{"white clamps below 256", core.NewVec3(1, 1, 1), 2.0, Color8{255, 255, 255}},
		{"overbright clamps", core.NewVec3(5, 2, 1.5), 2.0, Color8{255, 255, 255}},
		{"negative clamps to zero", core.NewVec3(-1, -0.5, 0), 2.0, Color8{0, 0, 0}},
		{"gamma 2 square root", core.NewVec3(0.25, 0.0625, 0.01), 2.0, Color8{128, 64, 25}},
		{"linear output", core.NewVec3(0.5, 0.25, 0.1), 1.0, Color8{128, 64, 25}},
		{"NaN channel", core.NewVec3(math.NaN(), 0.25, 0), 1.0, Color8{0, 64, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToColor8(tt.color, tt.gamma); got != tt.expected {
				t.Errorf("ToColor8(%v, %v) = %v, want %v", tt.color, tt.gamma, got, tt.expected)
			}
		})
	}
}

func TestFrameRowsAndImage(t *testing.T) {
	frame := NewFrame(3, 2)
	frame.Set(2, 1, Color8{R: 10, G: 20, B: 30})
	copy(frame.Row(0), []Color8{{R: 1}, {G: 2}, {B: 3}})

	if got := frame.At(2, 1); got != (Color8{R: 10, G: 20, B: 30}) {
		t.Errorf("Expected stored pixel, got %v", got)
	}
	if got := frame.At(1, 0); got != (Color8{G: 2}) {
		t.Errorf("Row write did not alias the frame, got %v", got)
	}

	img := frame.ToImage()
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("Expected 3x2 image, got %v", img.Bounds())
	}
	c := img.RGBAAt(2, 1)
	if c.R != 10 || c.G != 20 || c.B != 30 || c.A != 255 {
		t.Errorf("Expected opaque (10, 20, 30), got %v", c)
	}
}
