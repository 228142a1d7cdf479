package output

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"-", FormatPPM, false},
		{"out.ppm", FormatPPM, false},
		{"renders/out.PNG", FormatPNG, false},
		{"out.bmp", FormatBMP, false},
		{"out.tif", FormatTIFF, false},
		{"out.tiff", FormatTIFF, false},
		{"out.jpg", "", true},
		{"out", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidConfig) {
					t.Errorf("Expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("FormatFromPath(%q) = %q, %v; want %q", tt.path, got, err, tt.want)
			}
		})
	}
}

func TestEncodeRasterFormats(t *testing.T) {
	tests := []struct {
		format Format
		decode func(*bytes.Reader) (image.Image, error)
	}{
		{FormatPNG, func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) }},
		{FormatBMP, func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) }},
		{FormatTIFF, func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) }},
	}

	frame := testFrame()
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, frame, tt.format); err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			img, err := tt.decode(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if img.Bounds().Dx() != frame.Width || img.Bounds().Dy() != frame.Height {
				t.Fatalf("Decoded size %v, want %dx%d", img.Bounds(), frame.Width, frame.Height)
			}

			for y := 0; y < frame.Height; y++ {
				for x := 0; x < frame.Width; x++ {
					r, g, b, _ := img.At(x, y).RGBA()
					want := frame.At(x, y)
					if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(b>>8) != want.B {
						t.Errorf("Pixel (%d, %d) = (%d, %d, %d), want %v", x, y, r>>8, g>>8, b>>8, want)
					}
				}
			}
		})
	}
}

func TestEncodePPM(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testFrame(), FormatPPM); err != nil {
		t.Fatal(err)
	}
	if buf.String() != testFramePPM {
		t.Errorf("Unexpected PPM output %q", buf.String())
	}
}

func TestEncodeImageRejectsUnknownFormat(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	for _, format := range []Format{"gif", FormatPPM} {
		if err := EncodeImage(&bytes.Buffer{}, img, format); !errors.Is(err, core.ErrInvalidConfig) {
			t.Errorf("Format %q: expected ErrInvalidConfig, got %v", format, err)
		}
	}
}

func TestSaveFile(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"out.ppm", "out.png", "out.bmp", "out.tiff"} {
		path := filepath.Join(dir, name)
		if err := SaveFile(path, testFrame()); err != nil {
			t.Fatalf("SaveFile(%s) failed: %v", name, err)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Errorf("Expected non-empty %s, stat err %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "out.ppm"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != testFramePPM {
		t.Errorf("Saved PPM differs: %q", data)
	}

	if err := SaveFile(filepath.Join(dir, "out.gif"), testFrame()); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for .gif, got %v", err)
	}
}
