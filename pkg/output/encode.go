package output

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// Format is an output image encoding
type Format string

const (
	FormatPPM  Format = "ppm"
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// StdoutPath is the output path that selects PPM on standard output
const StdoutPath = "-"

// FormatFromPath picks the encoding from the file extension
func FormatFromPath(path string) (Format, error) {
	if path == StdoutPath {
		return FormatPPM, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ppm":
		return FormatPPM, nil
	case ".png":
		return FormatPNG, nil
	case ".bmp":
		return FormatBMP, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("unsupported output extension %q (use .ppm, .png, .bmp or .tiff): %w",
			filepath.Ext(path), core.ErrInvalidConfig)
	}
}

// Encode writes frame to w in the given format
func Encode(w io.Writer, frame *renderer.Frame, format Format) error {
	if format == FormatPPM {
		return WritePPM(w, frame)
	}
	return EncodeImage(w, frame.ToImage(), format)
}

// EncodeImage writes img to w in one of the raster formats
func EncodeImage(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case FormatPPM:
		return fmt.Errorf("ppm output requires a frame, not an image: %w", core.ErrInvalidConfig)
	default:
		return fmt.Errorf("unknown output format %q: %w", format, core.ErrInvalidConfig)
	}
}

// SaveFile encodes frame to path using the format implied by its extension
func SaveFile(path string, frame *renderer.Frame) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	return createAndWrite(path, func(w io.Writer) error {
		return Encode(w, frame, format)
	})
}

// SaveImage encodes img to path using the format implied by its extension
func SaveImage(path string, img image.Image) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	return createAndWrite(path, func(w io.Writer) error {
		return EncodeImage(w, img, format)
	})
}

func createAndWrite(path string, write func(io.Writer) error) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
