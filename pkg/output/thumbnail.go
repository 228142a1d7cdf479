package output

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// Thumbnail scales img to the given width, keeping its aspect ratio.
// The height is at least one pixel.
func Thumbnail(img image.Image, width int) (*image.RGBA, error) {
	if width < 1 {
		return nil, fmt.Errorf("thumbnail width must be at least 1, got %d: %w", width, core.ErrInvalidConfig)
	}

	src := img.Bounds()
	if src.Empty() {
		return nil, fmt.Errorf("cannot thumbnail an empty image: %w", core.ErrInvalidConfig)
	}
	height := max(1, src.Dy()*width/src.Dx())

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, src, xdraw.Src, nil)
	return dst, nil
}

// ThumbnailPath derives the thumbnail file name from the output path.
// PPM and stdout outputs get a PNG thumbnail.
func ThumbnailPath(outputPath string) string {
	if outputPath == StdoutPath {
		return "thumbnail.png"
	}
	ext := filepath.Ext(outputPath)
	base := strings.TrimSuffix(outputPath, ext)
	if strings.EqualFold(ext, ".ppm") {
		ext = ".png"
	}
	return base + "_thumb" + ext
}
