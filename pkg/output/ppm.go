package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

func writePPMHeader(w io.Writer, width, height int) error {
	_, err := fmt.Fprintf(w, "P3\n%d %d\n255\n", width, height)
	return err
}

func writePPMRow(w io.Writer, pixels []renderer.Color8) error {
	for _, c := range pixels {
		if _, err := fmt.Fprintf(w, "%d %d %d\n", c.R, c.G, c.B); err != nil {
			return err
		}
	}
	return nil
}

// WritePPM writes frame as a plain-text P3 image, one pixel per line in scan order
func WritePPM(w io.Writer, frame *renderer.Frame) error {
	bw := bufio.NewWriter(w)
	if err := writePPMHeader(bw, frame.Width, frame.Height); err != nil {
		return err
	}
	for y := 0; y < frame.Height; y++ {
		if err := writePPMRow(bw, frame.Row(y)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// PPMStreamWriter writes a P3 image row by row as rows are rendered.
// Its WriteRow method has the renderer.RowFunc signature.
type PPMStreamWriter struct {
	w      *bufio.Writer
	width  int
	height int
	rows   int
	header bool
}

// NewPPMStreamWriter creates a stream writer for a width x height image
func NewPPMStreamWriter(w io.Writer, width, height int) (*PPMStreamWriter, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("ppm size must be positive, got %dx%d: %w", width, height, core.ErrInvalidConfig)
	}
	return &PPMStreamWriter{
		w:      bufio.NewWriter(w),
		width:  width,
		height: height,
	}, nil
}

// WriteRow appends the next row. Rows must arrive in order starting at 0.
func (s *PPMStreamWriter) WriteRow(row int, pixels []renderer.Color8) error {
	if row != s.rows {
		return fmt.Errorf("ppm row %d written out of order, expected row %d", row, s.rows)
	}
	if len(pixels) != s.width {
		return fmt.Errorf("ppm row %d has %d pixels, expected %d", row, len(pixels), s.width)
	}

	if !s.header {
		if err := writePPMHeader(s.w, s.width, s.height); err != nil {
			return err
		}
		s.header = true
	}
	if err := writePPMRow(s.w, pixels); err != nil {
		return err
	}
	s.rows++

	// Flush each row so a reader on the other end of a pipe sees progress
	return s.w.Flush()
}

// RowsWritten returns the number of rows written so far
func (s *PPMStreamWriter) RowsWritten() int {
	return s.rows
}

// Close flushes buffered output and reports an incomplete image
func (s *PPMStreamWriter) Close() error {
	if err := s.w.Flush(); err != nil {
		return err
	}
	if s.rows != s.height {
		return fmt.Errorf("ppm closed after %d of %d rows", s.rows, s.height)
	}
	return nil
}
