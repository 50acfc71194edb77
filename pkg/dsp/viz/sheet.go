package viz

import (
	"bytes"
	"fmt"
	"io"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Sheet lays plots out on a grid in the order they were added. The last plot
// takes the remainder of its row.
type Sheet struct {
	cols     int
	requests []Request
}

func NewSheet(cols int) *Sheet {
	if cols < 1 {
		cols = 1
	}
	return &Sheet{cols: cols}
}

// Add queues req and returns its position on the sheet.
func (s *Sheet) Add(req Request) int {
	s.requests = append(s.requests, req)
	return len(s.requests) - 1
}

func (s *Sheet) Len() int {
	return len(s.requests)
}

func (s *Sheet) Requests() []Request {
	return s.requests
}

// cell is the grid position of one plot.
type cell struct {
	row, col, span int
}

// layout returns the grid size and a cell per queued plot.
func (s *Sheet) layout() (rows, cols int, cells []cell) {
	n := len(s.requests)
	cols = s.cols
	if n <= 1 {
		cols = 1
	}
	rows = (n + cols - 1) / cols

	cells = make([]cell, n)
	for i := range cells {
		c := cell{row: i / cols, col: i % cols, span: 1}
		if i == n-1 {
			c.span = cols - c.col
		}
		cells[i] = c
	}
	return rows, cols, cells
}

// Render draws every queued plot onto one PNG of the given size.
func (s *Sheet) Render(w io.Writer, width, height vg.Length) error {
	if len(s.requests) == 0 {
		return fmt.Errorf("sheet has no plots")
	}

	rows, cols, cells := s.layout()
	img := vgimg.New(width, height)
	dc := draw.New(img)

	cellW := (dc.Max.X - dc.Min.X) / vg.Length(cols)
	cellH := (dc.Max.Y - dc.Min.Y) / vg.Length(rows)

	for i, req := range s.requests {
		p, err := NewPlot(req)
		if err != nil {
			return fmt.Errorf("plot %d: %w", i, err)
		}

		c := cells[i]
		// rows count down from the top of the canvas
		top := dc.Max.Y - vg.Length(c.row)*cellH
		p.Draw(draw.Canvas{
			Canvas: dc.Canvas,
			Rectangle: vg.Rectangle{
				Min: vg.Point{X: dc.Min.X + vg.Length(c.col)*cellW, Y: top - cellH},
				Max: vg.Point{X: dc.Min.X + vg.Length(c.col+c.span)*cellW, Y: top},
			},
		})
	}

	png := vgimg.PngCanvas{Canvas: img}
	_, err := png.WriteTo(w)
	return err
}

// PNG renders the sheet into memory.
func (s *Sheet) PNG(width, height vg.Length) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Render(&buf, width, height); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
