package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Figure is a composed map: one axes, an optional colorbar and a title.
// Nothing is written until Encode or Save is called.
type Figure struct {
	Width, Height vg.Length
	Title         string
	Axes          *Axes
	Colorbar      *Colorbar

	// Warnings collects non-fatal problems met while composing.
	Warnings []error
}

// NewFigure returns an empty figure of the given size.
func NewFigure(width, height vg.Length) (*Figure, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("figure: invalid size %v x %v", width, height)
	}
	return &Figure{Width: width, Height: height}, nil
}

// AddAxes creates the map axes.
func (f *Figure) AddAxes(p Projection) (*Axes, error) {
	if f.Axes != nil {
		return nil, errors.New("figure: axes already added")
	}
	a, err := NewAxes(p)
	if err != nil {
		return nil, err
	}
	f.Axes = a
	return a, nil
}

// AddColorbar attaches a colorbar for m.
func (f *Figure) AddColorbar(m *Mesh, ticks []float64, labels []string, shrink float64) (*Colorbar, error) {
	cb, err := NewColorbar(m, ticks, labels)
	if err != nil {
		return nil, err
	}
	if shrink > 0 && shrink <= 1 {
		cb.Shrink = shrink
	}
	f.Colorbar = cb
	return cb, nil
}

// SetTitle sets the figure caption.
func (f *Figure) SetTitle(title string) { f.Title = title }

// Warn records a non-fatal problem.
func (f *Figure) Warn(err error) { f.Warnings = append(f.Warnings, err) }

// Draw renders the figure onto c.
func (f *Figure) Draw(c draw.Canvas) {
	c.FillPolygon(color.White, []vg.Point{
		{X: c.Min.X, Y: c.Min.Y}, {X: c.Max.X, Y: c.Min.Y},
		{X: c.Max.X, Y: c.Max.Y}, {X: c.Min.X, Y: c.Max.Y},
	})
	mapC := c
	if f.Colorbar != nil {
		w := c.Max.X - c.Min.X
		h := c.Max.Y - c.Min.Y
		cbW := w * 0.12
		mapC = draw.Crop(c, 0, -cbW, 0, 0)
		pad := h * vg.Length(1-f.Colorbar.Shrink) / 2
		f.Colorbar.draw(draw.Crop(c, w-cbW+cbW/4, -cbW/4, pad, -pad))
	}
	if f.Axes != nil {
		f.Axes.draw(mapC, f.Title)
	}
}

// Encode writes the figure to w in format: png, jpg, tif, svg, eps or pdf.
func (f *Figure) Encode(w io.Writer, format string) (err error) {
	cw, err := draw.NewFormattedCanvas(f.Width, f.Height, strings.ToLower(format))
	if err != nil {
		return fmt.Errorf("figure: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("figure: drawing failed: %v", r)
		}
	}()
	f.Draw(draw.New(cw))
	if _, err := cw.WriteTo(w); err != nil {
		return fmt.Errorf("figure: writing %s: %w", format, err)
	}
	return nil
}

// Bytes encodes the figure into memory.
func (f *Figure) Bytes(format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Encode(&buf, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the figure to path, choosing the format from its extension.
func (f *Figure) Save(path string) (err error) {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if format == "" {
		return fmt.Errorf("figure: no format extension in %q", path)
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return f.Encode(out, format)
}

// ContentType returns the MIME type of an output format.
func ContentType(format string) (string, bool) {
	switch strings.ToLower(format) {
	case "png":
		return "image/png", true
	case "jpg", "jpeg":
		return "image/jpeg", true
	case "tif", "tiff":
		return "image/tiff", true
	case "svg":
		return "image/svg+xml", true
	case "eps":
		return "application/postscript", true
	case "pdf":
		return "application/pdf", true
	}
	return "", false
}
