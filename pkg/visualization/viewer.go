package visualization

import (
	"fmt"
	"image/color"
	"math"

	"pixeledge/internal/models"
	"pixeledge/pkg/imageio"
	"pixeledge/pkg/ops"
	"pixeledge/pkg/pixel"
)

// Colors used by Overlay.
var (
	PositiveColor = color.RGBA{G: 255, A: 255}
	NegativeColor = color.RGBA{R: 255, A: 255}
	RegionColor   = color.RGBA{R: 255, G: 200, A: 255}
)

// Viewer draws inspection results on top of an image.
type Viewer struct {
	// canvas is an RGB copy of the inspected image
	canvas *pixel.Buffer

	// MarkerRadius is the half size of the square drawn for each edge point
	MarkerRadius int
}

// NewViewer creates a viewer whose canvas is an RGB copy of buf
func NewViewer(buf *pixel.Buffer) (*Viewer, error) {
	canvas, err := ops.ConvertToRGB(buf)
	if err != nil {
		return nil, err
	}
	return &Viewer{canvas: canvas}, nil
}

// Canvas returns the image drawn so far
func (v *Viewer) Canvas() *pixel.Buffer {
	return v.canvas
}

// DrawPoints marks every point with a square of the given color. Points
// outside the canvas are skipped.
func (v *Viewer) DrawPoints(points []models.Point, c color.RGBA) {
	for _, p := range points {
		cx, cy := int(math.Floor(p.X)), int(math.Floor(p.Y))
		for dy := -v.MarkerRadius; dy <= v.MarkerRadius; dy++ {
			for dx := -v.MarkerRadius; dx <= v.MarkerRadius; dx++ {
				v.setPixel(cx+dx, cy+dy, c)
			}
		}
	}
}

// DrawRegion outlines a region.
func (v *Viewer) DrawRegion(r models.Region, c color.RGBA) {
	if r.Width == 0 || r.Height == 0 {
		return
	}
	x0, y0 := int(r.X), int(r.Y)
	x1, y1 := x0+int(r.Width)-1, y0+int(r.Height)-1
	for x := x0; x <= x1; x++ {
		v.setPixel(x, y0, c)
		v.setPixel(x, y1, c)
	}
	for y := y0; y <= y1; y++ {
		v.setPixel(x0, y, c)
		v.setPixel(x1, y, c)
	}
}

// ExtractRegion copies a region of the canvas into a new buffer
func (v *Viewer) ExtractRegion(r models.Region) (*pixel.Buffer, error) {
	if err := pixel.ValidateROI(pixel.ROI{Buffer: v.canvas, X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}); err != nil {
		return nil, fmt.Errorf("region %q: %w", r.Name, err)
	}

	out := pixel.New(r.Width, r.Height, v.canvas.ColorCount())
	cc := uint32(v.canvas.ColorCount())
	for y := uint32(0); y < r.Height; y++ {
		src := v.canvas.Row(r.Y + y)[r.X*cc : (r.X+r.Width)*cc]
		copy(out.Row(y), src)
	}
	return out, nil
}

// Save writes the canvas to filename; the format follows the extension
func (v *Viewer) Save(filename string) error {
	return imageio.Save(filename, v.canvas)
}

func (v *Viewer) setPixel(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= int(v.canvas.Width()) || y >= int(v.canvas.Height()) {
		return
	}
	px := v.canvas.Pixel(uint32(x), uint32(y))
	px[0], px[1], px[2] = c.R, c.G, c.B
}

// Overlay draws the regions and edges of a report on buf and returns the
// viewer holding the result
func Overlay(buf *pixel.Buffer, report *models.Report) (*Viewer, error) {
	v, err := NewViewer(buf)
	if err != nil {
		return nil, err
	}
	for _, rr := range report.Regions {
		v.DrawRegion(rr.Region, RegionColor)
	}
	for _, rr := range report.Regions {
		v.DrawPoints(rr.Positive.Points, PositiveColor)
		v.DrawPoints(rr.Negative.Points, NegativeColor)
	}
	return v, nil
}
