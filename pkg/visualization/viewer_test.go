package visualization

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pixeledge/internal/models"
	"pixeledge/pkg/imageio"
	"pixeledge/pkg/pixel"
)

// TestNewViewer verifies that the canvas is an RGB copy of the input
func TestNewViewer(t *testing.T) {
	gray := pixel.New(10, 8, pixel.GrayScale)
	gray.Set(3, 4, 90)

	viewer, err := NewViewer(gray)
	require.NoError(t, err)

	canvas := viewer.Canvas()
	require.Equal(t, pixel.RGB, canvas.ColorCount())
	require.Equal(t, []byte{90, 90, 90}, canvas.Pixel(3, 4))

	// Drawing must not touch the input
	viewer.DrawPoints([]models.Point{{X: 3.5, Y: 4}}, PositiveColor)
	require.Equal(t, uint8(90), gray.At(3, 4))
	require.Equal(t, []byte{0, 255, 0}, canvas.Pixel(3, 4))

	_, err = NewViewer(pixel.New(0, 0, pixel.GrayScale))
	require.ErrorIs(t, err, pixel.ErrInvalidParameter)
}

// TestDrawPointsClipsToCanvas verifies markers on the border are clipped
func TestDrawPointsClipsToCanvas(t *testing.T) {
	viewer, err := NewViewer(pixel.New(4, 4, pixel.GrayScale))
	require.NoError(t, err)
	viewer.MarkerRadius = 1

	viewer.DrawPoints([]models.Point{{X: 0, Y: 0}, {X: -5, Y: 10}}, NegativeColor)

	canvas := viewer.Canvas()
	for _, p := range [][2]uint32{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		require.Equal(t, []byte{255, 0, 0}, canvas.Pixel(p[0], p[1]))
	}
	require.Equal(t, []byte{0, 0, 0}, canvas.Pixel(2, 2))
}

// TestDrawRegion verifies that only the outline is drawn
func TestDrawRegion(t *testing.T) {
	viewer, err := NewViewer(pixel.New(10, 10, pixel.GrayScale))
	require.NoError(t, err)

	c := color.RGBA{R: 1, G: 2, B: 3, A: 255}
	viewer.DrawRegion(models.Region{X: 2, Y: 2, Width: 5, Height: 4}, c)

	canvas := viewer.Canvas()
	require.Equal(t, []byte{1, 2, 3}, canvas.Pixel(2, 2))
	require.Equal(t, []byte{1, 2, 3}, canvas.Pixel(6, 5))
	require.Equal(t, []byte{0, 0, 0}, canvas.Pixel(4, 3))
}

// TestExtractRegion verifies region copies and bounds checks
func TestExtractRegion(t *testing.T) {
	gray := pixel.New(10, 10, pixel.GrayScale)
	gray.Set(5, 6, 44)

	viewer, err := NewViewer(gray)
	require.NoError(t, err)

	region, err := viewer.ExtractRegion(models.Region{X: 4, Y: 5, Width: 3, Height: 3})
	require.NoError(t, err)
	require.Equal(t, uint32(3), region.Width())
	require.Equal(t, []byte{44, 44, 44}, region.Pixel(1, 1))

	_, err = viewer.ExtractRegion(models.Region{X: 8, Y: 8, Width: 3, Height: 3})
	require.ErrorIs(t, err, pixel.ErrInvalidParameter)
}

// TestOverlaySave verifies that an overlay can be written and read back
func TestOverlaySave(t *testing.T) {
	gray := pixel.New(20, 20, pixel.GrayScale)
	report := &models.Report{Regions: []models.RegionReport{{
		Region:   models.Region{X: 0, Y: 0, Width: 20, Height: 20},
		Positive: models.EdgeSet{Count: 1, Points: []models.Point{{X: 5, Y: 5}}},
		Negative: models.EdgeSet{Count: 1, Points: []models.Point{{X: 15, Y: 5}}},
	}}}

	viewer, err := Overlay(gray, report)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "overlay.png")
	require.NoError(t, viewer.Save(path))

	loaded, err := imageio.Load(path)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 255, 0}, loaded.Pixel(5, 5))
	require.Equal(t, []byte{255, 0, 0}, loaded.Pixel(15, 5))
	require.Equal(t, []byte{255, 200, 0}, loaded.Pixel(0, 10))
}
