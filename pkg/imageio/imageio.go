// Package imageio loads and saves pixel buffers. BMP goes through
// golang.org/x/image/bmp; PNG, JPEG, GIF and TIFF through imaging. Raw files
// hold the pixel rows without any header or padding.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"

	"pixeledge/pkg/pixel"
)

// JPEGQuality is used for every JPEG written by this package.
const JPEGQuality = 95

// Load reads an image file, choosing the decoder by extension.
func Load(path string) (*pixel.Buffer, error) {
	if isBitmap(path) {
		return LoadBitmap(path)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}
	return FromImage(img), nil
}

// Save writes buf to path, choosing the encoder by extension.
func Save(path string, buf *pixel.Buffer) error {
	if err := pixel.Validate(buf); err != nil {
		return err
	}
	if isBitmap(path) {
		return SaveBitmap(path, buf)
	}

	if err := imaging.Save(ToImage(buf), path, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}

// LoadBitmap reads a BMP file.
func LoadBitmap(path string) (*pixel.Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := bmp.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode bitmap %s: %w", path, err)
	}
	return FromImage(img), nil
}

// SaveBitmap writes buf as a BMP file.
func SaveBitmap(path string, buf *pixel.Buffer) error {
	if err := pixel.Validate(buf); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bmp.Encode(file, ToImage(buf)); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode bitmap %s: %w", path, err)
	}
	return file.Close()
}

// Decode reads an image from r in any format imaging understands.
func Decode(r io.Reader) (*pixel.Buffer, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img), nil
}

// ErrTooLarge reports an image whose header declares more pixels than allowed.
var ErrTooLarge = errors.New("image too large")

// DecodeLimited decodes data after checking the dimensions declared in its
// header, so that oversized images are rejected before any pixel memory is
// allocated. A maxPixels of zero or less disables the check.
func DecodeLimited(data []byte, maxPixels int64) (*pixel.Buffer, error) {
	if maxPixels > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode image header: %w", err)
		}
		if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > maxPixels {
			return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
		}
	}
	return Decode(bytes.NewReader(data))
}

// Encode writes buf to w in the given format.
func Encode(w io.Writer, buf *pixel.Buffer, format imaging.Format) error {
	if err := pixel.Validate(buf); err != nil {
		return err
	}
	if format == imaging.BMP {
		return bmp.Encode(w, ToImage(buf))
	}
	return imaging.Encode(w, ToImage(buf), format, imaging.JPEGQuality(JPEGQuality))
}

// FromImage converts img into a gray-scale buffer when its pixels are gray
// and into an RGB buffer otherwise. Alpha is dropped.
func FromImage(img image.Image) *pixel.Buffer {
	bounds := img.Bounds()
	width, height := uint32(bounds.Dx()), uint32(bounds.Dy())

	if isGray(img) {
		buf := pixel.New(width, height, pixel.GrayScale)
		for y := 0; y < bounds.Dy(); y++ {
			row := buf.Row(uint32(y))
			for x := range row {
				row[x] = color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray).Y
			}
		}
		return buf
	}

	nrgba := imaging.Clone(img)
	buf := pixel.New(width, height, pixel.RGB)
	for y := 0; y < bounds.Dy(); y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+bounds.Dx()*4]
		dst := buf.Row(uint32(y))
		for x := 0; x < bounds.Dx(); x++ {
			copy(dst[x*3:x*3+3], src[x*4:x*4+3])
		}
	}
	return buf
}

// ToImage copies buf into an *image.Gray or an opaque *image.NRGBA.
func ToImage(buf *pixel.Buffer) image.Image {
	width, height := int(buf.Width()), int(buf.Height())

	if buf.ColorCount() == pixel.GrayScale {
		img := image.NewGray(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+width], buf.Row(uint32(y)))
		}
		return img
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		src := buf.Row(uint32(y))
		dst := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < width; x++ {
			copy(dst[x*4:x*4+3], src[x*3:x*3+3])
			dst[x*4+3] = 0xff
		}
	}
	return img
}

// LoadRaw reads a headerless file of width x height pixels with colorCount
// channels each.
func LoadRaw(path string, width, height uint32, colorCount uint8) (*pixel.Buffer, error) {
	buf := pixel.New(width, height, colorCount)
	if err := pixel.Validate(buf); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	lineLength := int(width) * int(colorCount)
	for y := uint32(0); y < height; y++ {
		if _, err := io.ReadFull(file, buf.Row(y)[:lineLength]); err != nil {
			return nil, fmt.Errorf("failed to read raw row %d of %s: %w", y, path, err)
		}
	}
	return buf, nil
}

// SaveRaw writes the pixel rows of buf without padding.
func SaveRaw(path string, buf *pixel.Buffer) error {
	if err := pixel.Validate(buf); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	lineLength := int(buf.Width()) * int(buf.ColorCount())
	for y := uint32(0); y < buf.Height(); y++ {
		if _, err := file.Write(buf.Row(y)[:lineLength]); err != nil {
			file.Close()
			return fmt.Errorf("failed to write raw row %d of %s: %w", y, path, err)
		}
	}
	return file.Close()
}

func isBitmap(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".bmp")
}

func isGray(img image.Image) bool {
	switch m := img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	case *image.Paletted:
		for _, c := range m.Palette {
			r, g, b, _ := c.RGBA()
			if r != g || g != b {
				return false
			}
		}
		return len(m.Palette) > 0
	}
	return false
}
