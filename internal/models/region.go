package models

// Region is a rectangular area of an image to inspect for edges.
type Region struct {
	// Name identifies the region in reports and logs
	Name string `yaml:"name" json:"name"`

	// X and Y are the top-left corner of the region in pixels
	X uint32 `yaml:"x" json:"x"`
	Y uint32 `yaml:"y" json:"y"`

	// Width and Height are the region extent; zero extends the region to
	// the right or bottom border of the image
	Width  uint32 `yaml:"width" json:"width"`
	Height uint32 `yaml:"height" json:"height"`

	// Direction is the scan direction ("left-to-right" or "top-to-bottom")
	Direction string `yaml:"direction" json:"direction"`
}

// Resolve fills in a zero width or height from the image size.
func (r Region) Resolve(imageWidth, imageHeight uint32) Region {
	if r.Width == 0 && r.X < imageWidth {
		r.Width = imageWidth - r.X
	}
	if r.Height == 0 && r.Y < imageHeight {
		r.Height = imageHeight - r.Y
	}
	return r
}
