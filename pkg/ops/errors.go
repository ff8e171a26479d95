package ops

import (
	"fmt"

	"pixeledge/pkg/pixel"
)

var errEmptyHistogram = fmt.Errorf("%w: histogram is empty", pixel.ErrInvalidParameter)

func errHistogramSize(n int) error {
	return fmt.Errorf("%w: histogram has %d bins, expected 256", pixel.ErrInvalidParameter, n)
}
