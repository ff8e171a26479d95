package pixel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	gray := New(10, 10, GrayScale)
	rgb := New(10, 10, RGB)

	require.NoError(t, Validate(gray))
	require.NoError(t, Validate(gray, rgb))
	require.NoError(t, Validate(gray, rgb, gray))

	tests := []struct {
		name    string
		buffers []*Buffer
	}{
		{"none", nil},
		{"nil buffer", []*Buffer{nil}},
		{"empty buffer", []*Buffer{New(0, 0, GrayScale)}},
		{"two channels", []*Buffer{New(10, 10, 2)}},
		{"four channels", []*Buffer{gray, New(10, 10, 4)}},
		{"width mismatch", []*Buffer{gray, New(11, 10, GrayScale)}},
		{"height mismatch", []*Buffer{gray, rgb, New(10, 9, RGB)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, Validate(tc.buffers...), ErrInvalidParameter)
		})
	}
}

func TestValidateROI(t *testing.T) {
	b := New(100, 50, GrayScale)

	require.NoError(t, ValidateROI(ROI{Buffer: b, X: 0, Y: 0, Width: 100, Height: 50}))
	require.NoError(t, ValidateROI(ROI{Buffer: b, X: 99, Y: 49, Width: 1, Height: 1}))

	tests := []struct {
		name string
		roi  ROI
	}{
		{"zero width", ROI{Buffer: b, Width: 0, Height: 1}},
		{"zero height", ROI{Buffer: b, Width: 1, Height: 0}},
		{"past right", ROI{Buffer: b, X: 90, Width: 11, Height: 1}},
		{"past bottom", ROI{Buffer: b, Y: 40, Width: 1, Height: 11}},
		{"overflow", ROI{Buffer: b, X: math.MaxUint32, Width: 2, Height: 1}},
		{"empty buffer", ROI{Buffer: New(0, 0, GrayScale), Width: 1, Height: 1}},
		{"bad channels", ROI{Buffer: New(10, 10, 2), Width: 1, Height: 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, ValidateROI(tc.roi), ErrInvalidParameter)
		})
	}
}

func TestValidateROIMultipleOperands(t *testing.T) {
	small := New(20, 20, GrayScale)
	large := New(100, 100, RGB)

	require.NoError(t, ValidateROI2(small, 0, 0, large, 80, 80, 20, 20))
	require.ErrorIs(t, ValidateROI2(small, 1, 0, large, 80, 80, 20, 20), ErrInvalidParameter)

	require.NoError(t, ValidateROI3(small, 0, 0, large, 10, 10, large, 50, 50, 10, 10))
	require.ErrorIs(t, ValidateROI3(small, 0, 0, large, 10, 10, large, 95, 50, 10, 10), ErrInvalidParameter)
}

func TestVerifyChannels(t *testing.T) {
	gray := New(4, 4, GrayScale)
	rgb := New(4, 4, RGB)

	require.NoError(t, VerifyGrayScale(gray, gray))
	require.ErrorIs(t, VerifyGrayScale(gray, rgb), ErrInvalidParameter)

	require.NoError(t, VerifyColored(rgb))
	require.ErrorIs(t, VerifyColored(rgb, rgb, gray), ErrInvalidParameter)
	require.ErrorIs(t, VerifyColored(nil), ErrInvalidParameter)
}
