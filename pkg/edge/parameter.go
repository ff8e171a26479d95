package edge

import (
	"fmt"
	"strings"

	"pixeledge/pkg/pixel"
	"pixeledge/pkg/profile"
)

// DefaultThreshold is the intensity a sample must reach to count as
// foreground when Parameter.Threshold is zero.
const DefaultThreshold uint8 = 64

// Scan directions, re-exported from the profile package.
const (
	LeftToRight = profile.LeftToRight
	TopToBottom = profile.TopToBottom
)

// Policy decides how many transitions of each kind a scanline contributes.
type Policy int

const (
	// FirstEdge keeps the first positive and the first negative transition
	// of every scanline in traversal order. A first transition too close to
	// the scanline ends is dropped and no later one replaces it.
	FirstEdge Policy = iota
	// AllEdges keeps every transition.
	AllEdges
)

func (p Policy) String() string {
	switch p {
	case FirstEdge:
		return "first"
	case AllEdges:
		return "all"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts "first" or "all" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first", "":
		return FirstEdge, nil
	case "all":
		return AllEdges, nil
	default:
		return 0, fmt.Errorf("%w: unknown edge policy %q", pixel.ErrInvalidParameter, s)
	}
}

// Parameter configures a single detection call.
type Parameter struct {
	Direction profile.Direction
	// Threshold is the detection level; zero selects DefaultThreshold.
	Threshold uint8
	Policy    Policy
}

// NewParameter returns a parameter for the given direction with the
// default threshold and policy.
func NewParameter(dir profile.Direction) Parameter {
	return Parameter{Direction: dir}
}

func (p Parameter) threshold() uint8 {
	if p.Threshold == 0 {
		return DefaultThreshold
	}
	return p.Threshold
}

func (p Parameter) validate() error {
	if p.Policy != FirstEdge && p.Policy != AllEdges {
		return fmt.Errorf("%w: unknown edge policy %d", pixel.ErrInvalidParameter, int(p.Policy))
	}
	return nil
}
