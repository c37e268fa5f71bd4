package region

import (
	"errors"

	"github.com/Martin-Chauke/Legend-Cut/internal/landmarks"
)

// ErrNoLandmarks reports that a region cannot be derived because no landmark
// mesh is available.
var ErrNoLandmarks = errors.New("no landmarks for region estimation")

// Region is an axis-aligned box in pixel coordinates, clamped to the frame.
type Region struct {
	X       int `json:"x"`
	Y       int `json:"y"`
	Width   int `json:"width"`
	Height  int `json:"height"`
	CenterX int `json:"center_x"`
	CenterY int `json:"center_y"`
}

const minDimension = 10

// Forehead derives the forehead box: temples give the horizontal extent, the
// vertical extent runs from 1.8x the forehead-to-brow gap above the forehead
// top down to the brow center.
func Forehead(set *landmarks.Set, width, height int) (Region, error) {
	if set == nil {
		return Region{}, ErrNoLandmarks
	}

	leftX, _ := set.Pixel(landmarks.LeftTemple, width, height)
	rightX, _ := set.Pixel(landmarks.RightTemple, width, height)
	_, browY := set.Pixel(landmarks.BrowCenter, width, height)
	_, topY := set.Pixel(landmarks.ForeheadTop, width, height)

	gap := browY - topY
	if gap < 0 {
		gap = -gap
	}
	foreheadHeight := int(gap * 1.8)

	x := int(leftX)
	y := int(topY) - foreheadHeight
	if y < 0 {
		y = 0
	}
	bottom := int(browY)

	w := int(rightX) - x
	if w < minDimension {
		w = minDimension
	}
	h := bottom - y
	if h < minDimension {
		h = minDimension
	}

	return Region{
		X:       x,
		Y:       y,
		Width:   w,
		Height:  h,
		CenterX: x + w/2,
		CenterY: y + h/2,
	}, nil
}

// HairRegion expands the forehead box outward for hair placement: width
// +80% shifted left by 40% of the forehead width, height +120% shifted up by
// 60% of the forehead height, clamped to the frame. Failure to compute the
// forehead propagates rather than guessing a placement.
func HairRegion(set *landmarks.Set, width, height int) (Region, error) {
	forehead, err := Forehead(set, width, height)
	if err != nil {
		return Region{}, err
	}

	x := forehead.X - int(float64(forehead.Width)*0.4)
	y := forehead.Y - int(float64(forehead.Height)*0.6)
	w := forehead.Width + int(float64(forehead.Width)*0.8)
	h := forehead.Height + int(float64(forehead.Height)*1.2)

	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x+w > width {
		w = width - x
	}
	if y+h > height {
		h = height - y
	}

	return Region{
		X:       x,
		Y:       y,
		Width:   w,
		Height:  h,
		CenterX: x + w/2,
		CenterY: y + h/2,
	}, nil
}
