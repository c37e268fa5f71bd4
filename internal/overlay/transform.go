package overlay

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/Martin-Chauke/Legend-Cut/internal/pose"
	"github.com/Martin-Chauke/Legend-Cut/internal/region"
)

// ErrDegenerateInput reports an asset or region too small to transform.
// Callers fall back to the unmodified asset.
var ErrDegenerateInput = errors.New("degenerate transform input")

const (
	minDimension       = 10
	maxYawDegrees      = 30.0
	rotationNoiseFloor = 1.0 // degrees; smaller angles are visual noise
)

// Transform resizes the asset to cover the hair region and rotates it to
// follow the head's yaw plus the user's rotation adjustment.
//
// The covering scale is the larger of the two axis ratios, so the asset
// always spans the target region; overflow on the opposite axis is clipped
// at composite time. Rotation expands the canvas to the rotated bounding box
// and fills the uncovered corners with transparent pixels.
func Transform(asset *image.NRGBA, headPose pose.HeadPose, hair region.Region, adj Adjustments) (*image.NRGBA, error) {
	if asset == nil {
		return nil, ErrDegenerateInput
	}

	w := asset.Bounds().Dx()
	h := asset.Bounds().Dy()
	if w <= 0 || h <= 0 || hair.Width <= 0 || hair.Height <= 0 {
		return nil, ErrDegenerateInput
	}

	baseScale := math.Max(
		float64(hair.Width)/float64(w),
		float64(hair.Height)/float64(h),
	)

	userScale := adj.Scale
	if userScale < 0 {
		userScale = 0
	}
	scale := baseScale * userScale

	newWidth := int(float64(w) * scale)
	if newWidth < minDimension {
		newWidth = minDimension
	}
	newHeight := int(float64(h) * scale)
	if newHeight < minDimension {
		newHeight = minDimension
	}

	resized := imaging.Resize(asset, newWidth, newHeight, imaging.Lanczos)

	angle := 0.0
	if headPose.Success {
		angle = clamp(headPose.Euler.Y, -maxYawDegrees, maxYawDegrees)
	}
	angle += adj.Rotation

	if math.Abs(angle) <= rotationNoiseFloor {
		return resized, nil
	}

	return imaging.Rotate(resized, angle, color.NRGBA{}), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
