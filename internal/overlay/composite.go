package overlay

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/Martin-Chauke/Legend-Cut/internal/region"
	"github.com/Martin-Chauke/Legend-Cut/pkg/imgutil"
)

const featherSigma = 1.0

// Composite alpha-blends the transformed bitmap onto the frame at the hair
// region origin plus the user's pixel offset, then applies a luminance match
// between the pre-blend background and the blended result.
//
// When the placed bitmap does not overlap the frame at all, the input frame
// is returned unchanged. The input frame is never mutated otherwise; a
// blended copy is returned.
func Composite(frame *image.NRGBA, bitmap *image.NRGBA, hair region.Region, adj Adjustments, feather bool) *image.NRGBA {
	if frame == nil {
		return frame
	}
	if bitmap == nil {
		return frame
	}

	frameW := frame.Bounds().Dx()
	frameH := frame.Bounds().Dy()
	w := bitmap.Bounds().Dx()
	h := bitmap.Bounds().Dy()

	x := hair.X + adj.X
	y := hair.Y + adj.Y

	// Overlap between the placed bitmap and the frame.
	x1 := max(0, x)
	y1 := max(0, y)
	x2 := min(frameW, x+w)
	y2 := min(frameH, y+h)
	if x2 <= x1 || y2 <= y1 {
		return frame
	}

	if feather {
		bitmap = imgutil.FeatherAlpha(bitmap, featherSigma)
	}

	result := imaging.Clone(frame)

	// Per-pixel blend: output = color*alpha + background*(1-alpha).
	for fy := y1; fy < y2; fy++ {
		by := fy - y
		for fx := x1; fx < x2; fx++ {
			bx := fx - x

			bi := by*bitmap.Stride + bx*4
			a := float64(bitmap.Pix[bi+3]) / 255.0
			if a == 0 {
				continue
			}

			ri := fy*result.Stride + fx*4
			for c := 0; c < 3; c++ {
				src := float64(bitmap.Pix[bi+c])
				dst := float64(result.Pix[ri+c])
				result.Pix[ri+c] = uint8(src*a + dst*(1-a) + 0.5)
			}
		}
	}

	colorMatch(result, frame, x1, y1, x2, y2)

	return result
}

// colorMatch scales the blended region so its mean luminance approaches the
// pre-blend background's, combined as 70% scaled + 30% unscaled. This softens
// systematic brightness mismatch between the asset and the live scene.
func colorMatch(result, original *image.NRGBA, x1, y1, x2, y2 int) {
	backgroundLuma := meanLuma(original, x1, y1, x2, y2)
	blendedLuma := meanLuma(result, x1, y1, x2, y2)
	if backgroundLuma <= 0 || blendedLuma <= 0 {
		return
	}

	ratio := backgroundLuma / blendedLuma
	factor := ratio*0.7 + 0.3

	for fy := y1; fy < y2; fy++ {
		for fx := x1; fx < x2; fx++ {
			i := fy*result.Stride + fx*4
			for c := 0; c < 3; c++ {
				v := float64(result.Pix[i+c]) * factor
				if v > 255 {
					v = 255
				}
				result.Pix[i+c] = uint8(v + 0.5)
			}
		}
	}
}

// meanLuma returns the mean Rec.601 luminance of a pixel rectangle.
func meanLuma(img *image.NRGBA, x1, y1, x2, y2 int) float64 {
	if x2 <= x1 || y2 <= y1 {
		return 0
	}

	var sum float64
	for fy := y1; fy < y2; fy++ {
		for fx := x1; fx < x2; fx++ {
			i := fy*img.Stride + fx*4
			r := float64(img.Pix[i])
			g := float64(img.Pix[i+1])
			b := float64(img.Pix[i+2])
			sum += 0.299*r + 0.587*g + 0.114*b
		}
	}
	return sum / float64((x2-x1)*(y2-y1))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
