package overlay_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Martin-Chauke/Legend-Cut/internal/overlay"
	"github.com/Martin-Chauke/Legend-Cut/internal/region"
)

func grayFrame(w, h int, value uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = value
		img.Pix[i+1] = value
		img.Pix[i+2] = value
		img.Pix[i+3] = 255
	}
	return img
}

func whiteBitmap(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
		img.Pix[i+1] = 255
		img.Pix[i+2] = 255
		img.Pix[i+3] = 255
	}
	return img
}

func TestComposite_BlendsOpaqueBitmap(t *testing.T) {
	frame := grayFrame(100, 100, 100)
	bitmap := whiteBitmap(10, 10)
	hair := region.Region{X: 20, Y: 20, Width: 10, Height: 10}

	out := overlay.Composite(frame, bitmap, hair, overlay.DefaultAdjustments(), false)
	require.NotNil(t, out)
	require.NotSame(t, frame, out, "compositing must not mutate the input frame")

	// A pixel under the opaque white bitmap should end up brighter than
	// the background, even after the luminance match pulls it down.
	i := out.PixOffset(25, 25)
	assert.Greater(t, out.Pix[i], uint8(100))

	// Pixels outside the placement rect are untouched.
	j := out.PixOffset(80, 80)
	assert.Equal(t, uint8(100), out.Pix[j])

	// Original frame unchanged.
	k := frame.PixOffset(25, 25)
	assert.Equal(t, uint8(100), frame.Pix[k])
}

func TestComposite_NoOverlapReturnsFrameUnchanged(t *testing.T) {
	frame := grayFrame(100, 100, 100)
	bitmap := whiteBitmap(10, 10)
	hair := region.Region{X: 500, Y: 500, Width: 10, Height: 10}

	out := overlay.Composite(frame, bitmap, hair, overlay.DefaultAdjustments(), false)

	assert.Same(t, frame, out, "zero overlap should pass the frame through")
}

func TestComposite_OffsetMovesPlacement(t *testing.T) {
	frame := grayFrame(100, 100, 100)
	bitmap := whiteBitmap(10, 10)
	hair := region.Region{X: 20, Y: 20, Width: 10, Height: 10}

	adj := overlay.DefaultAdjustments()
	adj.X = 40
	adj.Y = 40

	out := overlay.Composite(frame, bitmap, hair, adj, false)
	require.NotSame(t, frame, out)

	// Original placement is now untouched, shifted placement is blended.
	assert.Equal(t, uint8(100), out.Pix[out.PixOffset(25, 25)])
	assert.Greater(t, out.Pix[out.PixOffset(65, 65)], uint8(100))
}

func TestComposite_TransparentBitmapLeavesPixels(t *testing.T) {
	frame := grayFrame(100, 100, 100)
	bitmap := image.NewNRGBA(image.Rect(0, 0, 10, 10)) // alpha all zero
	hair := region.Region{X: 20, Y: 20, Width: 10, Height: 10}

	out := overlay.Composite(frame, bitmap, hair, overlay.DefaultAdjustments(), false)

	assert.Equal(t, uint8(100), out.Pix[out.PixOffset(25, 25)], "fully transparent bitmap should change nothing")
}

func TestComposite_PartialOverlapClips(t *testing.T) {
	frame := grayFrame(100, 100, 100)
	bitmap := whiteBitmap(20, 20)
	hair := region.Region{X: -10, Y: -10, Width: 20, Height: 20}

	out := overlay.Composite(frame, bitmap, hair, overlay.DefaultAdjustments(), false)
	require.NotSame(t, frame, out)

	// Only the in-frame quarter of the bitmap lands.
	assert.Greater(t, out.Pix[out.PixOffset(5, 5)], uint8(100))
	assert.Equal(t, uint8(100), out.Pix[out.PixOffset(15, 15)])
}

func TestComposite_NilInputs(t *testing.T) {
	frame := grayFrame(10, 10, 100)
	hair := region.Region{X: 0, Y: 0, Width: 10, Height: 10}

	assert.Nil(t, overlay.Composite(nil, whiteBitmap(5, 5), hair, overlay.DefaultAdjustments(), false))
	assert.Same(t, frame, overlay.Composite(frame, nil, hair, overlay.DefaultAdjustments(), false))
}
