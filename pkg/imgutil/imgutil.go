package imgutil

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	_ "image/gif" // register GIF decoder
	_ "image/png" // register PNG decoder

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// ErrDecode reports image data that could not be decoded. Distinct from
// "no face found" so callers can surface it as a client error.
var ErrDecode = errors.New("undecodable image data")

const dataURIMarker = "base64,"

// DecodeBase64Frame decodes a base64-encoded still image, tolerating an
// optional data-URI prefix, into a canonical NRGBA bitmap.
func DecodeBase64Frame(data string) (*image.NRGBA, error) {
	if idx := strings.Index(data, dataURIMarker); idx >= 0 {
		data = data[idx+len(dataURIMarker):]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return imaging.Clone(img), nil
}

// EncodeJPEGDataURI re-encodes a frame as JPEG at the given quality and
// returns it as a data-URI base64 string.
func EncodeJPEGDataURI(img image.Image, quality int) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("failed to encode frame: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// EncodeJPEG encodes an image to JPEG bytes.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// FeatherAlpha softens the alpha channel of an NRGBA bitmap with a small
// Gaussian blur, leaving the color channels untouched. Softened edges avoid
// visible hard boundaries when the bitmap is composited.
func FeatherAlpha(img *image.NRGBA, sigma float64) *image.NRGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 || sigma <= 0 {
		return img
	}

	// Lift the alpha plane into a gray bitmap so the blur operates on it alone.
	alphaPlane := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := img.Pix[y*img.Stride+x*4+3]
			i := y*alphaPlane.Stride + x*4
			alphaPlane.Pix[i] = a
			alphaPlane.Pix[i+1] = a
			alphaPlane.Pix[i+2] = a
			alphaPlane.Pix[i+3] = 255
		}
	}

	blurred := imaging.Blur(alphaPlane, sigma)

	out := imaging.Clone(img)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Pix[y*out.Stride+x*4+3] = blurred.Pix[y*blurred.Stride+x*4]
		}
	}
	return out
}
