package haircuts_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Martin-Chauke/Legend-Cut/internal/haircuts"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), A: 255})
		}
	}
	return img
}

func checkerImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if (x/8+y/8)%2 == 0 {
				v = 255
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeAsset(t *testing.T, dir, category, name string, img image.Image) {
	assetDir := filepath.Join(dir, category)
	require.NoError(t, os.MkdirAll(assetDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(assetDir, name), pngBytes(t, img), 0o644))
}

func TestStore_Resolve(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "male", "fade.png", gradientImage(32, 32))
	writeAsset(t, dir, "custom", "uploaded.png", checkerImage(32, 32))

	store := haircuts.NewStore(dir, testLogger())

	t.Run("direct category hit", func(t *testing.T) {
		path, category, err := store.Resolve("male", "fade.png")
		require.NoError(t, err)
		assert.Equal(t, "male", category)
		assert.Equal(t, filepath.Join(dir, "male", "fade.png"), path)
	})

	t.Run("falls back to custom", func(t *testing.T) {
		path, category, err := store.Resolve("female", "uploaded.png")
		require.NoError(t, err)
		assert.Equal(t, "custom", category)
		assert.Equal(t, filepath.Join(dir, "custom", "uploaded.png"), path)
	})

	t.Run("missing asset", func(t *testing.T) {
		_, _, err := store.Resolve("male", "nope.png")
		assert.ErrorIs(t, err, haircuts.ErrNotFound)
	})

	t.Run("rejects path traversal", func(t *testing.T) {
		_, _, err := store.Resolve("male", "../custom/uploaded.png")
		assert.ErrorIs(t, err, haircuts.ErrNotFound)

		_, _, err = store.Resolve("..", "fade.png")
		assert.ErrorIs(t, err, haircuts.ErrNotFound)
	})
}

func TestStore_List(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "male", "fade.png", gradientImage(16, 16))
	writeAsset(t, dir, "male", "afro.png", checkerImage(16, 16))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "male", "notes.txt"), []byte("x"), 0o644))

	store := haircuts.NewStore(dir, testLogger())

	names, err := store.List("male")
	require.NoError(t, err)
	assert.Equal(t, []string{"afro.png", "fade.png"}, names, "listing should be sorted and image-only")

	_, err = store.List("female")
	assert.ErrorIs(t, err, haircuts.ErrNotFound, "a category without a directory is unknown")

	empty, err := store.List(haircuts.CustomCategory)
	require.NoError(t, err)
	assert.Empty(t, empty, "custom lists as empty before the first upload")

	_, err = store.List("..")
	assert.ErrorIs(t, err, haircuts.ErrNotFound)
}

func TestStore_SaveUpload(t *testing.T) {
	dir := t.TempDir()
	store := haircuts.NewStore(dir, testLogger())

	filename, err := store.SaveUpload(pngBytes(t, gradientImage(64, 64)))
	require.NoError(t, err)
	assert.NotEmpty(t, filename)
	assert.Equal(t, ".png", filepath.Ext(filename))

	saved := filepath.Join(dir, "custom", filename)
	_, statErr := os.Stat(saved)
	assert.NoError(t, statErr, "upload should land in the custom category")

	names, err := store.List(haircuts.CustomCategory)
	require.NoError(t, err)
	assert.Contains(t, names, filename)
}

func TestStore_SaveUpload_Duplicate(t *testing.T) {
	dir := t.TempDir()
	store := haircuts.NewStore(dir, testLogger())

	data := pngBytes(t, gradientImage(64, 64))

	first, err := store.SaveUpload(data)
	require.NoError(t, err)

	second, err := store.SaveUpload(data)
	assert.ErrorIs(t, err, haircuts.ErrDuplicate)
	assert.Equal(t, first, second, "duplicate upload should report the existing filename")

	names, err := store.List(haircuts.CustomCategory)
	require.NoError(t, err)
	assert.Len(t, names, 1, "duplicate must not be written")
}

func TestStore_SaveUpload_DistinctImages(t *testing.T) {
	dir := t.TempDir()
	store := haircuts.NewStore(dir, testLogger())

	_, err := store.SaveUpload(pngBytes(t, gradientImage(64, 64)))
	require.NoError(t, err)

	_, err = store.SaveUpload(pngBytes(t, checkerImage(64, 64)))
	require.NoError(t, err, "structurally different image is not a duplicate")

	names, err := store.List(haircuts.CustomCategory)
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestStore_SaveUpload_RejectsGarbage(t *testing.T) {
	store := haircuts.NewStore(t.TempDir(), testLogger())

	_, err := store.SaveUpload([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestStore_SaveUpload_JPEGKeepsExtension(t *testing.T) {
	dir := t.TempDir()
	store := haircuts.NewStore(dir, testLogger())

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, gradientImage(64, 64), &jpeg.Options{Quality: 90}))

	filename, err := store.SaveUpload(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, ".jpg", filepath.Ext(filename))
}

func TestStore_Thumbnail(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "male", "fade.png", gradientImage(300, 200))

	store := haircuts.NewStore(dir, testLogger())

	data, err := store.Thumbnail("male", "fade.png")
	require.NoError(t, err)

	thumb, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err, "thumbnail should be a JPEG")
	assert.LessOrEqual(t, thumb.Bounds().Dx(), 128)
	assert.LessOrEqual(t, thumb.Bounds().Dy(), 128)

	_, err = store.Thumbnail("male", "nope.png")
	assert.ErrorIs(t, err, haircuts.ErrNotFound)
}
