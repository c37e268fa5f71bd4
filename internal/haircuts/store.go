package haircuts

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/sirupsen/logrus"
)

const (
	// CustomCategory holds user uploads and doubles as the resolution
	// fallback for every other category.
	CustomCategory = "custom"

	thumbnailSize = 128

	// Hamming distance at or below which two perception hashes are
	// treated as the same image.
	duplicateDistance = 2
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// Store resolves and lists haircut assets on the local filesystem. Layout is
// one directory per category under the assets root, with uploads landing in
// the custom category.
type Store struct {
	dir string
	log *logrus.Logger
}

func NewStore(dir string, log *logrus.Logger) *Store {
	return &Store{dir: dir, log: log}
}

// Resolve maps a requested category and name to an asset path. Missing names
// fall back to the custom category, first with the name as given and then
// with just its base component, so uploads remain reachable regardless of
// the gender the client sends. Returns the category the asset was actually
// found under.
func (s *Store) Resolve(category, name string) (string, string, error) {
	if !validName(name) || !validName(category) {
		return "", "", fmt.Errorf("%w: invalid name %q", ErrNotFound, name)
	}

	candidates := []struct {
		category string
		name     string
	}{
		{category, name},
		{CustomCategory, name},
		{CustomCategory, filepath.Base(name)},
	}
	for _, c := range candidates {
		path := filepath.Join(s.dir, c.category, c.name)
		if fileExists(path) {
			return path, c.category, nil
		}
	}
	return "", "", fmt.Errorf("%w: %s/%s", ErrNotFound, category, name)
}

// List returns the image filenames in a category, sorted. A category with no
// directory on disk is unknown and reports ErrNotFound; only the custom
// category lists as empty before its first upload creates it.
func (s *Store) List(category string) ([]string, error) {
	if !validName(category) {
		return nil, fmt.Errorf("%w: invalid category %q", ErrNotFound, category)
	}

	entries, err := os.ReadDir(filepath.Join(s.dir, category))
	if os.IsNotExist(err) {
		if category == CustomCategory {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: unknown category %q", ErrNotFound, category)
	}
	if err != nil {
		return nil, fmt.Errorf("list haircuts: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// SaveUpload stores raw uploaded image bytes under the custom category and
// returns the generated filename. JPEG uploads have their EXIF orientation
// baked into the pixels before saving. Perceptual duplicates of an existing
// upload return the existing filename with ErrDuplicate.
func (s *Store) SaveUpload(data []byte) (string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode upload: %w", err)
	}

	if dup, err := s.findDuplicate(img); err != nil {
		s.log.WithError(err).Warn("Duplicate scan failed, saving anyway")
	} else if dup != "" {
		return dup, ErrDuplicate
	}

	dir := filepath.Join(s.dir, CustomCategory)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	ext := "." + format
	if format == "jpeg" {
		ext = ".jpg"
	}
	filename := uuid.New().String() + ext
	path := filepath.Join(dir, filename)

	if format == "jpeg" {
		if oriented := applyOrientation(data, img); oriented != img {
			var buf bytes.Buffer
			if err := jpeg.Encode(&buf, oriented, &jpeg.Options{Quality: 95}); err != nil {
				return "", fmt.Errorf("re-encode upload: %w", err)
			}
			data = buf.Bytes()
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	s.log.WithFields(logrus.Fields{"filename": filename, "format": format}).Info("Saved haircut upload")
	return filename, nil
}

// Thumbnail renders a small JPEG preview of an asset for the catalog UI.
func (s *Store) Thumbnail(category, name string) ([]byte, error) {
	path, _, err := s.Resolve(category, name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open haircut: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode haircut: %w", err)
	}

	thumb := resize.Thumbnail(thumbnailSize, thumbnailSize, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// findDuplicate compares a candidate against every stored upload by
// perception hash.
func (s *Store) findDuplicate(img image.Image) (string, error) {
	target, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", fmt.Errorf("hash upload: %w", err)
	}

	names, err := s.List(CustomCategory)
	if err != nil {
		return "", err
	}
	for _, name := range names {
		existing, err := s.hashFile(filepath.Join(s.dir, CustomCategory, name))
		if err != nil {
			s.log.WithError(err).WithField("filename", name).Warn("Skipping unreadable upload during duplicate scan")
			continue
		}
		dist, err := target.Distance(existing)
		if err != nil {
			continue
		}
		if dist <= duplicateDistance {
			return name, nil
		}
	}
	return "", nil
}

func (s *Store) hashFile(path string) (*goimagehash.ImageHash, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return goimagehash.PerceptionHash(img)
}

// applyOrientation rotates or flips a decoded JPEG according to its EXIF
// orientation tag. Returns the input unchanged when no correction applies.
func applyOrientation(data []byte, img image.Image) image.Image {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return img
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return img
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return img
	}

	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}

// validName rejects path components that could escape the assets root.
func validName(name string) bool {
	if name == "" || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsAny(name, `\:`) && !strings.HasPrefix(name, "/")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
