package haircuts

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

var (
	// ErrNotFound reports that no asset bytes exist for the requested name
	// in any fallback category.
	ErrNotFound = errors.New("haircut not found")

	// ErrDuplicate reports an uploaded asset that perceptually matches an
	// existing one.
	ErrDuplicate = errors.New("duplicate haircut upload")
)

// Asset is a cached haircut bitmap, normalized to color+alpha with softened
// alpha edges. Cache entries are immutable; Clone before mutating.
type Asset struct {
	Image    *image.NRGBA
	Category string
	Name     string
}

// Clone returns a deep copy so per-request transforms never touch the shared
// cache entry.
func (a *Asset) Clone() *Asset {
	return &Asset{
		Image:    imaging.Clone(a.Image),
		Category: a.Category,
		Name:     a.Name,
	}
}
