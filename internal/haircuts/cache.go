package haircuts

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/Martin-Chauke/Legend-Cut/pkg/imgutil"
)

// Sigma for the one-time alpha edge soften applied when an asset enters the
// cache.
const edgeSigma = 1.0

// Cache keeps decoded, normalized haircut bitmaps in memory keyed by
// category and filename. Normalization (NRGBA conversion plus alpha edge
// softening) runs once per entry at insertion; hits return deep copies of
// the stored bitmap. Two goroutines missing on the same key may both load
// from disk, but only the first insert wins and the loser's work is
// discarded.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Asset
	log     *logrus.Logger
}

func NewCache(log *logrus.Logger) *Cache {
	return &Cache{
		entries: make(map[string]*Asset),
		log:     log,
	}
}

// Load returns a private copy of the asset at path, decoding and normalizing
// it on first use.
func (c *Cache) Load(category, path string) (*Asset, error) {
	name := filepath.Base(path)
	key := category + "_" + name

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return entry.Clone(), nil
	}

	loaded, err := loadAsset(path)
	if err != nil {
		return nil, err
	}
	loaded.Category = category
	loaded.Name = name

	c.mu.Lock()
	if existing, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return existing.Clone(), nil
	}
	c.entries[key] = loaded
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"key":    key,
		"width":  loaded.Image.Bounds().Dx(),
		"height": loaded.Image.Bounds().Dy(),
	}).Debug("Cached haircut asset")
	return loaded.Clone(), nil
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func loadAsset(path string) (*Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open haircut: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode haircut %s: %w", path, err)
	}

	// Clone converts any source format to NRGBA. Fully opaque formats come
	// out with a constant 255 alpha channel.
	normalized := imaging.Clone(img)
	normalized = imgutil.FeatherAlpha(normalized, edgeSigma)
	return &Asset{Image: normalized}, nil
}
