package notagen

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
)

type iconKey struct {
	path string
	edge int
}

// IconCache keeps decoded icons scaled to a given edge length.
// Cached images are shared, callers must not modify them.
type IconCache struct {
	lru *lru.Cache[iconKey, *image.NRGBA]
}

// NewIconCache creates a cache holding at most size scaled icons.
func NewIconCache(size int) (*IconCache, error) {
	c, err := lru.New[iconKey, *image.NRGBA](size)
	if err != nil {
		return nil, fmt.Errorf("could not create the icon cache: %w", err)
	}
	return &IconCache{lru: c}, nil
}

// Load returns the icon at path resized to edge×edge with a Lanczos filter.
// An edge of zero keeps the original size. Failures are not cached.
func (c *IconCache) Load(path string, edge int) (*image.NRGBA, error) {
	key := iconKey{path: path, edge: edge}
	if img, ok := c.lru.Get(key); ok {
		return img, nil
	}

	img, err := decodeImg(path)
	if err != nil {
		return nil, err
	}
	if edge > 0 && (img.Bounds().Dx() != edge || img.Bounds().Dy() != edge) {
		img = imaging.Resize(img, edge, edge, imaging.Lanczos)
	}
	c.lru.Add(key, img)

	return img, nil
}

// Len returns the number of cached icons.
func (c *IconCache) Len() int {
	return c.lru.Len()
}

// Purge empties the cache.
func (c *IconCache) Purge() {
	c.lru.Purge()
}
