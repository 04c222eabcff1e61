package notagen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIconCache_LoadResizes(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "R1_DF1.png")
	writeIcon(t, path, red, 16)

	c, err := NewIconCache(4)
	require.NoError(t, err)

	img, err := c.Load(path, 8)
	require.NoError(t, err)
	assert.Equal(8, img.Bounds().Dx())
	assert.Equal(8, img.Bounds().Dy())

	again, err := c.Load(path, 8)
	require.NoError(t, err)
	assert.Same(img, again)

	orig, err := c.Load(path, 0)
	require.NoError(t, err)
	assert.Equal(16, orig.Bounds().Dx())
	assert.Equal(2, c.Len())

	c.Purge()
	assert.Equal(0, c.Len())
}

func TestIconCache_FailuresAreNotCached(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "R1_DF1.png")

	c, err := NewIconCache(4)
	require.NoError(t, err)

	_, err = c.Load(path, 8)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 0, c.Len())

	writeIcon(t, path, red, 8)
	img, err := c.Load(path, 8)
	require.NoError(t, err)
	assert.Equal(t, red, img.NRGBAAt(0, 0))
}

func TestIconCache_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "R1_DF1.png")
	writeFile(t, path, "plain text")

	c, err := NewIconCache(4)
	require.NoError(t, err)
	_, err = c.Load(path, 8)
	assert.Error(t, err)
}

func TestIconCache_InvalidSize(t *testing.T) {
	_, err := NewIconCache(0)
	assert.Error(t, err)
}
