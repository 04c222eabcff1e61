package notagen

import (
	"bytes"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/esimov/notagen/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImage_DecodeToNRGBA(t *testing.T) {
	rect := image.Rect(-1, -1, 15, 15)
	colors := palette.Plan9
	testCases := []struct {
		name string
		img  image.Image
	}{
		{
			name: "NRGBA",
			img:  makeNRGBAImage(rect, colors),
		},
		{
			name: "Gray",
			img:  makeGrayImage(rect, colors),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "icon.png")
			f, err := os.Create(path)
			require.NoError(t, err)
			require.NoError(t, png.Encode(f, tc.img))
			require.NoError(t, f.Close())

			got, err := decodeImg(path)
			require.NoError(t, err)
			assert.Equal(t, image.Pt(0, 0), got.Bounds().Min)
			assert.Equal(t, rect.Size(), got.Bounds().Size())

			r := tc.img.Bounds()
			for y := r.Min.Y; y < r.Max.Y; y++ {
				gotRow := readRow(got, y-r.Min.Y)
				wantRow := readRow(tc.img, y)
				if !compareBytes(gotRow, wantRow, 1) {
					t.Errorf("decoded row (y=%d): got %v want %v", y, gotRow, wantRow)
				}
			}
		})
	}
}

func TestImage_DecodeRejectsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "R1_DF1.png")
	require.NoError(t, os.WriteFile(text, []byte("definitely not a png"), 0644))

	_, err := decodeImg(text)
	assert.Error(t, err)

	_, err = decodeImg(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImage_Encode(t *testing.T) {
	img := makeNRGBAImage(image.Rect(0, 0, 4, 4), palette.WebSafe)

	for ext, format := range map[string]string{
		"":      "png",
		".PNG":  "png",
		".jpg":  "jpeg",
		".jpeg": "jpeg",
		".bmp":  "bmp",
	} {
		var buf bytes.Buffer
		require.NoError(t, encodeImg(&buf, ext, img), ext)
		_, got, err := image.Decode(&buf)
		require.NoError(t, err, ext)
		assert.Equal(t, format, got, ext)
		assert.True(t, ext == "" || isSupportedExt(ext), ext)
	}

	assert.ErrorIs(t, encodeImg(&bytes.Buffer{}, ".gif", img), ErrUnsupportedFormat)
	assert.False(t, isSupportedExt(".gif"))
}

func makeNRGBAImage(rect image.Rectangle, colors []color.Color) *image.NRGBA {
	img := image.NewNRGBA(rect)
	fillDrawImage(img, colors)
	return img
}

func makeGrayImage(rect image.Rectangle, colors []color.Color) *image.Gray {
	img := image.NewGray(rect)
	fillDrawImage(img, colors)
	return img
}

func fillDrawImage(img draw.Image, colors []color.Color) {
	colorsNRGBA := make([]color.NRGBA, len(colors))
	for i, c := range colors {
		nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
		nrgba.A = uint8(i % 256)
		colorsNRGBA[i] = nrgba
	}
	rect := img.Bounds()
	i := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.Set(x, y, colorsNRGBA[i%len(colorsNRGBA)])
			i++
		}
	}
}

func readRow(img image.Image, y int) []uint8 {
	row := make([]byte, img.Bounds().Dx()*4)
	i := 0
	for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
		c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
		row[i+0] = c.R
		row[i+1] = c.G
		row[i+2] = c.B
		row[i+3] = c.A
		i += 4
	}
	return row
}

func compareBytes(a, b []uint8, delta int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if utils.Abs(int(a[i])-int(b[i])) > delta {
			return false
		}
	}
	return true
}
