package notagen

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/esimov/notagen/config"
	"github.com/stretchr/testify/require"
)

const testEdge = 8

const testMoves = `Move;Name;Image
DF1;Jab;R1_DF1.png
B2;Back Two;R2_B2.png
D1;Down One;R5_D1.png
HEAT;Heat Burst;R5_HEAT.png
GHOST;;R7_GHOST.png
`

const testCharacters = `Character;Moves
Jin;HEAT, DF1
Kazuya;B2
`

var (
	red    = color.NRGBA{R: 255, A: 255}
	green  = color.NRGBA{G: 255, A: 255}
	blue   = color.NRGBA{B: 255, A: 255}
	yellow = color.NRGBA{R: 255, G: 255, A: 255}
	white  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black  = color.NRGBA{A: 255}
)

// fixtureIcons maps the icon files of the default skin to their fill color.
var fixtureIcons = map[string]color.NRGBA{
	"R1_DF1.png":      red,
	"R1_DF1_Dark.png": black,
	"R2_B2.png":       green,
	"R5_D1.png":       blue,
	"R5_HEAT.png":     yellow,
	"R9_HIDDEN.png":   white,
}

// newFixture lays out a complete data root in a temporary directory:
// the two tables, the default and the xbox skins, one portrait and a skins.ini file.
func newFixture(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "data", "MoveDictModified.csv"), testMoves)
	writeFile(t, filepath.Join(root, "data", "CharMoves.csv"), testCharacters)
	writeFile(t, filepath.Join(root, "skins.ini"), "[skins]\nT8 Default = assets\nXbox = assets_xbox\n")

	for name, c := range fixtureIcons {
		writeIcon(t, filepath.Join(root, "assets", name), c, testEdge)
		if !strings.Contains(name, "_Dark") {
			writeIcon(t, filepath.Join(root, "assets_xbox", name), white, testEdge)
		}
	}
	writeFile(t, filepath.Join(root, "assets", "readme.txt"), "not an icon")
	writeIcon(t, filepath.Join(root, "char", "Jin.png"), red, testEdge)

	cfg := config.Default()
	cfg.Root = root
	cfg.CellEdge = testEdge
	cfg.ParseDelay = 0
	cfg.RelayoutDelay = 0
	skins, err := config.LoadSkins(cfg.Path(cfg.SkinsFile))
	require.NoError(t, err)
	cfg.SetSkins(skins)

	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()

	catalog, err := LoadCatalog(cfg.MovesPath(), cfg.CharactersPath())
	require.NoError(t, err)
	app, err := NewApp(cfg, catalog, nil)
	require.NoError(t, err)
	t.Cleanup(app.Close)

	return app
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func writeIcon(t *testing.T, path string, c color.NRGBA, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func readImage(t *testing.T, path string) *image.NRGBA {
	t.Helper()
	img, err := decodeImg(path)
	require.NoError(t, err)
	return img
}
