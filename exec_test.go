package notagen

import (
	"bytes"
	"image"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExec_Notations(t *testing.T) {
	assert := assert.New(t)
	app := newTestApp(t, newFixture(t))

	var stderr bytes.Buffer
	op := &Ops{
		Notations: []string{"df1 b2", "  ", "heat, d1"},
		PipeName:  "-",
		Stderr:    &stderr,
	}
	results, err := op.Execute(app)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal("notation.png", filepath.Base(results[0].Path))
	assert.Equal("notation_1.png", filepath.Base(results[1].Path))
	assert.Contains(stderr.String(), "notation_1.png")

	img := readImage(t, results[1].Path)
	assert.Equal(image.Rect(0, 0, testEdge, 2*testEdge), img.Bounds())
}

func TestExec_SourceFile(t *testing.T) {
	cfg := newFixture(t)
	app := newTestApp(t, cfg)

	src := filepath.Join(cfg.Root, "combos.txt")
	writeFile(t, src, "df1\n\nb2 heat\nunknown\n")

	op := &Ops{
		Notations: []string{"ignored"},
		Source:    src,
		PipeName:  "-",
		Stderr:    &bytes.Buffer{},
	}
	results, err := op.Execute(app)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Contains(t, err.Error(), `"unknown"`)
	assert.Len(t, results, 2, "a failed notation does not stop the run")
}

func TestExec_Stdin(t *testing.T) {
	app := newTestApp(t, newFixture(t))

	op := &Ops{
		Source:   "-",
		PipeName: "-",
		Stdin:    strings.NewReader("df1\n"),
		Stderr:   &bytes.Buffer{},
	}
	results, err := op.Execute(app)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestExec_Pipe(t *testing.T) {
	app := newTestApp(t, newFixture(t))

	var stdout bytes.Buffer
	op := &Ops{
		Notations: []string{"df1 b2 heat"},
		Dest:      "-",
		PipeName:  "-",
		Stdout:    &stdout,
	}
	results, err := op.Execute(app)
	require.NoError(t, err)
	assert.Empty(t, results)

	img, format, err := image.Decode(&stdout)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 3*testEdge, img.Bounds().Dx())

	op.Notations = []string{"df1", "b2"}
	_, err = op.Execute(app)
	assert.Error(t, err, "only one raster can be streamed")
}

func TestExec_NothingToDo(t *testing.T) {
	app := newTestApp(t, newFixture(t))

	_, err := (&Ops{PipeName: "-"}).Execute(app)
	assert.Error(t, err)

	_, err = (&Ops{Source: filepath.Join(t.TempDir(), "missing.txt")}).Execute(app)
	assert.Error(t, err)
}
