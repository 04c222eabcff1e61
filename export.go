package notagen

import (
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/esimov/notagen/imop"
	"github.com/esimov/notagen/utils"
)

// ErrEmptySelection is returned when exporting a selection without icons.
var ErrEmptySelection = errors.New("cannot save an empty notation")

// darkSuffix is appended to the primary output name for the dark raster.
const darkSuffix = "_dark"

// Result holds the files written by an export.
type Result struct {
	Path     string
	DarkPath string
}

// Exporter renders a Selection into a single raster, one cell per icon.
type Exporter struct {
	Root       string // asset root the references are relative to
	OutDir     string
	BaseName   string
	Ext        string
	CellEdge   int
	DarkMarker string
	Dark       bool
	Op         string // compositing operator, source-over when empty
	Icons      *IconCache
	Logger     *slog.Logger
}

// NewExporter returns an exporter writing 80px cells to notation.png in outDir.
func NewExporter(root, outDir string, icons *IconCache) *Exporter {
	return &Exporter{
		Root:       root,
		OutDir:     outDir,
		BaseName:   "notation",
		Ext:        ".png",
		CellEdge:   80,
		DarkMarker: "_Dark",
		Icons:      icons,
	}
}

// Export writes the composited selection into the output directory without
// overwriting existing files. When Dark is set a second raster is rendered from
// the dark variants of the icons. The primary raster is either fully written or not at all.
func (e *Exporter) Export(sel Selection) (Result, error) {
	var res Result
	if sel.Empty() {
		return res, ErrEmptySelection
	}
	if !isSupportedExt(e.Ext) {
		return res, fmt.Errorf("%w: %q", ErrUnsupportedFormat, e.Ext)
	}
	if e.CellEdge <= 0 {
		return res, fmt.Errorf("invalid cell size: %d", e.CellEdge)
	}
	if err := os.MkdirAll(e.OutDir, 0755); err != nil {
		return res, fmt.Errorf("could not create the output directory: %w", err)
	}

	img := e.Compose(sel, e.primary)
	path, err := e.write(img, e.BaseName)
	if err != nil {
		return res, err
	}
	res.Path = path
	e.logger().Info("notation exported", slog.String("path", path),
		slog.Int("lines", len(sel)), slog.Int("icons", sel.Len()))

	if !e.Dark {
		return res, nil
	}
	dark := e.Compose(sel, e.dark)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	darkPath, err := e.write(dark, stem+darkSuffix)
	if err != nil {
		return res, fmt.Errorf("dark export: %w", err)
	}
	res.DarkPath = darkPath
	e.logger().Info("dark notation exported", slog.String("path", darkPath))

	return res, nil
}

// Encode renders the selection and encodes it to w. An empty format uses the exporter's extension.
func (e *Exporter) Encode(w io.Writer, sel Selection, format string) error {
	if sel.Empty() {
		return ErrEmptySelection
	}
	if format == "" {
		format = e.Ext
	}
	return encodeImg(w, format, e.Compose(sel, e.primary))
}

// Compose renders the selection on a transparent canvas. Every icon is resized
// to CellEdge×CellEdge and composited with Op at its (column, line) cell, row-major.
// resolve maps a reference to an icon path; an empty path or an unreadable icon leaves the cell transparent.
func (e *Exporter) Compose(sel Selection, resolve func(AssetRef) string) *image.NRGBA {
	edge := e.CellEdge
	canvas := image.NewNRGBA(image.Rect(0, 0, sel.MaxLineLen()*edge, len(sel)*edge))
	op := imop.InitOp()
	if e.Op != "" {
		op.Set(e.Op)
	}

	for row, line := range sel {
		for col, ref := range line {
			path := resolve(ref)
			if path == "" {
				continue
			}
			icon, err := e.Icons.Load(path, edge)
			if err != nil {
				e.logger().Debug("icon skipped", slog.String("path", path), slog.Any("error", err))
				continue
			}
			op.Draw(canvas, icon, image.Pt(col*edge, row*edge))
		}
	}
	return canvas
}

// DarkVariant returns the counterpart of an icon path with marker inserted before the extension.
func DarkVariant(path, marker string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + marker + ext
}

func (e *Exporter) primary(ref AssetRef) string {
	return ref.Path(e.Root)
}

func (e *Exporter) dark(ref AssetRef) string {
	p := DarkVariant(ref.Path(e.Root), e.DarkMarker)
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// write reserves the first free name among base, base_1, base_2... and
// atomically moves the encoded raster into it.
func (e *Exporter) write(img image.Image, base string) (string, error) {
	path, err := e.reserve(base)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(e.OutDir, "."+base+"-*.tmp")
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("could not create the destination file: %w", err)
	}
	cleanup := func() {
		os.Remove(tmp.Name())
		os.Remove(path)
	}

	if err := encodeImg(tmp, e.Ext, img); err != nil {
		tmp.Close()
		cleanup()
		return "", fmt.Errorf("could not encode the image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("could not write the image: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		cleanup()
		return "", fmt.Errorf("could not save the image: %w", err)
	}
	return path, nil
}

func (e *Exporter) reserve(base string) (string, error) {
	for i := 0; ; i++ {
		name := base + e.Ext
		if i > 0 {
			name = fmt.Sprintf("%s_%d%s", base, i, e.Ext)
		}
		path := filepath.Join(e.OutDir, name)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("could not create the destination file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", err
		}
		return path, nil
	}
}

func (e *Exporter) logger() *slog.Logger {
	if e.Logger == nil {
		return utils.DiscardLogger()
	}
	return e.Logger
}
