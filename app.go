package notagen

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/esimov/notagen/config"
	"github.com/esimov/notagen/utils"
)

// noCharacter is the character choice which hides the character sub-grid.
const noCharacter = "None"

var (
	// ErrUnknownSkin is returned when switching to a skin which is not configured.
	ErrUnknownSkin = errors.New("unknown skin")
	// ErrUnknownCharacter is returned when selecting a character missing from the catalog.
	ErrUnknownCharacter = errors.New("unknown character")
	// ErrUnknownHandle is returned when activating a cell which is not on the palette.
	ErrUnknownHandle = errors.New("unknown palette cell")
	// ErrExportInProgress is returned when an export is requested while another one is running.
	ErrExportInProgress = errors.New("export already in progress")
)

// App holds the whole editing session: the active skin and character, the
// current selection and the palette laid out for the current width.
// Every mutation goes through the same lock, the debounced parse and relayout
// tasks included, so the observers always see a consistent state.
type App struct {
	mu sync.Mutex

	cfg     *config.Config
	catalog *Catalog
	rules   Rules
	skins   []config.Skin

	skin      config.Skin
	character string
	listing   []string
	selection Selection
	layout    *Layout
	width     int
	edge      int
	dark      bool

	exporting bool
	deferred  bool

	parse    *utils.Debouncer
	relayout *utils.Debouncer

	icons    *IconCache
	exporter *Exporter
	logger   *slog.Logger

	// OnSelection is called with a copy of the selection every time it changes.
	OnSelection func(Selection)
	// OnPalette is called with a copy of the palette every time it is rebuilt or rescaled.
	OnPalette func(*Layout)
}

// NewApp creates a session on the configured default skin. A nil logger discards every record.
func NewApp(cfg *config.Config, catalog *Catalog, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	skins := cfg.Skins()
	if len(skins) == 0 {
		skins = config.DefaultSkins
	}

	icons, err := NewIconCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		catalog: catalog,
		rules: Rules{
			Ext:          cfg.IconExt,
			DarkMarker:   cfg.DarkMarker,
			ExcludedTags: cfg.ExcludedTags,
			Threshold:    cfg.TailThreshold,
			EarlyColumns: cfg.EarlyColumns,
			TailColumns:  cfg.TailColumns,
		},
		skins:    append([]config.Skin(nil), skins...),
		edge:     cfg.IconMax,
		dark:     cfg.IncludeDark,
		parse:    utils.NewDebouncer(cfg.ParseDelay),
		relayout: utils.NewDebouncer(cfg.RelayoutDelay),
		icons:    icons,
		logger:   logger,
	}
	a.exporter = &Exporter{
		Root:       cfg.Root,
		OutDir:     cfg.Path(cfg.OutputDir),
		BaseName:   cfg.OutputName,
		Ext:        cfg.OutputExt,
		CellEdge:   cfg.CellEdge,
		DarkMarker: cfg.DarkMarker,
		Op:         cfg.CompositeOp,
		Icons:      icons,
		Logger:     logger,
	}

	skin, ok := a.findSkin(cfg.DefaultSkin)
	if !ok {
		skin = a.skins[0]
		logger.Warn("default skin not found, using the first one",
			slog.String("skin", cfg.DefaultSkin), slog.String("fallback", skin.Name))
	}
	if err := a.loadSkin(skin); err != nil {
		return nil, err
	}
	if n := catalog.Skipped(); n > 0 {
		logger.Debug("malformed catalog rows skipped", slog.Int("rows", n))
	}
	logger.Info("session ready",
		slog.String("skin", skin.Name), slog.Int("moves", catalog.Len()), slog.Int("icons", len(a.layout.Cells)))

	return a, nil
}

// Parse schedules the notation to be parsed once the input settles.
// A newer call replaces a parse which has not run yet.
func (a *App) Parse(text string) {
	a.parse.Submit(func() { a.parseNow(text) })
}

// ParseNow parses the notation immediately, dropping any scheduled parse.
func (a *App) ParseNow(text string) {
	a.parse.Cancel()
	a.parseNow(text)
}

// parseNow replaces the selection with the parsed notation. It runs as the
// scheduled parse too, so it must not touch the parse debouncer.
func (a *App) parseNow(text string) {
	a.mu.Lock()
	sel := Parse(a.catalog, text, a.skin.Folder)
	if sel.Equal(a.selection) {
		a.mu.Unlock()
		return
	}
	a.selection = sel
	out := sel.Clone()
	a.mu.Unlock()

	a.logger.Debug("notation parsed", slog.Int("lines", len(out)), slog.Int("icons", out.Len()))
	a.notifySelection(out)
}

// ToggleIcon appends the icon to the last line of the selection.
// A parse still waiting is applied first, so the icon lands after the typed notation.
func (a *App) ToggleIcon(ref AssetRef) {
	a.parse.Flush()

	a.mu.Lock()
	a.selection = a.selection.Append(ref)
	out := a.selection.Clone()
	a.mu.Unlock()

	a.notifySelection(out)
}

// Activate appends the icon of a palette cell to the selection.
func (a *App) Activate(h Handle) error {
	a.mu.Lock()
	ref, ok := a.layout.Ref(h)
	a.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	a.ToggleIcon(ref)
	return nil
}

// RemoveLast drops the last selected icon.
func (a *App) RemoveLast() {
	a.parse.Flush()

	a.mu.Lock()
	if a.selection.Empty() {
		a.mu.Unlock()
		return
	}
	a.selection = a.selection.RemoveLast()
	out := a.selection.Clone()
	a.mu.Unlock()

	a.notifySelection(out)
}

// ClearAll empties the selection and drops any scheduled parse.
func (a *App) ClearAll() {
	a.parse.Cancel()

	a.mu.Lock()
	a.selection = nil
	a.mu.Unlock()

	a.notifySelection(nil)
}

// Export writes the current selection to the output directory.
// Relayouts requested while the export runs are applied once it finishes.
func (a *App) Export() (Result, error) {
	a.parse.Flush()

	a.mu.Lock()
	if a.exporting {
		a.mu.Unlock()
		return Result{}, ErrExportInProgress
	}
	sel := a.selection.Clone()
	ex := *a.exporter
	ex.Dark = a.dark
	a.exporting = true
	a.mu.Unlock()

	res, err := ex.Export(sel)

	a.mu.Lock()
	a.exporting = false
	deferred := a.deferred
	a.deferred = false
	a.mu.Unlock()

	if deferred {
		a.relayout.Submit(a.relayoutNow)
	}
	if err != nil && !errors.Is(err, ErrEmptySelection) {
		a.logger.Error("export failed", slog.Any("error", err))
	}
	return res, err
}

// Encode renders the current selection to w, an empty format using the configured extension.
func (a *App) Encode(w io.Writer, format string) error {
	a.parse.Flush()

	a.mu.Lock()
	sel := a.selection.Clone()
	ex := *a.exporter
	a.mu.Unlock()

	return ex.Encode(w, sel, format)
}

// SwitchSkin moves the palette and the selection to another skin.
// The selection keeps its shape, only the asset folder of its icons changes.
func (a *App) SwitchSkin(name string) error {
	a.mu.Lock()
	skin, ok := a.findSkin(name)
	if !ok {
		a.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownSkin, name)
	}
	if skin == a.skin {
		a.mu.Unlock()
		return nil
	}
	from := a.skin.Folder
	if err := a.loadSkin(skin); err != nil {
		a.mu.Unlock()
		return err
	}
	a.selection = a.selection.Remap(from, skin.Folder)
	sel, layout := a.selection.Clone(), a.layout.Clone()
	a.mu.Unlock()

	a.logger.Info("skin switched", slog.String("skin", skin.Name))
	a.notifySelection(sel)
	a.notifyPalette(layout)
	return nil
}

// SelectCharacter shows the moves of a character below the palette.
// An empty name or "None" hides the character grid.
func (a *App) SelectCharacter(name string) error {
	a.mu.Lock()
	if name == "" || strings.EqualFold(name, noCharacter) {
		a.character = ""
		a.layout.ClearCharacter()
	} else {
		moves, ok := a.catalog.MovesForCharacter(name)
		if !ok {
			a.mu.Unlock()
			return fmt.Errorf("%w: %q", ErrUnknownCharacter, name)
		}
		a.character = name
		a.layout.SetCharacter(a.listing, moves, a.rules, a.catalog)
	}
	a.applyEdge()
	layout := a.layout.Clone()
	a.mu.Unlock()

	a.notifyPalette(layout)
	return nil
}

// Resize schedules the icon edge to be recomputed for a new palette width.
func (a *App) Resize(width int) {
	a.mu.Lock()
	a.width = width
	a.mu.Unlock()

	a.relayout.Submit(a.relayoutNow)
}

// SetIncludeDark toggles the dark raster of the following exports.
func (a *App) SetIncludeDark(v bool) {
	a.mu.Lock()
	a.dark = v
	a.mu.Unlock()
}

// Selection returns a copy of the current selection.
func (a *App) Selection() Selection {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selection.Clone()
}

// Palette returns a copy of the current palette layout.
func (a *App) Palette() *Layout {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.layout.Clone()
}

// Edge returns the icon edge applied to the palette.
func (a *App) Edge() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.edge
}

// Skins returns the configured skins in order.
func (a *App) Skins() []config.Skin {
	return append([]config.Skin(nil), a.skins...)
}

// Skin returns the active skin.
func (a *App) Skin() config.Skin {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.skin
}

// Character returns the selected character, empty when none is.
func (a *App) Character() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.character
}

// Characters returns the characters of the catalog.
func (a *App) Characters() []string {
	return a.catalog.Characters()
}

// Portrait returns the portrait path of a character, or an empty string when there is none.
func (a *App) Portrait(name string) string {
	if name == "" {
		return ""
	}
	p := a.cfg.Path(a.cfg.PortraitDir, name+a.cfg.IconExt)
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// Icon returns the icon of ref scaled to the palette edge, or nil when it cannot be read.
func (a *App) Icon(ref AssetRef) image.Image {
	edge := a.Edge()
	img, err := a.icons.Load(ref.Path(a.cfg.Root), edge)
	if err != nil {
		a.logger.Debug("icon unavailable", slog.String("file", ref.File), slog.Any("error", err))
		return nil
	}
	return img
}

// Flush runs the scheduled parse and relayout right away.
func (a *App) Flush() {
	a.parse.Flush()
	a.relayout.Flush()
}

// Close drops the scheduled tasks and releases the cached icons.
func (a *App) Close() {
	a.parse.Cancel()
	a.relayout.Cancel()
	a.icons.Purge()
}

// loadSkin rebuilds the palette from the skin folder. Caller must hold the lock.
func (a *App) loadSkin(skin config.Skin) error {
	listing, err := ListAssets(a.cfg.Path(skin.Folder))
	if err != nil {
		return fmt.Errorf("skin %q: %w", skin.Name, err)
	}
	layout := BuildLayout(GroupAssets(listing, a.rules), skin.Folder, a.rules, a.catalog)
	if a.character != "" {
		if moves, ok := a.catalog.MovesForCharacter(a.character); ok {
			layout.SetCharacter(listing, moves, a.rules, a.catalog)
		}
	}

	a.skin = skin
	a.listing = listing
	a.layout = layout
	a.layout.Edge = a.edge
	a.applyEdge()
	return nil
}

func (a *App) relayoutNow() {
	a.mu.Lock()
	changed := a.applyEdge()
	layout := a.layout.Clone()
	a.mu.Unlock()

	if changed {
		a.logger.Debug("palette rescaled", slog.Int("edge", layout.Edge))
		a.notifyPalette(layout)
	}
}

// applyEdge recomputes the icon edge for the current width. While an export
// runs the edge is left untouched and the relayout is deferred until it ends.
// Caller must hold the lock.
func (a *App) applyEdge() bool {
	if a.width <= 0 {
		return false
	}
	if a.exporting {
		a.deferred = true
		return false
	}
	edge := ComputeIconEdge(a.width-a.cfg.PaletteInset, a.layout.MaxRowLength(),
		a.cfg.IconGap, a.cfg.IconMin, a.cfg.IconMax)
	if edge == a.edge {
		return false
	}
	a.edge = edge
	a.layout.Edge = edge
	return true
}

func (a *App) findSkin(name string) (config.Skin, bool) {
	for _, s := range a.skins {
		if s.Name == name {
			return s, true
		}
	}
	return config.Skin{}, false
}

func (a *App) notifySelection(sel Selection) {
	if a.OnSelection != nil {
		a.OnSelection(sel)
	}
}

func (a *App) notifyPalette(l *Layout) {
	if a.OnPalette != nil {
		a.OnPalette(l)
	}
}
