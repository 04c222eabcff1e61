package notagen

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/esimov/notagen/utils"
)

// tagSeparator ends the group tag at the start of an icon file name, e.g. "R1_03_DF.png".
const tagSeparator = "_"

// Rules controls how an asset folder is grouped and laid out on the palette.
type Rules struct {
	Ext          string   // only files with this extension are shown
	DarkMarker   string   // files containing it are dark variants and never shown
	ExcludedTags []string // groups never shown on the palette
	Threshold    int      // groups ordered below it get their own rows
	EarlyColumns int      // columns per row of the independent groups
	TailColumns  int      // columns per row of the stitched tail
}

// DefaultRules returns the grid rules used by the original palette.
func DefaultRules() Rules {
	return Rules{
		Ext:          ".png",
		DarkMarker:   "_Dark",
		ExcludedTags: []string{"R9"},
		Threshold:    4,
		EarlyColumns: 8,
		TailColumns:  12,
	}
}

// Group is a bucket of icon files sharing the same tag.
type Group struct {
	Tag   string
	Order int
	Files []string
}

// Handle identifies a palette cell. The layout owns the handle to AssetRef table.
type Handle int

// Cell is one positioned icon of the palette.
type Cell struct {
	Handle Handle
	Ref    AssetRef
	Row    int
	Col    int
	Name   string
}

// NameLookup provides the display name of a move tag.
type NameLookup interface {
	LookupDisplayName(imageBaseName string) (string, bool)
}

// Layout is the computed palette: the main grid, the optional character
// sub-grid placed below it and the icon edge currently applied.
type Layout struct {
	Folder    string
	Cells     []Cell
	Character []Cell
	RowsUsed  int
	Edge      int

	refs map[Handle]AssetRef
	next Handle
}

// ListAssets returns the file names of an asset folder.
func ListAssets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read the asset folder: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// GroupAssets buckets a folder listing by tag. Groups are ordered by the numeric
// suffix of their tag, non numeric tags come last. Files are sorted inside each group.
func GroupAssets(listing []string, rules Rules) []Group {
	excluded := make(map[string]struct{}, len(rules.ExcludedTags))
	for _, t := range rules.ExcludedTags {
		excluded[t] = struct{}{}
	}

	byTag := make(map[string]*Group)
	var groups []*Group
	for _, f := range listing {
		if !rules.visible(f) {
			continue
		}
		tag := groupTag(f)
		if _, ok := excluded[tag]; ok {
			continue
		}
		g, ok := byTag[tag]
		if !ok {
			g = &Group{Tag: tag, Order: groupOrder(tag)}
			byTag[tag] = g
			groups = append(groups, g)
		}
		g.Files = append(g.Files, f)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Order != groups[j].Order {
			return groups[i].Order < groups[j].Order
		}
		return groups[i].Tag < groups[j].Tag
	})

	out := make([]Group, len(groups))
	for i, g := range groups {
		sort.Strings(g.Files)
		out[i] = *g
	}
	return out
}

// BuildLayout positions the groups on the palette grid. Groups ordered below
// the threshold each start on a fresh row with EarlyColumns per row; the
// remaining groups are concatenated and wrap every TailColumns cells,
// ignoring group boundaries.
func BuildLayout(groups []Group, folder string, rules Rules, names NameLookup) *Layout {
	l := &Layout{
		Folder: folder,
		refs:   make(map[Handle]AssetRef),
	}

	row := 0
	var tail []string
	for _, g := range groups {
		if g.Order >= rules.Threshold {
			tail = append(tail, g.Files...)
			continue
		}
		for i, f := range g.Files {
			l.Cells = append(l.Cells, l.cell(f, row+i/rules.EarlyColumns, i%rules.EarlyColumns, names))
		}
		row += utils.CeilDiv(len(g.Files), rules.EarlyColumns)
	}
	for i, f := range tail {
		l.Cells = append(l.Cells, l.cell(f, row+i/rules.TailColumns, i%rules.TailColumns, names))
	}
	l.RowsUsed = row + utils.CeilDiv(len(tail), rules.TailColumns)

	return l
}

// SetCharacter lays out the icons matching a character's moves below the main grid,
// in the continuous tail style. Moves are shown in alphabetical order.
func (l *Layout) SetCharacter(listing, moves []string, rules Rules, names NameLookup) {
	l.ClearCharacter()

	sorted := append([]string(nil), moves...)
	sort.Strings(sorted)
	files := append([]string(nil), listing...)
	sort.Strings(files)

	var matched []string
	for _, m := range sorted {
		for _, f := range files {
			if rules.visible(f) && strings.EqualFold(MoveTag(f), m) {
				matched = append(matched, f)
			}
		}
	}
	for i, f := range matched {
		row := l.RowsUsed + i/rules.TailColumns
		l.Character = append(l.Character, l.cell(f, row, i%rules.TailColumns, names))
	}
}

// ClearCharacter removes the character sub-grid.
func (l *Layout) ClearCharacter() {
	for _, c := range l.Character {
		delete(l.refs, c.Handle)
	}
	l.Character = nil
}

// Clone returns a copy of the layout which shares nothing with the original.
func (l *Layout) Clone() *Layout {
	out := *l
	out.Cells = append([]Cell(nil), l.Cells...)
	out.Character = append([]Cell(nil), l.Character...)
	out.refs = make(map[Handle]AssetRef, len(l.refs))
	for h, ref := range l.refs {
		out.refs[h] = ref
	}
	return &out
}

// Ref resolves a palette handle to its asset.
func (l *Layout) Ref(h Handle) (AssetRef, bool) {
	ref, ok := l.refs[h]
	return ref, ok
}

// MaxRowLength returns the number of cells of the fullest row across both grids.
func (l *Layout) MaxRowLength() int {
	rows := make(map[int]int)
	n := 0
	for _, cells := range [][]Cell{l.Cells, l.Character} {
		for _, c := range cells {
			rows[c.Row]++
			n = utils.Max(n, rows[c.Row])
		}
	}
	return n
}

// Rows groups every cell of both grids by row index.
func (l *Layout) Rows() [][]Cell {
	total := l.RowsUsed
	for _, c := range l.Character {
		total = utils.Max(total, c.Row+1)
	}
	rows := make([][]Cell, total)
	for _, cells := range [][]Cell{l.Cells, l.Character} {
		for _, c := range cells {
			rows[c.Row] = append(rows[c.Row], c)
		}
	}
	return rows
}

func (l *Layout) cell(file string, row, col int, names NameLookup) Cell {
	l.next++
	ref := AssetRef{Folder: l.Folder, File: file}
	l.refs[l.next] = ref

	c := Cell{Handle: l.next, Ref: ref, Row: row, Col: col}
	if names != nil {
		c.Name, _ = names.LookupDisplayName(MoveTag(file))
	}
	return c
}

// ComputeIconEdge returns the icon edge fitting maxRow icons separated by gap
// into the available width, clamped to [lo, hi].
func ComputeIconEdge(avail, maxRow, gap, lo, hi int) int {
	if maxRow <= 0 {
		return lo
	}
	edge := utils.FloorDiv(avail-(maxRow-1)*gap, maxRow)
	return utils.Clamp(edge, lo, hi)
}

// MoveTag extracts the move token encoded in an icon file name: the group tag,
// an optional numeric ordering segment and the extension are removed.
// "R1_03_DF.png" and "R1_DF.png" both yield "DF".
func MoveTag(file string) string {
	base := strings.TrimSuffix(file, filepath.Ext(file))
	if i := strings.Index(base, tagSeparator); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.Index(base, tagSeparator); i > 0 && isDigits(base[:i]) {
		base = base[i+1:]
	}
	return base
}

func (r Rules) visible(file string) bool {
	if r.DarkMarker != "" && strings.Contains(file, r.DarkMarker) {
		return false
	}
	return strings.EqualFold(filepath.Ext(file), r.Ext)
}

// groupTag returns the substring before the first separator, the whole base name when there is none.
func groupTag(file string) string {
	if i := strings.Index(file, tagSeparator); i >= 0 {
		return file[:i]
	}
	return strings.TrimSuffix(file, filepath.Ext(file))
}

// groupOrder parses the numeric suffix of a tag such as "R5". Malformed tags sort last.
func groupOrder(tag string) int {
	if len(tag) < 2 || !isDigits(tag[1:]) {
		return math.MaxInt
	}
	n, err := strconv.Atoi(tag[1:])
	if err != nil {
		return math.MaxInt
	}
	return n
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
