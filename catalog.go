package notagen

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// fieldDelimiter separates the columns of the move and character tables.
const fieldDelimiter = ';'

// moveListSeparator joins the move tokens of a character inside a single field.
const moveListSeparator = ", "

// MoveRecord maps a notation token to its display name and icon file.
type MoveRecord struct {
	Token string
	Name  string
	Image string
}

// Catalog holds the immutable lookup tables built from the move and character tables.
// Tokens are keyed upper-cased, so every lookup is case-insensitive.
type Catalog struct {
	images     map[string]string
	names      map[string]string
	characters map[string][]string
	order      []string
	skipped    int
}

// Resolver resolves a notation token to an icon file name.
type Resolver interface {
	LookupImage(token string) (string, bool)
}

var _ Resolver = (*Catalog)(nil)

// LoadCatalog reads the move table and the character table from disk.
// A missing or unreadable file is returned as an error; malformed rows are skipped.
func LoadCatalog(movesPath, charactersPath string) (*Catalog, error) {
	moves, err := os.Open(movesPath)
	if err != nil {
		return nil, fmt.Errorf("could not open the move table: %w", err)
	}
	defer moves.Close()

	chars, err := os.Open(charactersPath)
	if err != nil {
		return nil, fmt.Errorf("could not open the character table: %w", err)
	}
	defer chars.Close()

	return ReadCatalog(moves, chars)
}

// ReadCatalog builds a catalog from the two tables.
func ReadCatalog(moves, characters io.Reader) (*Catalog, error) {
	c := &Catalog{
		images:     make(map[string]string),
		names:      make(map[string]string),
		characters: make(map[string][]string),
	}

	err := readTable(moves, []columnSpec{
		{"Move", "Token"},
		{"Name", "DisplayName"},
		{"Image", "ImageFile"},
	}, func(f []string) bool {
		token, name, image := strings.ToUpper(f[0]), f[1], f[2]
		if token == "" || image == "" {
			return false
		}
		c.images[token] = image
		c.names[token] = name
		return true
	}, &c.skipped)
	if err != nil {
		return nil, fmt.Errorf("move table: %w", err)
	}

	err = readTable(characters, []columnSpec{
		{"Character"},
		{"Moves", "MoveTokens"},
	}, func(f []string) bool {
		name := f[0]
		if name == "" || f[1] == "" {
			return false
		}
		if _, ok := c.characters[name]; !ok {
			c.order = append(c.order, name)
		}
		c.characters[name] = orderedSet(strings.Split(f[1], moveListSeparator))
		return true
	}, &c.skipped)
	if err != nil {
		return nil, fmt.Errorf("character table: %w", err)
	}

	return c, nil
}

// LookupImage returns the icon file for a notation token.
func (c *Catalog) LookupImage(token string) (string, bool) {
	img, ok := c.images[strings.ToUpper(token)]
	return img, ok
}

// LookupDisplayName returns the human readable name of a move,
// given the move tag encoded in an icon file name.
func (c *Catalog) LookupDisplayName(imageBaseName string) (string, bool) {
	name, ok := c.names[strings.ToUpper(imageBaseName)]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// MovesForCharacter returns the ordered move tokens of a character.
func (c *Catalog) MovesForCharacter(name string) ([]string, bool) {
	moves, ok := c.characters[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), moves...), true
}

// Characters lists the characters in table order.
func (c *Catalog) Characters() []string {
	return append([]string(nil), c.order...)
}

// Len returns the number of move records.
func (c *Catalog) Len() int {
	return len(c.images)
}

// Skipped returns the number of malformed rows ignored while loading.
func (c *Catalog) Skipped() int {
	return c.skipped
}

// columnSpec lists the accepted header names of a required column.
type columnSpec []string

// readTable reads a delimited table with a header row, calling row with the
// required fields in columnSpec order. Rows rejected by row or by the CSV
// reader are counted in skipped.
func readTable(r io.Reader, cols []columnSpec, row func([]string) bool, skipped *int) error {
	cr := csv.NewReader(r)
	cr.Comma = fieldDelimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("missing header row")
		}
		return fmt.Errorf("could not read the header row: %w", err)
	}

	idx := make([]int, len(cols))
	for i, spec := range cols {
		idx[i] = columnIndex(header, spec)
		if idx[i] < 0 {
			return fmt.Errorf("missing column %q", spec[0])
		}
	}

	fields := make([]string, len(cols))
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			*skipped++
			continue
		}
		if err != nil {
			return err
		}

		complete := true
		for i, j := range idx {
			if j >= len(rec) {
				complete = false
				break
			}
			fields[i] = strings.TrimSpace(rec[j])
		}
		if !complete || !row(fields) {
			*skipped++
		}
	}
}

func columnIndex(header []string, names columnSpec) int {
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		for _, n := range names {
			if strings.EqualFold(h, n) {
				return i
			}
		}
	}
	return -1
}

// orderedSet trims the values and drops empty entries and duplicates, keeping the first occurrence.
func orderedSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	set := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		set = append(set, v)
	}
	return set
}
