// Package config loads the notagen settings from an optional .env file,
// NOTAGEN_* environment variables and an optional skins.ini file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// skinsSection is the skins.ini section listing "Display Name = folder" pairs.
const skinsSection = "skins"

// Skin is a named folder of icon assets.
type Skin struct {
	Name   string
	Folder string
}

// DefaultSkins is used when no skins.ini file is present.
var DefaultSkins = []Skin{
	{Name: "T8 Default", Folder: "assets"},
	{Name: "Xbox", Folder: "assets_xbox"},
	{Name: "PlayStation", Folder: "assets_ps"},
}

// Config holds every tunable of the library and the CLI.
type Config struct {
	Root           string `env:"NOTAGEN_ROOT" envDefault:"."`
	DataDir        string `env:"NOTAGEN_DATA_DIR" envDefault:"data"`
	MovesFile      string `env:"NOTAGEN_MOVES_FILE" envDefault:"MoveDictModified.csv"`
	CharactersFile string `env:"NOTAGEN_CHARACTERS_FILE" envDefault:"CharMoves.csv"`
	PortraitDir    string `env:"NOTAGEN_PORTRAIT_DIR" envDefault:"char"`
	OutputDir      string `env:"NOTAGEN_OUTPUT_DIR" envDefault:"output"`
	OutputName     string `env:"NOTAGEN_OUTPUT_NAME" envDefault:"notation"`
	OutputExt      string `env:"NOTAGEN_OUTPUT_EXT" envDefault:".png"`
	SkinsFile      string `env:"NOTAGEN_SKINS_FILE" envDefault:"skins.ini"`
	DefaultSkin    string `env:"NOTAGEN_SKIN" envDefault:"T8 Default"`
	IncludeDark    bool   `env:"NOTAGEN_DARK" envDefault:"false"`

	CellEdge      int      `env:"NOTAGEN_CELL_EDGE" envDefault:"80"`
	IconMin       int      `env:"NOTAGEN_ICON_MIN" envDefault:"24"`
	IconMax       int      `env:"NOTAGEN_ICON_MAX" envDefault:"32"`
	IconGap       int      `env:"NOTAGEN_ICON_GAP" envDefault:"6"`
	PaletteInset  int      `env:"NOTAGEN_PALETTE_INSET" envDefault:"16"`
	EarlyColumns  int      `env:"NOTAGEN_EARLY_COLUMNS" envDefault:"8"`
	TailColumns   int      `env:"NOTAGEN_TAIL_COLUMNS" envDefault:"12"`
	TailThreshold int      `env:"NOTAGEN_TAIL_THRESHOLD" envDefault:"4"`
	IconExt       string   `env:"NOTAGEN_ICON_EXT" envDefault:".png"`
	DarkMarker    string   `env:"NOTAGEN_DARK_MARKER" envDefault:"_Dark"`
	ExcludedTags  []string `env:"NOTAGEN_EXCLUDED_TAGS" envDefault:"R9" envSeparator:","`
	CacheSize     int      `env:"NOTAGEN_CACHE_SIZE" envDefault:"512"`
	CompositeOp   string   `env:"NOTAGEN_COMPOSITE_OP" envDefault:"src_over"`

	ParseDelay    time.Duration `env:"NOTAGEN_PARSE_DELAY" envDefault:"120ms"`
	RelayoutDelay time.Duration `env:"NOTAGEN_RELAYOUT_DELAY" envDefault:"60ms"`

	LogLevel  string `env:"NOTAGEN_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"NOTAGEN_LOG_FORMAT" envDefault:"text"`

	skins []Skin
}

// Load reads the configuration. The given env files (".env" when none is passed)
// are optional: a missing file is not an error, but a malformed one is.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	skins, err := LoadSkins(cfg.Path(cfg.SkinsFile))
	if err != nil {
		return nil, err
	}
	cfg.skins = skins

	return cfg, nil
}

// Default returns the built-in configuration, ignoring the process environment.
func Default() *Config {
	cfg := &Config{}
	// Parsing against an empty environment only applies the envDefault values.
	if err := env.ParseWithOptions(cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	cfg.skins = append([]Skin(nil), DefaultSkins...)
	return cfg
}

// LoadSkins reads the skins.ini file. DefaultSkins is returned when the file does not exist.
func LoadSkins(path string) ([]Skin, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return append([]Skin(nil), DefaultSkins...), nil
	}
	f, err := ini.LoadSources(ini.LoadOptions{
		Insensitive:         false,
		IgnoreInlineComment: true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("load skins file %s: %w", path, err)
	}

	sec, err := f.GetSection(skinsSection)
	if err != nil {
		return nil, fmt.Errorf("skins file %s: missing [%s] section", path, skinsSection)
	}

	var skins []Skin
	for _, key := range sec.Keys() {
		name, folder := strings.TrimSpace(key.Name()), strings.TrimSpace(key.String())
		if name == "" || folder == "" {
			continue
		}
		skins = append(skins, Skin{Name: name, Folder: folder})
	}
	if len(skins) == 0 {
		return nil, fmt.Errorf("skins file %s: no skins defined", path)
	}
	return skins, nil
}

// Skins returns the skins in declaration order.
func (c *Config) Skins() []Skin {
	return c.skins
}

// SetSkins replaces the configured skins.
func (c *Config) SetSkins(skins []Skin) {
	c.skins = skins
}

// Path resolves a file name relative to the configured root. Absolute paths are kept as is.
func (c *Config) Path(elem ...string) string {
	if len(elem) > 0 && filepath.IsAbs(elem[0]) {
		return filepath.Join(elem...)
	}
	return filepath.Join(append([]string{c.Root}, elem...)...)
}

// MovesPath returns the location of the move table.
func (c *Config) MovesPath() string {
	return c.Path(c.DataDir, c.MovesFile)
}

// CharactersPath returns the location of the character move table.
func (c *Config) CharactersPath() string {
	return c.Path(c.DataDir, c.CharactersFile)
}

func (c *Config) validate() error {
	switch {
	case c.CellEdge <= 0:
		return fmt.Errorf("invalid cell edge: %d", c.CellEdge)
	case c.IconMin <= 0 || c.IconMax < c.IconMin:
		return fmt.Errorf("invalid icon size range: [%d, %d]", c.IconMin, c.IconMax)
	case c.EarlyColumns <= 0 || c.TailColumns <= 0:
		return fmt.Errorf("invalid palette columns: %d/%d", c.EarlyColumns, c.TailColumns)
	case c.IconGap < 0:
		return fmt.Errorf("invalid icon gap: %d", c.IconGap)
	}
	return nil
}
