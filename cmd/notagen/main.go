package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/esimov/notagen"
	"github.com/esimov/notagen/config"
	"github.com/esimov/notagen/utils"
)

const HelpBanner = `
┌┐┌┌─┐┌┬┐┌─┐┌─┐┌─┐┌┐┌
││││ │ │ ├─┤│ ┬├┤ │││
┘└┘└─┘ ┴ ┴ ┴└─┘└─┘┘└┘

Fighting game notation to image generator.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	notation  = flag.String("n", "", "Notation, combo lines separated by commas")
	source    = flag.String("in", "", "File with one notation per line, `-` for stdin")
	dest      = flag.String("out", "", "Output directory, `-` to stream the image to stdout")
	skin      = flag.String("skin", "", "Icon skin")
	dark      = flag.Bool("dark", false, "Export the dark variant as well")
	cellEdge  = flag.Int("cell", 0, "Icon cell size of the exported image")
	character = flag.String("character", "", "Show the moves of a character on the palette")
	palette   = flag.Bool("palette", false, "Print the icon palette")
	width     = flag.Int("width", 0, "Palette width used to compute the icon size")
	envFile   = flag.String("env", ".env", "Environment file")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *notation == "" && *source == "" && !*palette {
		flag.Usage()
		log.Fatal(fmt.Sprintf("%s%s",
			utils.DecorateText("\nPlease provide a notation, a notation file or the -palette flag!", utils.ErrorMessage),
			utils.DefaultColor,
		))
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fatal("Failed to load the configuration: %v", err)
	}
	if *dest != "" && *dest != pipeName {
		cfg.OutputDir = *dest
	}
	if *cellEdge > 0 {
		cfg.CellEdge = *cellEdge
	}
	if *dark {
		cfg.IncludeDark = true
	}

	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	catalog, err := notagen.LoadCatalog(cfg.MovesPath(), cfg.CharactersPath())
	if err != nil {
		fatal("Failed to load the move catalog: %v", err)
	}
	app, err := notagen.NewApp(cfg, catalog, logger)
	if err != nil {
		fatal("Failed to open the session: %v", err)
	}
	defer app.Close()

	if *skin != "" {
		if err := app.SwitchSkin(*skin); err != nil {
			fatal("Failed to switch the skin: %v", err)
		}
	}
	if *character != "" {
		if err := app.SelectCharacter(*character); err != nil {
			fatal("Failed to select the character: %v", err)
		}
	}
	if *width > 0 {
		app.Resize(*width)
		app.Flush()
	}

	if *palette {
		out := io.Writer(os.Stdout)
		if *dest == pipeName {
			out = os.Stderr
		}
		printPalette(out, app)
	}
	if *notation == "" && *source == "" {
		return
	}

	ops := &notagen.Ops{
		Source:   *source,
		Dest:     *dest,
		PipeName: pipeName,
	}
	if *notation != "" {
		ops.Notations = []string{*notation}
	}
	if _, err := ops.Execute(app); err != nil {
		fatal("Error exporting the notation: %v", err)
	}
}

// printPalette lists the palette row by row, each cell with its move name.
func printPalette(w io.Writer, app *notagen.App) {
	l := app.Palette()
	fmt.Fprintf(w, "%s %s\n",
		utils.DecorateText(app.Skin().Name, utils.StatusMessage),
		utils.DecorateText(fmt.Sprintf("(icon size %dpx)", l.Edge), utils.DefaultMessage),
	)
	for i, row := range l.Rows() {
		if i == l.RowsUsed && len(l.Character) > 0 {
			fmt.Fprintln(w, utils.DecorateText(app.Character(), utils.StatusMessage))
		}
		names := make([]string, 0, len(row))
		for _, c := range row {
			name := c.Name
			if name == "" {
				name = notagen.MoveTag(c.Ref.File)
			}
			names = append(names, name)
		}
		fmt.Fprintf(w, "%3d  %s\n", i+1, strings.Join(names, " | "))
	}
}

func fatal(format string, err error) {
	log.Fatalf(
		utils.DecorateText(format, utils.ErrorMessage),
		utils.DecorateText(err.Error(), utils.DefaultMessage),
	)
}
