/*
Package notagen turns fighting game combo notation into move icons and renders
the selected icons into a single image, one combo line per row.

The notation is typed as whitespace separated move tokens, combo lines being
separated by commas. Every token is looked up in a move catalog loaded from two
semicolon delimited tables; unknown tokens are dropped while the user types.
Icons come from a skin folder and are shown on a palette grid which can be
clicked to extend the current combo.

The package provides a command line interface. To check the supported flags type:

	$ notagen --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"log"

		"github.com/esimov/notagen"
		"github.com/esimov/notagen/config"
	)

	func main() {
		cfg, err := config.Load()
		if err != nil {
			log.Fatal(err)
		}
		catalog, err := notagen.LoadCatalog(cfg.MovesPath(), cfg.CharactersPath())
		if err != nil {
			log.Fatal(err)
		}
		app, err := notagen.NewApp(cfg, catalog, nil)
		if err != nil {
			log.Fatal(err)
		}
		defer app.Close()

		app.ParseNow("df+1 d/f+2, b+1+2")
		res, err := app.Export()
		if err != nil {
			log.Fatalf("Error exporting the notation: %v", err)
		}
		log.Printf("saved as %s", res.Path)
	}
*/
package notagen
