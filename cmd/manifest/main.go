// Command manifest rewrites manifest.json for the front-end application
// from the CSV files present in a data directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ibarra/parlante/internal/manifest"
)

func main() {
	dataDir := flag.String("data-dir", "flashcards/public/data", "directory holding the word-list CSV files")
	flag.Parse()

	entries, err := manifest.Update(*dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "manifest: %v\n", err)
		os.Exit(1)
	}

	log.Printf("updated manifest.json with %d file(s):", len(entries))
	for _, e := range entries {
		log.Printf("  - %s (%s)", e.Name, e.File)
	}
}
