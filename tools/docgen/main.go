// Package main generates CLI reference documentation for pmctl and
// price-matcher.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	pmctl "github.com/donaldgifford/competitor-price-matcher/cmd/pmctl/cmd"
	server "github.com/donaldgifford/competitor-price-matcher/cmd/price-matcher/cmd"
)

func main() {
	output := flag.String("output", "docs/cli", "output directory for generated markdown")
	flag.Parse()

	if err := os.MkdirAll(*output, 0o750); err != nil {
		log.Fatalf("creating output directory: %v", err)
	}

	for name, root := range map[string]*cobra.Command{
		"pmctl":         pmctl.Root(),
		"price-matcher": server.Root(),
	} {
		dir := filepath.Join(*output, name)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Fatalf("creating %s directory: %v", name, err)
		}
		root.DisableAutoGenTag = true
		if err := doc.GenMarkdownTree(root, dir); err != nil {
			log.Fatalf("generating %s docs: %v", name, err)
		}
	}

	fmt.Printf("CLI docs generated in %s/\n", *output)
}
