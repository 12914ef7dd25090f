// Package main is the entry point for the competitor price matcher server.
package main

import (
	"os"

	"github.com/donaldgifford/competitor-price-matcher/cmd/price-matcher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
