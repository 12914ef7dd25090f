// Package main is the entry point for the pmctl CLI client.
package main

import "github.com/donaldgifford/competitor-price-matcher/cmd/pmctl/cmd"

func main() {
	cmd.Execute()
}
