// Package main is the entry point for the splits CLI, which loads baseball
// situational split payloads, derives rate stats and grades them against the
// league baseline.
package main

import "github.com/c-tram/cycle-splits/cmd"

func main() {
	cmd.Execute()
}
