// Package main is the entry point for the pitchmetrics CLI tool, which ingests
// football tracking data and computes activity intensity and spatial spread
// profiles per match interval.
package main

import "github.com/pable/go-pitch-metrics/cmd"

func main() {
	cmd.Execute()
}
