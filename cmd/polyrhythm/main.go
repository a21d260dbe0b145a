// Command polyrhythm plays and draws a row of bouncing nodes, each sounding
// its note when it reaches the top or bottom of its lane.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
