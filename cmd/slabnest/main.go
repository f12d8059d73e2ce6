// SlabNest - irregular shape nesting for sheet material.
//
// Build:
//
//	go build -o slabnest ./cmd/slabnest
//
// Usage:
//
//	slabnest run job.yaml --pdf layout.pdf
//	slabnest compare job.yaml
//	slabnest config show
package main

import "github.com/piwi3910/SlabNest/cmd/slabnest/cmd"

func main() {
	cmd.Execute()
}
