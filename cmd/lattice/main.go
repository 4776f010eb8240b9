package main

import "github.com/keurnel/lattice/cmd/lattice/cmd"

func main() {
	cmd.Execute()
}
