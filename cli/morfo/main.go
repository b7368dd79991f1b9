package main

import (
	"os"

	morfocmder "github.com/morfolab/morfo/cmd/morfo"
)

func main() {
	cmd := morfocmder.NewMorfoCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
