package main

import (
	"os"

	"rendiconto/internal/cli"
)

func main() {
	cli.LoadEnvFile()
	os.Exit(Execute())
}
