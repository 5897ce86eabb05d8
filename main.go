package main

import (
	"os"

	"github.com/detagtor/detagtor/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
