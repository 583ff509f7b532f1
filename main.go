package main

import (
	"os"

	"github.com/flomonster/my-git/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
