package main

import (
	"os"

	"github.com/udevstartup/sitecms/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
