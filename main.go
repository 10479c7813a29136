package main

import (
	"os"

	"github.com/spigell/vk-tinder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
