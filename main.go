package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/vialex/vialex/cmd"
)

func main() {
	// Missing .env files are fine; the environment wins either way.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
