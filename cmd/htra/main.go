package main

import (
	"os"

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
