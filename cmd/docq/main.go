// Command docq is the entry point for the document question-answering CLI.
// It ingests documents into a Qdrant vector index and answers questions
// about them with retrieval-augmented generation.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/docq-ai/docq-go/cmd/docq/commands"
)

func main() {
	// Load .env if present; real env vars always win.
	_ = godotenv.Load()

	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
