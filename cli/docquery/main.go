package main

import (
	"os"

	"github.com/joho/godotenv"

	docquerycmder "github.com/docqueryco/docquery/cmd/docquery"
)

func main() {
	// Provider credentials come from the environment; a local .env is honored
	_ = godotenv.Load()

	cmd := docquerycmder.NewDocqueryCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
