package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/roach88/feedql/internal/cli"
)

func main() {
	// Optional .env for DATABASE_URL, OFFSET_LOG_PATH and PUB_KEY.
	_ = godotenv.Load(".env")

	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
