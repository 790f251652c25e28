package main

import (
	"fmt"
	"os"

	"embruns/internal/cli"
	"embruns/internal/config"
)

func main() {
	app := cli.NewApp(config.LoadClientConfig())
	if err := cli.NewRootCmd(app).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
