package main

import (
	"flag"
	"fmt"
	"os"

	"gxd/internal/di"
	"gxd/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "c", "config.yaml", "path to the yaml config file")
	flag.BoolVar(&flags.DebugMode, "d", false, "duplicate logs to stderr")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "gxd: %s\n", err)
		os.Exit(1)
	}
}
