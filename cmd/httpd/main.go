package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/wcxxx57/bilibili-study-tool/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to configuration file")
	flag.Parse()

	if err := server.Run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
