package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/lodgekeep/concierge/pkg/cli"
)

func main() {
	// Create root command
	rootCmd := cli.NewRootCommand()

	// Parse flags
	flag.Parse()

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		logger := logrus.New()
		logger.SetLevel(logrus.InfoLevel)
		logger.Fatalf("concierge: %v", err)
	}
}
