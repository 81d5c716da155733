package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// main is the application composition root.
func main() {
	app := &cli.App{
		Name:  "donation-matching",
		Usage: "Rank recipient organizations for food donations",
		Commands: []*cli.Command{
			serveCommand,
			matchCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
