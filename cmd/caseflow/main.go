package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "caseflow",
		Usage: "Legal case management with workflow-driven stage tracking",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-path",
				Usage:   "Path to the SQLite database file",
				Value:   "caseflow.db",
				Sources: cli.EnvVars("DATABASE_PATH"),
			},
		},
		Commands: []*cli.Command{
			newServeCommand(),
			newMigrateCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
