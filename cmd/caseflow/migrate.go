package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/aureonlegal/caseflow/internal/adapter/sqlite"
)

func newMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations and exit",
		Action: func(_ context.Context, command *cli.Command) error {
			store, err := sqlite.Open(command.String("database-path"))
			if err != nil {
				return fmt.Errorf("migrating: %w", err)
			}
			return store.Close()
		},
	}
}
