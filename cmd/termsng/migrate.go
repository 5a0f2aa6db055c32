// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"termsng/internal/database"
)

func newMigrateCmd(load loader) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or inspect database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := database.Connect(cfg.DSN())
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer db.Close()

			switch action {
			case "up":
				if err := database.Migrate(db); err != nil {
					return err
				}
				if seed {
					return database.Seed(db)
				}
			case "down":
				return database.Rollback(db)
			case "status":
				v, err := database.Version(db)
				if err != nil {
					return err
				}
				slog.Info("schema version", "version", v)
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "create the demo account after migrating up")
	return cmd
}
