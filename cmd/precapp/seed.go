package main

import (
	"github.com/spf13/cobra"

	"github.com/precapp/precapp/internal/reference"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the reference-data catalogues",
		Long:  "Insert the workflow phases, diligence types, precatório types and pedido types. Existing rows are never modified.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			counts, err := reference.Seed(a.db, a.log)
			if err != nil {
				return err
			}

			a.log.Info("Seeding finished", "created", counts.Total())
			return nil
		},
	}
}
