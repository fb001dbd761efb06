package main

import (
	"github.com/spf13/cobra"

	"github.com/precapp/precapp/internal/importer"
	"github.com/precapp/precapp/internal/reference"
)

func newImportCmd() *cobra.Command {
	var (
		file   string
		sheet  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import precatório spreadsheets",
		Long:  "Import an xlsx workbook of precatórios, clientes and requerimentos. Reference data is seeded first so imported rows can reference phases and types.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if file == "" {
				file = a.cfg.ImportFile
			}

			if !dryRun {
				if _, err := reference.Seed(a.db, a.log); err != nil {
					return err
				}
			}

			summary, err := importer.New(a.db, a.log).Run(importer.Options{
				File:   file,
				Sheet:  sheet,
				DryRun: dryRun,
			})
			if err != nil {
				return err
			}

			if dryRun {
				a.log.Info("Dry run finished, nothing was imported")
				return nil
			}
			a.log.Info("Import finished",
				"precatorios", summary.Precatorios,
				"clientes", summary.Clientes,
				"requerimentos", summary.Requerimentos,
				"errors", summary.Errors,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "workbook to import (defaults to IMPORT_FILE)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "import only the named sheet")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview rows without writing")
	return cmd
}
