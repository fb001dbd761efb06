package main

import (
	"github.com/spf13/cobra"

	"github.com/precapp/precapp/internal/reference"
	"github.com/precapp/precapp/internal/sample"
)

func newPopulateCmd() *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Populate the database with sample data",
		Long:  "Insert five precatórios, clientes, alvarás and requerimentos for demos and local development.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := reference.Seed(a.db, a.log); err != nil {
				return err
			}

			result, err := sample.Populate(a.db, a.log, clear)
			if err != nil {
				return err
			}

			a.log.Info("Database populated",
				"precatorios", result.Stats.Precatorios,
				"clientes", result.Stats.Clientes,
				"alvaras", result.Stats.Alvaras,
				"requerimentos", result.Stats.Requerimentos,
				"total_valor_de_face", result.Stats.TotalValorDeFace,
				"precatorios_quitados", result.Stats.PrecatoriosQuitados,
				"clientes_prioritarios", result.Stats.ClientesPrioritarios,
				"pedidos_prioridade", result.Stats.PedidosPrioridade,
				"pedidos_acordo", result.Stats.PedidosAcordo,
			)
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "clear existing case data before populating")
	return cmd
}
