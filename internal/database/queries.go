package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// LinkCliente records the precatório/cliente association exactly once.
// Re-linking an already linked pair is a no-op.
func LinkCliente(tx *gorm.DB, cnj, cpf string) error {
	var n int64
	err := tx.Table("precatorio_clientes").
		Where("precatorio_cnj = ? AND cliente_cpf = ?", cnj, cpf).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return tx.Exec(
		"INSERT INTO precatorio_clientes (precatorio_cnj, cliente_cpf) VALUES (?, ?)",
		cnj, cpf,
	).Error
}

// ErrContaComRecebimentos is returned when deleting a bank account that has
// recorded receipts.
var ErrContaComRecebimentos = errors.New("conta bancária possui recebimentos e não pode ser excluída")

// DeleteContaBancaria removes a bank account. Accounts referenced by at least
// one recebimento are protected: the delete is rejected and the row left
// intact.
func DeleteContaBancaria(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var conta ContaBancaria
		if err := tx.First(&conta, id).Error; err != nil {
			return err
		}

		var n int64
		if err := tx.Model(&Recebimento{}).Where("conta_bancaria_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %d recebimento(s)", ErrContaComRecebimentos, n)
		}

		return tx.Delete(&conta).Error
	})
}

// Statistics is the aggregate snapshot served by the stats endpoint.
type Statistics struct {
	Precatorios           int64   `json:"precatorios"`
	Clientes              int64   `json:"clientes"`
	Alvaras               int64   `json:"alvaras"`
	Requerimentos         int64   `json:"requerimentos"`
	TotalValorDeFace      float64 `json:"total_valor_de_face"`
	PrecatoriosQuitados   int64   `json:"precatorios_quitados"`
	ClientesPrioritarios  int64   `json:"clientes_prioritarios"`
	PedidosPrioridade     int64   `json:"pedidos_prioridade"`
	PedidosAcordo         int64   `json:"pedidos_acordo"`
	ContasBancarias       int64   `json:"contas_bancarias"`
	RecebimentosTotal     float64 `json:"recebimentos_total"`
	DiligenciasPendentes  int64   `json:"diligencias_pendentes"`
	DiligenciasConcluidas int64   `json:"diligencias_concluidas"`
}

// ComputeStatistics runs the aggregate queries behind the stats endpoint.
func ComputeStatistics(db *gorm.DB) (*Statistics, error) {
	stats := &Statistics{}

	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&Precatorio{}, &stats.Precatorios},
		{&Cliente{}, &stats.Clientes},
		{&Alvara{}, &stats.Alvaras},
		{&Requerimento{}, &stats.Requerimentos},
		{&ContaBancaria{}, &stats.ContasBancarias},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	if err := db.Model(&Precatorio{}).
		Select("COALESCE(SUM(valor_de_face), 0)").
		Scan(&stats.TotalValorDeFace).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&Precatorio{}).
		Where("credito_principal = ?", StatusQuitado).
		Count(&stats.PrecatoriosQuitados).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&Cliente{}).
		Where("prioridade = ?", true).
		Count(&stats.ClientesPrioritarios).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&Requerimento{}).
		Where("pedido LIKE ?", "%prioridade%").
		Count(&stats.PedidosPrioridade).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&Requerimento{}).
		Where("pedido LIKE ?", "%acordo%").
		Count(&stats.PedidosAcordo).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&Recebimento{}).
		Select("COALESCE(SUM(valor), 0)").
		Scan(&stats.RecebimentosTotal).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&Diligencia{}).
		Where("concluida = ?", false).
		Count(&stats.DiligenciasPendentes).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&Diligencia{}).
		Where("concluida = ?", true).
		Count(&stats.DiligenciasConcluidas).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
