// Package reference seeds the fixed catalogue of lookup rows (workflow
// phases, diligence types, precatório types, request types). Seeding is
// idempotent: rows are inserted when absent and never touched when present.
package reference

import (
	"github.com/precapp/precapp/internal/database"
	"github.com/precapp/precapp/pkg/logger"
	"gorm.io/gorm"
)

type entry struct {
	Nome      string
	Descricao string
	Cor       string
	Ordem     int
}

var fasesRequerimento = []entry{
	{"Organizar Documentos", "Fase inicial para organização dos documentos necessários", "#FFC107", 1},
	{"Protocolado", "Requerimento protocolado e em análise", "#17A2B8", 2},
	{"Deferido", "Requerimento deferido e aprovado", "#28A745", 3},
	{"Indeferido", "Requerimento indeferido e negado", "#DC3545", 4},
}

var fasesAlvara = []entry{
	{"Aguardando Depósito Judicial", "Aguardando o depósito dos valores pelo tribunal", "#FFC107", 1},
	{"Crédito Depositado Judicialmente", "Valores depositados pelo tribunal", "#17A2B8", 2},
	{"Aguardando Atualização pela Contadoria", "Aguardando atualização dos valores pela contadoria", "#6F42C1", 3},
	{"Recebido Pelo Cliente", "Valores recebidos pelo cliente final", "#28A745", 4},
}

var fasesHonorarios = []entry{
	{"Aguardando Depósito Judicial", "Aguardando o depósito dos honorários pelo tribunal", "#FFC107", 1},
	{"Cobrar Cliente", "Iniciar cobrança dos honorários do cliente", "#FF6B35", 2},
	{"Quitado parcialmente", "Honorários quitados parcialmente pelo cliente", "#17A2B8", 3},
	{"Quitado integralmente", "Honorários quitados integralmente pelo cliente", "#28A745", 4},
}

var tiposDiligencia = []entry{
	{"Propor repactuação", "Propor uma nova pactuação ou renegociação dos termos", "#007bff", 1},
	{"Solicitar RG", "Solicitar documento de identidade (RG) do cliente", "#28a745", 2},
	{"Solicitar contrato", "Solicitar contrato ou documentação contratual", "#ffc107", 3},
	{"Cobrar honorários", "Realizar cobrança de honorários devidos", "#fd7e14", 4},
	{"Executar honorários", "Executar judicialmente os honorários em aberto", "#dc3545", 5},
}

var tiposPrecatorio = []entry{
	{"Descompressão", "Precatórios originados de processos de descompressão salarial", "#007bff", 1},
	{"URV", "Precatórios relacionados à Unidade Real de Valor", "#28a745", 2},
	{"Reclassificação", "Precatórios originados de processos de reclassificação funcional", "#ffc107", 3},
}

var pedidosRequerimento = []entry{
	{"Prioridade por idade", "Requerimento para prioridade de tramitação por idade (acima de 60 anos)", "#6f42c1", 1},
	{"Prioridade por doença", "Requerimento para prioridade de tramitação por doença grave", "#e83e8c", 2},
	{"Acordo no Principal", "Requerimento de acordo sobre o valor principal do precatório", "#007bff", 3},
	{"Acordo nos Hon. Sucumbenciais", "Requerimento de acordo sobre os honorários sucumbenciais", "#28a745", 4},
	{"Acordo nos Hon. Contratuais", "Requerimento de acordo sobre os honorários contratuais", "#ffc107", 5},
	{"Impugnação aos cálculos", "Requerimento de impugnação aos cálculos apresentados", "#fd7e14", 6},
	{"Repartição de honorários", "Requerimento para repartição de honorários entre advogados", "#dc3545", 7},
}

// Counts reports how many rows each category newly created.
type Counts struct {
	FasesRequerimento   int `json:"fases_requerimento"`
	FasesAlvara         int `json:"fases_alvara"`
	FasesHonorarios     int `json:"fases_honorarios"`
	TiposDiligencia     int `json:"tipos_diligencia"`
	TiposPrecatorio     int `json:"tipos_precatorio"`
	PedidosRequerimento int `json:"pedidos_requerimento"`
}

// Total returns the number of rows created across all categories.
func (c Counts) Total() int {
	return c.FasesRequerimento + c.FasesAlvara + c.FasesHonorarios +
		c.TiposDiligencia + c.TiposPrecatorio + c.PedidosRequerimento
}

// Seed ensures every catalogue row exists. The whole run is one transaction:
// an unexpected store failure rolls back everything.
func Seed(db *gorm.DB, log *logger.Logger) (Counts, error) {
	var counts Counts

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if counts.FasesRequerimento, err = seedFases(tx, fasesRequerimento, database.FaseTipoRequerimento); err != nil {
			return err
		}
		if counts.FasesAlvara, err = seedFases(tx, fasesAlvara, database.FaseTipoAlvara); err != nil {
			return err
		}
		if counts.FasesHonorarios, err = seedFasesHonorarios(tx, fasesHonorarios); err != nil {
			return err
		}
		if counts.TiposDiligencia, err = seedTiposDiligencia(tx, tiposDiligencia); err != nil {
			return err
		}
		if counts.TiposPrecatorio, err = seedTiposPrecatorio(tx, tiposPrecatorio); err != nil {
			return err
		}
		if counts.PedidosRequerimento, err = seedPedidosRequerimento(tx, pedidosRequerimento); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return Counts{}, err
	}

	report(log, "fases de requerimento", counts.FasesRequerimento)
	report(log, "fases de alvará", counts.FasesAlvara)
	report(log, "fases de honorários", counts.FasesHonorarios)
	report(log, "tipos de diligência", counts.TiposDiligencia)
	report(log, "tipos de precatório", counts.TiposPrecatorio)
	report(log, "pedidos de requerimento", counts.PedidosRequerimento)

	return counts, nil
}

func report(log *logger.Logger, category string, created int) {
	if created > 0 {
		log.Info("Reference data created", "category", category, "created", created)
	} else {
		log.Info("Reference data already exist", "category", category)
	}
}

func seedFases(tx *gorm.DB, entries []entry, tipo string) (int, error) {
	created := 0
	for _, e := range entries {
		fase := database.Fase{
			Nome: e.Nome,
			Tipo: tipo,
		}
		res := tx.Where("nome = ? AND tipo = ?", e.Nome, tipo).
			Attrs(database.Fase{
				Descricao: e.Descricao,
				Cor:       e.Cor,
				Ordem:     e.Ordem,
				Ativa:     true,
			}).
			FirstOrCreate(&fase)
		if res.Error != nil {
			return 0, res.Error
		}
		created += int(res.RowsAffected)
	}
	return created, nil
}

func seedFasesHonorarios(tx *gorm.DB, entries []entry) (int, error) {
	created := 0
	for _, e := range entries {
		fase := database.FaseHonorariosContratuais{Nome: e.Nome}
		res := tx.Where("nome = ?", e.Nome).
			Attrs(database.FaseHonorariosContratuais{
				Descricao: e.Descricao,
				Cor:       e.Cor,
				Ordem:     e.Ordem,
				Ativa:     true,
			}).
			FirstOrCreate(&fase)
		if res.Error != nil {
			return 0, res.Error
		}
		created += int(res.RowsAffected)
	}
	return created, nil
}

func seedTiposDiligencia(tx *gorm.DB, entries []entry) (int, error) {
	created := 0
	for _, e := range entries {
		tipo := database.TipoDiligencia{Nome: e.Nome}
		res := tx.Where("nome = ?", e.Nome).
			Attrs(database.TipoDiligencia{
				Descricao: e.Descricao,
				Cor:       e.Cor,
				Ordem:     e.Ordem,
				Ativo:     true,
			}).
			FirstOrCreate(&tipo)
		if res.Error != nil {
			return 0, res.Error
		}
		created += int(res.RowsAffected)
	}
	return created, nil
}

func seedTiposPrecatorio(tx *gorm.DB, entries []entry) (int, error) {
	created := 0
	for _, e := range entries {
		tipo := database.Tipo{Nome: e.Nome}
		res := tx.Where("nome = ?", e.Nome).
			Attrs(database.Tipo{
				Descricao: e.Descricao,
				Cor:       e.Cor,
				Ordem:     e.Ordem,
				Ativa:     true,
			}).
			FirstOrCreate(&tipo)
		if res.Error != nil {
			return 0, res.Error
		}
		created += int(res.RowsAffected)
	}
	return created, nil
}

func seedPedidosRequerimento(tx *gorm.DB, entries []entry) (int, error) {
	created := 0
	for _, e := range entries {
		pedido := database.PedidoRequerimento{Nome: e.Nome}
		res := tx.Where("nome = ?", e.Nome).
			Attrs(database.PedidoRequerimento{
				Descricao: e.Descricao,
				Cor:       e.Cor,
				Ordem:     e.Ordem,
				Ativo:     true,
			}).
			FirstOrCreate(&pedido)
		if res.Error != nil {
			return 0, res.Error
		}
		created += int(res.RowsAffected)
	}
	return created, nil
}
