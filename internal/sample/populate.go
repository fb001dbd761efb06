// Package sample fills the database with a small, fixed demo dataset: five
// precatórios, five clientes, five alvarás and five requerimentos. Running it
// twice is safe, every record is keyed by its natural identifiers.
package sample

import (
	"time"

	"gorm.io/gorm"

	"github.com/precapp/precapp/internal/database"
	"github.com/precapp/precapp/pkg/logger"
)

type precatorioFixture struct {
	CNJ                           string
	Orcamento                     int
	Origem                        string
	CreditoPrincipal              string
	ValorDeFace                   float64
	UltimaAtualizacao             float64
	DataUltimaAtualizacao         time.Time
	PercentualContratuaisAssinado float64
	PercentualContratuaisApartado float64
	PercentualSucumbenciais       float64
}

type clienteFixture struct {
	CPF        string
	Nome       string
	Nascimento time.Time
	Prioridade bool
}

type alvaraFixture struct {
	PrecatorioCNJ           string
	ClienteCPF              string
	ValorPrincipal          float64
	HonorariosContratuais   float64
	HonorariosSucumbenciais float64
	Tipo                    string
	Fase                    string
}

type requerimentoFixture struct {
	PrecatorioCNJ string
	ClienteCPF    string
	Valor         float64
	Desagio       float64
	Pedido        string
	Fase          string
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var precatorios = []precatorioFixture{
	{"1234567-89.2023.8.26.0100", 2023, "5432109-87.2022.8.26.0001", database.StatusPendente, 150000.00, 185000.00, day(2024, 12, 1), 20.00, 5.00, 10.00},
	{"2345678-90.2023.8.26.0200", 2023, "6543210-98.2022.8.26.0002", database.StatusQuitado, 85000.00, 98000.00, day(2024, 8, 15), 15.00, 0.00, 8.00},
	{"3456789-01.2024.8.26.0300", 2024, "7654321-09.2023.8.26.0003", database.StatusPendente, 220000.00, 265000.00, day(2024, 11, 30), 25.00, 10.00, 12.00},
	{"4567890-12.2024.8.26.0400", 2024, "8765432-10.2023.8.26.0004", database.StatusPendente, 75000.00, 82000.00, day(2024, 10, 20), 18.00, 3.00, 9.00},
	{"5678901-23.2024.8.26.0500", 2024, "9876543-21.2023.8.26.0005", database.StatusPendente, 320000.00, 385000.00, day(2024, 12, 5), 30.00, 15.00, 15.00},
}

var clientes = []clienteFixture{
	{"12345678901", "Maria Silva Santos", day(1965, 4, 12), true},
	{"23456789012", "João Pedro Oliveira", day(1972, 8, 25), false},
	{"34567890123", "Ana Carolina Ferreira", day(1958, 11, 3), true},
	{"45678901234", "Carlos Eduardo Lima", day(1980, 2, 18), false},
	{"56789012345", "Fernanda Costa Almeida", day(1955, 7, 30), true},
}

var alvaras = []alvaraFixture{
	{"1234567-89.2023.8.26.0100", "12345678901", 120000.00, 24000.00, 12000.00, "prioridade", "Crédito Depositado Judicialmente"},
	{"2345678-90.2023.8.26.0200", "23456789012", 68000.00, 10200.00, 5440.00, "acordo", "Recebido Pelo Cliente"},
	{"3456789-01.2024.8.26.0300", "34567890123", 180000.00, 45000.00, 21600.00, "prioridade", "Aguardando Depósito Judicial"},
	{"4567890-12.2024.8.26.0400", "45678901234", 60000.00, 10800.00, 5400.00, "acordo", "Crédito Depositado Judicialmente"},
	{"5678901-23.2024.8.26.0500", "56789012345", 250000.00, 75000.00, 37500.00, "ordem cronológica", "Aguardando Depósito Judicial"},
}

var requerimentos = []requerimentoFixture{
	{"1234567-89.2023.8.26.0100", "12345678901", 15000.00, 5.00, "prioridade idade", "Organizar Documentos"},
	{"2345678-90.2023.8.26.0200", "23456789012", 8000.00, 12.50, "acordo principal", "Deferido"},
	{"3456789-01.2024.8.26.0300", "34567890123", 22000.00, 8.00, "prioridade doença", "Protocolado"},
	{"4567890-12.2024.8.26.0400", "45678901234", 6500.00, 15.00, "acordo honorários contratuais", "Organizar Documentos"},
	{"5678901-23.2024.8.26.0500", "56789012345", 35000.00, 10.00, "acordo honorários sucumbenciais", "Protocolado"},
}

// Created counts the records this run actually inserted.
type Created struct {
	Precatorios   int `json:"precatorios"`
	Clientes      int `json:"clientes"`
	Alvaras       int `json:"alvaras"`
	Requerimentos int `json:"requerimentos"`
}

// Result is the outcome of a populate run: what was inserted plus the
// database-wide aggregates afterwards.
type Result struct {
	Created Created
	Stats   *database.Statistics
}

// Populate inserts the demo dataset inside a single transaction. With clear
// set, existing case data is wiped first; the lookup catalogues are kept.
func Populate(db *gorm.DB, log *logger.Logger, clear bool) (*Result, error) {
	result := &Result{}

	err := db.Transaction(func(tx *gorm.DB) error {
		if clear {
			log.Info("Clearing existing data")
			if err := clearData(tx); err != nil {
				return err
			}
		}

		for _, p := range precatorios {
			orcamento := p.Orcamento
			data := p.DataUltimaAtualizacao
			row := database.Precatorio{CNJ: p.CNJ}
			res := tx.Where("cnj = ?", p.CNJ).Attrs(database.Precatorio{
				Orcamento:                     &orcamento,
				Origem:                        p.Origem,
				CreditoPrincipal:              p.CreditoPrincipal,
				HonorariosContratuais:         database.StatusPendente,
				HonorariosSucumbenciais:       database.StatusPendente,
				ValorDeFace:                   p.ValorDeFace,
				UltimaAtualizacao:             p.UltimaAtualizacao,
				DataUltimaAtualizacao:         &data,
				PercentualContratuaisAssinado: p.PercentualContratuaisAssinado,
				PercentualContratuaisApartado: p.PercentualContratuaisApartado,
				PercentualSucumbenciais:       p.PercentualSucumbenciais,
			}).FirstOrCreate(&row)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				result.Created.Precatorios++
				log.Info("Created precatório", "cnj", p.CNJ)
			} else {
				log.Info("Precatório already exists", "cnj", p.CNJ)
			}
		}

		for _, c := range clientes {
			nascimento := c.Nascimento
			row := database.Cliente{CPF: c.CPF}
			res := tx.Where("cpf = ?", c.CPF).Attrs(database.Cliente{
				Nome:       c.Nome,
				Nascimento: &nascimento,
				Prioridade: c.Prioridade,
			}).FirstOrCreate(&row)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				result.Created.Clientes++
				log.Info("Created cliente", "nome", c.Nome, "cpf", c.CPF)
			} else {
				log.Info("Cliente already exists", "nome", c.Nome, "cpf", c.CPF)
			}
		}

		// Links must exist before alvarás and requerimentos: both validate
		// that their cliente belongs to the precatório on save.
		for i := range precatorios {
			if err := database.LinkCliente(tx, precatorios[i].CNJ, clientes[i].CPF); err != nil {
				return err
			}
		}

		for _, a := range alvaras {
			faseID, err := resolveFase(tx, a.Fase, database.FaseTipoAlvara)
			if err != nil {
				return err
			}
			row := database.Alvara{}
			res := tx.Where("precatorio_cnj = ? AND cliente_cpf = ?", a.PrecatorioCNJ, a.ClienteCPF).
				Attrs(database.Alvara{
					PrecatorioCNJ:           a.PrecatorioCNJ,
					ClienteCPF:              a.ClienteCPF,
					ValorPrincipal:          a.ValorPrincipal,
					HonorariosContratuais:   a.HonorariosContratuais,
					HonorariosSucumbenciais: a.HonorariosSucumbenciais,
					Tipo:                    a.Tipo,
					FaseID:                  faseID,
				}).FirstOrCreate(&row)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				result.Created.Alvaras++
				log.Info("Created alvará", "tipo", a.Tipo, "cnj", a.PrecatorioCNJ)
			} else {
				log.Info("Alvará already exists", "cnj", a.PrecatorioCNJ, "cpf", a.ClienteCPF)
			}
		}

		for _, r := range requerimentos {
			faseID, err := resolveFase(tx, r.Fase, database.FaseTipoRequerimento)
			if err != nil {
				return err
			}
			row := database.Requerimento{}
			res := tx.Where("precatorio_cnj = ? AND cliente_cpf = ? AND pedido = ?", r.PrecatorioCNJ, r.ClienteCPF, r.Pedido).
				Attrs(database.Requerimento{
					PrecatorioCNJ: r.PrecatorioCNJ,
					ClienteCPF:    r.ClienteCPF,
					Valor:         r.Valor,
					Desagio:       r.Desagio,
					Pedido:        r.Pedido,
					FaseID:        faseID,
				}).FirstOrCreate(&row)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				result.Created.Requerimentos++
				log.Info("Created requerimento", "pedido", r.Pedido, "cnj", r.PrecatorioCNJ)
			} else {
				log.Info("Requerimento already exists", "pedido", r.Pedido, "cnj", r.PrecatorioCNJ)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	stats, err := database.ComputeStatistics(db)
	if err != nil {
		return nil, err
	}
	result.Stats = stats
	return result, nil
}

// clearData removes case data in dependency order. Lookup tables stay.
func clearData(tx *gorm.DB) error {
	for _, stmt := range []string{
		"DELETE FROM recebimentos",
		"DELETE FROM requerimentos",
		"DELETE FROM alvaras",
		"DELETE FROM diligencias",
		"DELETE FROM precatorio_clientes",
		"DELETE FROM clientes",
		"DELETE FROM precatorios",
	} {
		if err := tx.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// resolveFase resolves a phase by name and kind, creating it when the catalogue
// was never seeded so populate works on a fresh database.
func resolveFase(tx *gorm.DB, nome, tipo string) (*uint, error) {
	fase := database.Fase{Nome: nome, Tipo: tipo}
	res := tx.Where("nome = ? AND tipo = ?", nome, tipo).
		Attrs(database.Fase{Ativa: true}).
		FirstOrCreate(&fase)
	if res.Error != nil {
		return nil, res.Error
	}
	return &fase.ID, nil
}
