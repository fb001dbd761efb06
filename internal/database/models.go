package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Payment status values shared by the three fee categories of a precatório.
const (
	StatusPendente = "pendente"
	StatusParcial  = "parcial"
	StatusQuitado  = "quitado"
	StatusVendido  = "vendido"
)

// Fase tipo values
const (
	FaseTipoAlvara       = "alvara"
	FaseTipoRequerimento = "requerimento"
	FaseTipoAmbos        = "ambos"
)

// Urgencia values for diligências
const (
	UrgenciaBaixa = "baixa"
	UrgenciaMedia = "media"
	UrgenciaAlta  = "alta"
)

// PedidoChoices is the closed set of request categories a Requerimento may
// carry. Exactly one per record.
var PedidoChoices = []string{
	"prioridade doença",
	"prioridade idade",
	"acordo principal",
	"acordo honorários contratuais",
	"acordo honorários sucumbenciais",
}

// Fase is a workflow phase for alvarás and/or requerimentos. Name is unique
// within its tipo, so the same name may exist for both kinds.
type Fase struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Nome         string    `json:"nome" gorm:"size:100;uniqueIndex:idx_fases_nome_tipo"`
	Descricao    string    `json:"descricao"`
	Cor          string    `json:"cor" gorm:"size:7;default:#6c757d"`
	Tipo         string    `json:"tipo" gorm:"size:20;uniqueIndex:idx_fases_nome_tipo"`
	Ordem        int       `json:"ordem" gorm:"default:0"`
	Ativa        bool      `json:"ativa" gorm:"default:true"`
	CriadoEm     time.Time `json:"criado_em" gorm:"autoCreateTime"`
	AtualizadoEm time.Time `json:"atualizado_em" gorm:"autoUpdateTime"`
}

// FaseHonorariosContratuais is a separate phase track for contractual fee
// collection on alvarás.
type FaseHonorariosContratuais struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Nome         string    `json:"nome" gorm:"size:100;uniqueIndex"`
	Descricao    string    `json:"descricao"`
	Cor          string    `json:"cor" gorm:"size:7;default:#6c757d"`
	Ordem        int       `json:"ordem" gorm:"default:0"`
	Ativa        bool      `json:"ativa" gorm:"default:true"`
	CriadoEm     time.Time `json:"criado_em" gorm:"autoCreateTime"`
	AtualizadoEm time.Time `json:"atualizado_em" gorm:"autoUpdateTime"`
}

func (FaseHonorariosContratuais) TableName() string {
	return "fases_honorarios_contratuais"
}

// Tipo classifies precatórios (Descompressão, URV, Reclassificação, ...).
type Tipo struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Nome         string    `json:"nome" gorm:"size:100;uniqueIndex"`
	Descricao    string    `json:"descricao"`
	Cor          string    `json:"cor" gorm:"size:7;default:#007bff"`
	Ordem        int       `json:"ordem" gorm:"default:0"`
	Ativa        bool      `json:"ativa" gorm:"default:true"`
	CriadoEm     time.Time `json:"criado_em" gorm:"autoCreateTime"`
	AtualizadoEm time.Time `json:"atualizado_em" gorm:"autoUpdateTime"`
}

// TipoDiligencia classifies diligências assigned to clients.
type TipoDiligencia struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Nome         string    `json:"nome" gorm:"size:100;uniqueIndex"`
	Descricao    string    `json:"descricao"`
	Cor          string    `json:"cor" gorm:"size:7;default:#007bff"`
	Ordem        int       `json:"ordem" gorm:"default:0"`
	Ativo        bool      `json:"ativo" gorm:"default:true"`
	CriadoEm     time.Time `json:"criado_em" gorm:"autoCreateTime"`
	AtualizadoEm time.Time `json:"atualizado_em" gorm:"autoUpdateTime"`
}

func (TipoDiligencia) TableName() string {
	return "tipos_diligencia"
}

// PedidoRequerimento is the configurable catalogue of request types shown to
// users when filing a requerimento.
type PedidoRequerimento struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Nome         string    `json:"nome" gorm:"size:100;uniqueIndex"`
	Descricao    string    `json:"descricao"`
	Cor          string    `json:"cor" gorm:"size:7;default:#007bff"`
	Ordem        int       `json:"ordem" gorm:"default:0"`
	Ativo        bool      `json:"ativo" gorm:"default:true"`
	CriadoEm     time.Time `json:"criado_em" gorm:"autoCreateTime"`
	AtualizadoEm time.Time `json:"atualizado_em" gorm:"autoUpdateTime"`
}

func (PedidoRequerimento) TableName() string {
	return "pedidos_requerimento"
}

// Precatorio is a court payment order, identified by its CNJ process number.
type Precatorio struct {
	CNJ                           string     `json:"cnj" gorm:"primaryKey;column:cnj;size:200"`
	Orcamento                     *int       `json:"orcamento"`
	Origem                        string     `json:"origem" gorm:"size:200"`
	CreditoPrincipal              string     `json:"credito_principal" gorm:"size:20;default:pendente"`
	HonorariosContratuais         string     `json:"honorarios_contratuais" gorm:"size:20;default:pendente"`
	HonorariosSucumbenciais       string     `json:"honorarios_sucumbenciais" gorm:"size:20;default:pendente"`
	ValorDeFace                   float64    `json:"valor_de_face"`
	UltimaAtualizacao             float64    `json:"ultima_atualizacao"`
	DataUltimaAtualizacao         *time.Time `json:"data_ultima_atualizacao"`
	PercentualContratuaisAssinado float64    `json:"percentual_contratuais_assinado"`
	PercentualContratuaisApartado float64    `json:"percentual_contratuais_apartado"`
	PercentualSucumbenciais       float64    `json:"percentual_sucumbenciais"`

	TipoID *uint `json:"tipo_id"`
	Tipo   *Tipo `json:"tipo,omitempty" gorm:"foreignKey:TipoID;constraint:OnDelete:SET NULL"`

	Clientes []Cliente `json:"clientes,omitempty" gorm:"many2many:precatorio_clientes;foreignKey:CNJ;joinForeignKey:PrecatorioCNJ;references:CPF;joinReferences:ClienteCPF"`
}

func (Precatorio) TableName() string {
	return "precatorios"
}

// BeforeCreate fills the payment status columns with the pending default
// when callers leave them empty.
func (p *Precatorio) BeforeCreate(tx *gorm.DB) error {
	if p.CreditoPrincipal == "" {
		p.CreditoPrincipal = StatusPendente
	}
	if p.HonorariosContratuais == "" {
		p.HonorariosContratuais = StatusPendente
	}
	if p.HonorariosSucumbenciais == "" {
		p.HonorariosSucumbenciais = StatusPendente
	}
	return nil
}

// Cliente is a person or company holding rights on precatórios. The CPF (or
// CNPJ) is stored digits-only and is the primary key.
type Cliente struct {
	CPF        string     `json:"cpf" gorm:"primaryKey;column:cpf;size:18"`
	Nome       string     `json:"nome" gorm:"size:400"`
	Nascimento *time.Time `json:"nascimento"`
	Prioridade bool       `json:"prioridade"`

	Precatorios []Precatorio `json:"precatorios,omitempty" gorm:"many2many:precatorio_clientes;foreignKey:CPF;joinForeignKey:ClienteCPF;references:CNJ;joinReferences:PrecatorioCNJ"`
}

func (Cliente) TableName() string {
	return "clientes"
}

// Alvara authorizes the release of funds from a precatório to a client.
type Alvara struct {
	ID                          uint    `json:"id" gorm:"primaryKey"`
	PrecatorioCNJ               string  `json:"precatorio_cnj" gorm:"column:precatorio_cnj;size:200;index"`
	ClienteCPF                  string  `json:"cliente_cpf" gorm:"column:cliente_cpf;size:18;index"`
	ValorPrincipal              float64 `json:"valor_principal"`
	HonorariosContratuais       float64 `json:"honorarios_contratuais"`
	HonorariosSucumbenciais     float64 `json:"honorarios_sucumbenciais"`
	Tipo                        string  `json:"tipo" gorm:"size:100"`
	FaseID                      *uint   `json:"fase_id"`
	FaseHonorariosContratuaisID *uint   `json:"fase_honorarios_contratuais_id"`

	Precatorio                *Precatorio                `json:"precatorio,omitempty" gorm:"foreignKey:PrecatorioCNJ;references:CNJ;constraint:OnDelete:CASCADE"`
	Cliente                   *Cliente                   `json:"cliente,omitempty" gorm:"foreignKey:ClienteCPF;references:CPF;constraint:OnDelete:CASCADE"`
	Fase                      *Fase                      `json:"fase,omitempty" gorm:"foreignKey:FaseID;constraint:OnDelete:RESTRICT"`
	FaseHonorariosContratuais *FaseHonorariosContratuais `json:"fase_honorarios_contratuais,omitempty" gorm:"foreignKey:FaseHonorariosContratuaisID;constraint:OnDelete:RESTRICT"`
}

func (Alvara) TableName() string {
	return "alvaras"
}

// BeforeSave rejects alvarás whose client is not linked to the precatório.
func (a *Alvara) BeforeSave(tx *gorm.DB) error {
	return checkClienteVinculado(tx, a.PrecatorioCNJ, a.ClienteCPF)
}

// Requerimento is a formal legal request filed on a precatório.
type Requerimento struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	PrecatorioCNJ string  `json:"precatorio_cnj" gorm:"column:precatorio_cnj;size:200;index"`
	ClienteCPF    string  `json:"cliente_cpf" gorm:"column:cliente_cpf;size:18;index"`
	Valor         float64 `json:"valor"`
	Desagio       float64 `json:"desagio"`
	Pedido        string  `json:"pedido" gorm:"size:50"`
	FaseID        *uint   `json:"fase_id"`

	Precatorio *Precatorio `json:"precatorio,omitempty" gorm:"foreignKey:PrecatorioCNJ;references:CNJ;constraint:OnDelete:CASCADE"`
	Cliente    *Cliente    `json:"cliente,omitempty" gorm:"foreignKey:ClienteCPF;references:CPF;constraint:OnDelete:CASCADE"`
	Fase       *Fase       `json:"fase,omitempty" gorm:"foreignKey:FaseID;constraint:OnDelete:RESTRICT"`
}

func (Requerimento) TableName() string {
	return "requerimentos"
}

// BeforeSave enforces the single-choice pedido field and the client link.
func (r *Requerimento) BeforeSave(tx *gorm.DB) error {
	if !IsValidPedido(r.Pedido) {
		return fmt.Errorf("pedido inválido: %q", r.Pedido)
	}
	return checkClienteVinculado(tx, r.PrecatorioCNJ, r.ClienteCPF)
}

// IsValidPedido reports whether pedido is one of the allowed request
// categories.
func IsValidPedido(pedido string) bool {
	for _, p := range PedidoChoices {
		if p == pedido {
			return true
		}
	}
	return false
}

func checkClienteVinculado(tx *gorm.DB, cnj, cpf string) error {
	var n int64
	err := tx.Table("precatorio_clientes").
		Where("precatorio_cnj = ? AND cliente_cpf = ?", cnj, cpf).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("cliente %s não está vinculado ao precatório %s", cpf, cnj)
	}
	return nil
}

// Diligencia is a due-diligence task assigned to a client.
type Diligencia struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	ClienteCPF    string     `json:"cliente_cpf" gorm:"column:cliente_cpf;size:18;index"`
	TipoID        uint       `json:"tipo_id"`
	DataFinal     time.Time  `json:"data_final"`
	Urgencia      string     `json:"urgencia" gorm:"size:10;default:media"`
	CriadoPor     string     `json:"criado_por" gorm:"size:100"`
	Descricao     string     `json:"descricao"`
	Concluida     bool       `json:"concluida"`
	DataConclusao *time.Time `json:"data_conclusao"`
	CriadoEm      time.Time  `json:"criado_em" gorm:"autoCreateTime"`
	AtualizadoEm  time.Time  `json:"atualizado_em" gorm:"autoUpdateTime"`

	Cliente *Cliente        `json:"cliente,omitempty" gorm:"foreignKey:ClienteCPF;references:CPF;constraint:OnDelete:CASCADE"`
	Tipo    *TipoDiligencia `json:"tipo,omitempty" gorm:"foreignKey:TipoID;constraint:OnDelete:RESTRICT"`
}

func (Diligencia) TableName() string {
	return "diligencias"
}

// ContaBancaria is a bank account used to receive fee payments.
type ContaBancaria struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Banco       string    `json:"banco" gorm:"size:200"`
	TipoDeConta string    `json:"tipo_de_conta" gorm:"size:20"`
	Agencia     string    `json:"agencia" gorm:"size:20"`
	Conta       string    `json:"conta" gorm:"size:30"`
	CriadoEm    time.Time `json:"criado_em" gorm:"autoCreateTime"`
}

func (ContaBancaria) TableName() string {
	return "contas_bancarias"
}

// Recebimento records a fee payment received into a bank account against an
// alvará. An account with recorded receipts cannot be deleted.
type Recebimento struct {
	NumeroDocumento string    `json:"numero_documento" gorm:"primaryKey;size:50"`
	AlvaraID        uint      `json:"alvara_id" gorm:"index"`
	ContaBancariaID uint      `json:"conta_bancaria_id" gorm:"index"`
	Data            time.Time `json:"data"`
	Valor           float64   `json:"valor"`
	Tipo            string    `json:"tipo" gorm:"size:30"`

	Alvara        *Alvara        `json:"alvara,omitempty" gorm:"foreignKey:AlvaraID;constraint:OnDelete:CASCADE"`
	ContaBancaria *ContaBancaria `json:"conta_bancaria,omitempty" gorm:"foreignKey:ContaBancariaID;constraint:OnDelete:RESTRICT"`
}

func (Recebimento) TableName() string {
	return "recebimentos"
}
