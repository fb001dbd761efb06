package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/precapp/precapp/internal/cache"
	"github.com/precapp/precapp/internal/config"
	"github.com/precapp/precapp/internal/database"
	"github.com/precapp/precapp/pkg/logger"
	"gorm.io/gorm"
)

// Handlers holds all HTTP handlers
type Handlers struct {
	db     *gorm.DB
	cache  cache.Cache
	logger *logger.Logger
	cfg    *config.Config
}

// NewHandlers creates a new handlers instance
func NewHandlers(db *gorm.DB, cache cache.Cache, logger *logger.Logger, cfg *config.Config) *Handlers {
	return &Handlers{
		db:     db,
		cache:  cache,
		logger: logger,
		cfg:    cfg,
	}
}

// HealthCheck returns the health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	var count int64
	dbHealthy := h.db.Model(&database.Precatorio{}).Count(&count).Error == nil

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": dbHealthy,
		"cache":    h.cache.Stats(),
		"time":     time.Now().Unix(),
	})
}

// ListPrecatorios returns precatórios with optional filters and pagination
func (h *Handlers) ListPrecatorios(c *gin.Context) {
	query := h.db.Model(&database.Precatorio{}).Preload("Tipo")

	if orcamento := c.Query("orcamento"); orcamento != "" {
		query = query.Where("orcamento = ?", orcamento)
	}
	if status := c.Query("credito_principal"); status != "" {
		query = query.Where("credito_principal = ?", status)
	}
	if tipo := c.Query("tipo"); tipo != "" {
		query = query.Joins("JOIN tipos ON tipos.id = precatorios.tipo_id").
			Where("tipos.nome = ?", tipo)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	var precatorios []database.Precatorio
	if err := query.Offset(offset).Limit(limit).Order("cnj").Find(&precatorios).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    precatorios,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetPrecatorio returns a single precatório with its clients
func (h *Handlers) GetPrecatorio(c *gin.Context) {
	cnj := c.Param("cnj")

	var precatorio database.Precatorio
	err := h.db.Preload("Tipo").Preload("Clientes").
		Where("cnj = ?", cnj).
		First(&precatorio).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "precatório not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    precatorio,
	})
}

type createPrecatorioRequest struct {
	CNJ                     string   `json:"cnj" binding:"required"`
	Orcamento               *int     `json:"orcamento"`
	Origem                  string   `json:"origem"`
	CreditoPrincipal        string   `json:"credito_principal"`
	HonorariosContratuais   string   `json:"honorarios_contratuais"`
	HonorariosSucumbenciais string   `json:"honorarios_sucumbenciais"`
	ValorDeFace             float64  `json:"valor_de_face"`
	UltimaAtualizacao       *float64 `json:"ultima_atualizacao"`
	TipoID                  *uint    `json:"tipo_id"`
}

// CreatePrecatorio inserts a new precatório
func (h *Handlers) CreatePrecatorio(c *gin.Context) {
	var req createPrecatorioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	if req.Orcamento != nil && (*req.Orcamento < 1988 || *req.Orcamento > 2050) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "orcamento must be between 1988 and 2050",
		})
		return
	}
	for _, s := range []string{req.CreditoPrincipal, req.HonorariosContratuais, req.HonorariosSucumbenciais} {
		if s != "" && !validStatus(s) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "invalid payment status: " + s,
			})
			return
		}
	}

	ultima := req.ValorDeFace
	if req.UltimaAtualizacao != nil {
		ultima = *req.UltimaAtualizacao
	}

	precatorio := database.Precatorio{
		CNJ:                     req.CNJ,
		Orcamento:               req.Orcamento,
		Origem:                  req.Origem,
		CreditoPrincipal:        req.CreditoPrincipal,
		HonorariosContratuais:   req.HonorariosContratuais,
		HonorariosSucumbenciais: req.HonorariosSucumbenciais,
		ValorDeFace:             req.ValorDeFace,
		UltimaAtualizacao:       ultima,
		TipoID:                  req.TipoID,
	}

	if err := h.db.Create(&precatorio).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	h.cache.Delete(cache.StatsKey)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    precatorio,
	})
}

// ListClientes returns clients with optional name and priority filters
func (h *Handlers) ListClientes(c *gin.Context) {
	query := h.db.Model(&database.Cliente{})

	if nome := c.Query("nome"); nome != "" {
		query = query.Where("nome LIKE ?", "%"+nome+"%")
	}
	if prioridade := c.Query("prioridade"); prioridade != "" {
		query = query.Where("prioridade = ?", prioridade == "true" || prioridade == "1")
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	var clientes []database.Cliente
	if err := query.Offset(offset).Limit(limit).Order("nome").Find(&clientes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    clientes,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetCliente returns a single client with their precatórios
func (h *Handlers) GetCliente(c *gin.Context) {
	cpf := c.Param("cpf")

	var cliente database.Cliente
	err := h.db.Preload("Precatorios").Where("cpf = ?", cpf).First(&cliente).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "cliente not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    cliente,
	})
}

type createClienteRequest struct {
	CPF        string `json:"cpf" binding:"required"`
	Nome       string `json:"nome" binding:"required"`
	Nascimento string `json:"nascimento"`
	Prioridade bool   `json:"prioridade"`
}

// CreateCliente inserts a new client
func (h *Handlers) CreateCliente(c *gin.Context) {
	var req createClienteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	cliente := database.Cliente{
		CPF:        req.CPF,
		Nome:       req.Nome,
		Prioridade: req.Prioridade,
	}
	if req.Nascimento != "" {
		t, err := time.Parse("2006-01-02", req.Nascimento)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "nascimento must be YYYY-MM-DD",
			})
			return
		}
		cliente.Nascimento = &t
	}

	if err := h.db.Create(&cliente).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	h.cache.Delete(cache.StatsKey)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    cliente,
	})
}

// ListContas returns bank accounts ordered by bank and branch
func (h *Handlers) ListContas(c *gin.Context) {
	var contas []database.ContaBancaria
	if err := h.db.Order("banco, agencia").Find(&contas).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    contas,
	})
}

type createContaRequest struct {
	Banco       string `json:"banco" binding:"required"`
	TipoDeConta string `json:"tipo_de_conta" binding:"required"`
	Agencia     string `json:"agencia" binding:"required"`
	Conta       string `json:"conta" binding:"required"`
}

// CreateConta inserts a new bank account
func (h *Handlers) CreateConta(c *gin.Context) {
	var req createContaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	if req.TipoDeConta != "corrente" && req.TipoDeConta != "poupanca" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "tipo_de_conta must be corrente or poupanca",
		})
		return
	}

	conta := database.ContaBancaria{
		Banco:       req.Banco,
		TipoDeConta: req.TipoDeConta,
		Agencia:     req.Agencia,
		Conta:       req.Conta,
	}
	if err := h.db.Create(&conta).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    conta,
	})
}

// DeleteConta removes a bank account unless it has recorded receipts
func (h *Handlers) DeleteConta(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "invalid account ID",
		})
		return
	}

	err = database.DeleteContaBancaria(h.db, uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "conta not found",
		})
		return
	}
	if errors.Is(err, database.ErrContaComRecebimentos) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   "cannot delete: " + err.Error(),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "conta deleted",
	})
}

type createRecebimentoRequest struct {
	NumeroDocumento string  `json:"numero_documento" binding:"required"`
	AlvaraID        uint    `json:"alvara_id" binding:"required"`
	ContaBancariaID uint    `json:"conta_bancaria_id" binding:"required"`
	Data            string  `json:"data" binding:"required"`
	Valor           float64 `json:"valor" binding:"required"`
	Tipo            string  `json:"tipo" binding:"required"`
}

// CreateRecebimento records a fee payment into a bank account
func (h *Handlers) CreateRecebimento(c *gin.Context) {
	var req createRecebimentoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	data, err := time.Parse("2006-01-02", req.Data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "data must be YYYY-MM-DD",
		})
		return
	}

	// A receipt without an existing account or alvará is a client error, not
	// a constraint violation surfacing as 500.
	var conta database.ContaBancaria
	if err := h.db.First(&conta, req.ContaBancariaID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "conta bancária does not exist",
		})
		return
	}
	var alvara database.Alvara
	if err := h.db.First(&alvara, req.AlvaraID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "alvará does not exist",
		})
		return
	}

	recebimento := database.Recebimento{
		NumeroDocumento: req.NumeroDocumento,
		AlvaraID:        req.AlvaraID,
		ContaBancariaID: req.ContaBancariaID,
		Data:            data,
		Valor:           req.Valor,
		Tipo:            req.Tipo,
	}
	if err := h.db.Create(&recebimento).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	h.cache.Delete(cache.StatsKey)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    recebimento,
	})
}

// GetStats returns the aggregate snapshot, served from cache when fresh
func (h *Handlers) GetStats(c *gin.Context) {
	if stats, found := h.cache.Get(cache.StatsKey); found {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"data":      stats,
			"fromCache": true,
		})
		return
	}

	stats, err := database.ComputeStatistics(h.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	h.cache.Set(cache.StatsKey, stats)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      stats,
		"fromCache": false,
	})
}

// CacheStats returns cache statistics
func (h *Handlers) CacheStats(c *gin.Context) {
	stats := h.cache.Stats()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

func validStatus(s string) bool {
	switch s {
	case database.StatusPendente, database.StatusParcial, database.StatusQuitado, database.StatusVendido:
		return true
	}
	return false
}
