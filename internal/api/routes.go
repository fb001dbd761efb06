package api

import (
	"github.com/gin-gonic/gin"
	"github.com/precapp/precapp/internal/cache"
	"github.com/precapp/precapp/internal/config"
	"github.com/precapp/precapp/pkg/logger"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, cache cache.Cache, logger *logger.Logger, cfg *config.Config) {
	h := NewHandlers(db, cache, logger, cfg)

	api := router.Group("/api")
	{
		// Health check
		api.GET("/health", h.HealthCheck)

		// Precatório endpoints
		api.GET("/precatorios", h.ListPrecatorios)
		api.GET("/precatorios/:cnj", h.GetPrecatorio)
		api.POST("/precatorios", h.CreatePrecatorio)

		// Cliente endpoints
		api.GET("/clientes", h.ListClientes)
		api.GET("/clientes/:cpf", h.GetCliente)
		api.POST("/clientes", h.CreateCliente)

		// Bank accounts and receipts
		api.GET("/contas", h.ListContas)
		api.POST("/contas", h.CreateConta)
		api.DELETE("/contas/:id", h.DeleteConta)
		api.POST("/recebimentos", h.CreateRecebimento)

		// Statistics
		api.GET("/stats", h.GetStats)
		api.GET("/cache/stats", h.CacheStats)
	}
}
