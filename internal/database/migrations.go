package database

import (
	"fmt"

	"gorm.io/gorm"
)

// RunMigrations executes all database migrations beyond the schema itself
func RunMigrations(db *gorm.DB) error {
	if err := Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createIndexes creates database indexes for the common list filters
func createIndexes(db *gorm.DB) error {
	// Precatório listings filter by budget year and payment status
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_precatorios_filter
		ON precatorios(orcamento, credito_principal)
	`).Error; err != nil {
		return err
	}

	// Client lookups by name
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_clientes_nome
		ON clientes(nome)
	`).Error; err != nil {
		return err
	}

	// Pending diligência dashboards sort by deadline
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_diligencias_data_final
		ON diligencias(data_final)
	`).Error; err != nil {
		return err
	}

	return nil
}
