package sample

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/precapp/precapp/internal/database"
	"github.com/precapp/precapp/internal/reference"
	"github.com/precapp/precapp/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger("error", "console")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

func TestPopulateCreatesFixtures(t *testing.T) {
	db := newTestDB(t)
	log := testLogger(t)
	if _, err := reference.Seed(db, log); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	result, err := Populate(db, log, false)
	if err != nil {
		t.Fatalf("Populate failed: %v", err)
	}

	want := Created{Precatorios: 5, Clientes: 5, Alvaras: 5, Requerimentos: 5}
	if result.Created != want {
		t.Errorf("created = %+v, want %+v", result.Created, want)
	}

	if result.Stats.TotalValorDeFace != 850000.00 {
		t.Errorf("TotalValorDeFace = %v, want 850000", result.Stats.TotalValorDeFace)
	}
	if result.Stats.PrecatoriosQuitados != 1 {
		t.Errorf("PrecatoriosQuitados = %d, want 1", result.Stats.PrecatoriosQuitados)
	}
	if result.Stats.ClientesPrioritarios != 3 {
		t.Errorf("ClientesPrioritarios = %d, want 3", result.Stats.ClientesPrioritarios)
	}
	if result.Stats.PedidosPrioridade != 2 {
		t.Errorf("PedidosPrioridade = %d, want 2", result.Stats.PedidosPrioridade)
	}
	if result.Stats.PedidosAcordo != 3 {
		t.Errorf("PedidosAcordo = %d, want 3", result.Stats.PedidosAcordo)
	}

	var links int64
	db.Table("precatorio_clientes").Count(&links)
	if links != 5 {
		t.Errorf("links = %d, want 5", links)
	}

	// Alvará phases come from the seeded catalogue, not ad hoc rows.
	var a database.Alvara
	if err := db.Preload("Fase").Where("precatorio_cnj = ?", "1234567-89.2023.8.26.0100").First(&a).Error; err != nil {
		t.Fatalf("alvará not found: %v", err)
	}
	if a.Fase == nil || a.Fase.Nome != "Crédito Depositado Judicialmente" {
		t.Errorf("alvará fase = %+v, want Crédito Depositado Judicialmente", a.Fase)
	}
}

func TestPopulateSecondRunCreatesNothing(t *testing.T) {
	db := newTestDB(t)
	log := testLogger(t)
	if _, err := reference.Seed(db, log); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	if _, err := Populate(db, log, false); err != nil {
		t.Fatalf("first Populate failed: %v", err)
	}
	result, err := Populate(db, log, false)
	if err != nil {
		t.Fatalf("second Populate failed: %v", err)
	}

	if result.Created != (Created{}) {
		t.Errorf("second run created %+v, want nothing", result.Created)
	}
	if result.Stats.Precatorios != 5 || result.Stats.Requerimentos != 5 {
		t.Errorf("row counts changed: %+v", result.Stats)
	}
}

func TestPopulateClearRemovesExistingCaseData(t *testing.T) {
	db := newTestDB(t)
	log := testLogger(t)
	if _, err := reference.Seed(db, log); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	extra := database.Precatorio{CNJ: "9999999-99.2020.8.26.0999", Origem: "antigo"}
	if err := db.Create(&extra).Error; err != nil {
		t.Fatalf("create extra precatório failed: %v", err)
	}

	result, err := Populate(db, log, true)
	if err != nil {
		t.Fatalf("Populate with clear failed: %v", err)
	}

	if result.Stats.Precatorios != 5 {
		t.Errorf("precatórios after clear = %d, want 5", result.Stats.Precatorios)
	}
	var n int64
	db.Model(&database.Precatorio{}).Where("cnj = ?", extra.CNJ).Count(&n)
	if n != 0 {
		t.Error("clear kept the pre-existing precatório")
	}

	// The catalogues survive a clear.
	var fases int64
	db.Model(&database.Fase{}).Count(&fases)
	if fases == 0 {
		t.Error("clear wiped the fase catalogue")
	}
}
