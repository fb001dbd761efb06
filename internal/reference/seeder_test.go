package reference

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/precapp/precapp/internal/database"
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

func TestSeedCreatesCatalogues(t *testing.T) {
	db := newTestDB(t)
	log := testLogger(t)

	counts, err := Seed(db, log)
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	want := Counts{
		FasesRequerimento:   4,
		FasesAlvara:         4,
		FasesHonorarios:     4,
		TiposDiligencia:     5,
		TiposPrecatorio:     3,
		PedidosRequerimento: 7,
	}
	if counts != want {
		t.Errorf("created counts = %+v, want %+v", counts, want)
	}

	// The same phase name exists for both alvarás and honorários tracks.
	var fases int64
	db.Model(&database.Fase{}).Count(&fases)
	if fases != 8 {
		t.Errorf("fases count = %d, want 8", fases)
	}

	var tipo database.Tipo
	if err := db.Where("nome = ?", "URV").First(&tipo).Error; err != nil {
		t.Fatalf("seeded tipo URV not found: %v", err)
	}
	if !tipo.Ativa {
		t.Error("seeded tipo should be active")
	}
}

func TestSeedSecondRunCreatesNothing(t *testing.T) {
	db := newTestDB(t)
	log := testLogger(t)

	if _, err := Seed(db, log); err != nil {
		t.Fatalf("first Seed failed: %v", err)
	}

	counts, err := Seed(db, log)
	if err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}
	if counts.Total() != 0 {
		t.Errorf("second run created %d rows, want 0", counts.Total())
	}
}

func TestSeedKeepsManualEdits(t *testing.T) {
	db := newTestDB(t)
	log := testLogger(t)

	if _, err := Seed(db, log); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	err := db.Model(&database.Fase{}).
		Where("nome = ? AND tipo = ?", "Deferido", database.FaseTipoRequerimento).
		Update("cor", "#000000").Error
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if _, err := Seed(db, log); err != nil {
		t.Fatalf("re-Seed failed: %v", err)
	}

	var fase database.Fase
	if err := db.Where("nome = ? AND tipo = ?", "Deferido", database.FaseTipoRequerimento).First(&fase).Error; err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if fase.Cor != "#000000" {
		t.Errorf("re-seeding overwrote manual edit, cor = %q", fase.Cor)
	}
}
