package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/precapp/precapp/internal/cache"
	"github.com/precapp/precapp/internal/config"
	"github.com/precapp/precapp/internal/database"
	"github.com/precapp/precapp/pkg/logger"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	log, err := logger.NewLogger("error", "console")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	router := gin.New()
	SetupRoutes(router, db, cache.NewCache(100, time.Minute), log, &config.Config{})
	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON response: %v", err)
		}
	}
	return w, resp
}

func TestHealthCheck(t *testing.T) {
	router, _ := setupTestRouter(t)

	w, resp := doJSON(t, router, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if resp["status"] != "healthy" {
		t.Errorf("status field = %v, want healthy", resp["status"])
	}
	if resp["database"] != true {
		t.Errorf("database field = %v, want true", resp["database"])
	}
}

func TestCreateAndGetPrecatorio(t *testing.T) {
	router, _ := setupTestRouter(t)

	body := map[string]interface{}{
		"cnj":           "1234567-89.2023.8.26.0100",
		"orcamento":     2023,
		"origem":        "TJ-SP",
		"valor_de_face": 150000.0,
	}
	w, resp := doJSON(t, router, http.MethodPost, "/api/precatorios", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %v", w.Code, resp)
	}

	w, resp = doJSON(t, router, http.MethodGet, "/api/precatorios/1234567-89.2023.8.26.0100", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	data := resp["data"].(map[string]interface{})
	if data["origem"] != "TJ-SP" {
		t.Errorf("origem = %v, want TJ-SP", data["origem"])
	}
	if data["credito_principal"] != "pendente" {
		t.Errorf("credito_principal = %v, want pendente", data["credito_principal"])
	}

	w, _ = doJSON(t, router, http.MethodGet, "/api/precatorios/0000000-00.0000.0.00.0000", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing precatório status = %d, want 404", w.Code)
	}
}

func TestCreatePrecatorioValidation(t *testing.T) {
	router, _ := setupTestRouter(t)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing cnj", map[string]interface{}{"origem": "x"}},
		{"orcamento too low", map[string]interface{}{"cnj": "1-1", "orcamento": 1980}},
		{"bad status", map[string]interface{}{"cnj": "1-1", "credito_principal": "pago"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := doJSON(t, router, http.MethodPost, "/api/precatorios", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestListPrecatoriosFilters(t *testing.T) {
	router, db := setupTestRouter(t)

	orc2023, orc2024 := 2023, 2024
	seed := []database.Precatorio{
		{CNJ: "1111111-11.2023.8.26.0001", Orcamento: &orc2023, CreditoPrincipal: database.StatusQuitado},
		{CNJ: "2222222-22.2024.8.26.0002", Orcamento: &orc2024},
		{CNJ: "3333333-33.2024.8.26.0003", Orcamento: &orc2024},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	w, resp := doJSON(t, router, http.MethodGet, "/api/precatorios?orcamento=2024", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if n := len(resp["data"].([]interface{})); n != 2 {
		t.Errorf("orcamento filter returned %d rows, want 2", n)
	}

	_, resp = doJSON(t, router, http.MethodGet, "/api/precatorios?credito_principal=quitado", nil)
	if n := len(resp["data"].([]interface{})); n != 1 {
		t.Errorf("status filter returned %d rows, want 1", n)
	}

	_, resp = doJSON(t, router, http.MethodGet, "/api/precatorios?page=1&limit=2", nil)
	if n := len(resp["data"].([]interface{})); n != 2 {
		t.Errorf("limit=2 returned %d rows", n)
	}
	pagination := resp["pagination"].(map[string]interface{})
	if pagination["total"].(float64) != 3 {
		t.Errorf("total = %v, want 3", pagination["total"])
	}
}

func TestClienteEndpoints(t *testing.T) {
	router, _ := setupTestRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/clientes", map[string]interface{}{
		"cpf":        "12345678901",
		"nome":       "Maria Silva Santos",
		"nascimento": "1965-04-12",
		"prioridade": true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}

	w, _ = doJSON(t, router, http.MethodPost, "/api/clientes", map[string]interface{}{"cpf": "999"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing nome status = %d, want 400", w.Code)
	}

	w, resp := doJSON(t, router, http.MethodGet, "/api/clientes?nome=Silva", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	if n := len(resp["data"].([]interface{})); n != 1 {
		t.Errorf("nome filter returned %d rows, want 1", n)
	}

	w, resp = doJSON(t, router, http.MethodGet, "/api/clientes/12345678901", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	data := resp["data"].(map[string]interface{})
	if data["prioridade"] != true {
		t.Errorf("prioridade = %v, want true", data["prioridade"])
	}
}

func TestListClientesSurfacesQueryErrors(t *testing.T) {
	router, db := setupTestRouter(t)

	if err := db.Exec("DROP TABLE clientes").Error; err != nil {
		t.Fatalf("drop failed: %v", err)
	}

	w, resp := doJSON(t, router, http.MethodGet, "/api/clientes", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if resp["success"] != false {
		t.Errorf("success = %v, want false", resp["success"])
	}
}

func TestContaDeletionProtection(t *testing.T) {
	router, db := setupTestRouter(t)

	w, resp := doJSON(t, router, http.MethodPost, "/api/contas", map[string]interface{}{
		"banco":         "Banco do Brasil",
		"tipo_de_conta": "corrente",
		"agencia":       "0001",
		"conta":         "12345-6",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create conta status = %d", w.Code)
	}
	contaID := int(resp["data"].(map[string]interface{})["id"].(float64))

	// An unreferenced account deletes cleanly.
	w, _ = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/contas/%d", contaID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", w.Code)
	}

	// Rebuild the account with a receipt hanging off it.
	conta := database.ContaBancaria{Banco: "Caixa", TipoDeConta: "poupanca", Agencia: "0002", Conta: "65432-1"}
	if err := db.Create(&conta).Error; err != nil {
		t.Fatalf("create conta failed: %v", err)
	}
	if err := db.Create(&database.Precatorio{CNJ: "1-1.2024.8.26.0001"}).Error; err != nil {
		t.Fatalf("create precatório failed: %v", err)
	}
	if err := db.Create(&database.Cliente{CPF: "11122233344", Nome: "Titular"}).Error; err != nil {
		t.Fatalf("create cliente failed: %v", err)
	}
	err := db.Exec("INSERT INTO precatorio_clientes (precatorio_cnj, cliente_cpf) VALUES (?, ?)",
		"1-1.2024.8.26.0001", "11122233344").Error
	if err != nil {
		t.Fatalf("link failed: %v", err)
	}
	alvara := database.Alvara{PrecatorioCNJ: "1-1.2024.8.26.0001", ClienteCPF: "11122233344", Tipo: "comum"}
	if err := db.Create(&alvara).Error; err != nil {
		t.Fatalf("create alvará failed: %v", err)
	}

	w, _ = doJSON(t, router, http.MethodPost, "/api/recebimentos", map[string]interface{}{
		"numero_documento":  "DOC-100",
		"alvara_id":         alvara.ID,
		"conta_bancaria_id": conta.ID,
		"data":              "2024-06-01",
		"valor":             2500.0,
		"tipo":              "Hon. contratuais",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create recebimento status = %d", w.Code)
	}

	w, resp = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/contas/%d", conta.ID), nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("protected delete status = %d, want 409", w.Code)
	}

	var n int64
	db.Model(&database.ContaBancaria{}).Where("id = ?", conta.ID).Count(&n)
	if n != 1 {
		t.Error("protected conta was removed")
	}

	w, _ = doJSON(t, router, http.MethodDelete, "/api/contas/999", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing conta delete status = %d, want 404", w.Code)
	}
}

func TestCreateRecebimentoRequiresConta(t *testing.T) {
	router, _ := setupTestRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/recebimentos", map[string]interface{}{
		"numero_documento":  "DOC-200",
		"alvara_id":         1,
		"conta_bancaria_id": 42,
		"data":              "2024-06-01",
		"valor":             100.0,
		"tipo":              "Hon. contratuais",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestStatsCaching(t *testing.T) {
	router, db := setupTestRouter(t)

	if err := db.Create(&database.Precatorio{CNJ: "1-1.2024.8.26.0001", ValorDeFace: 5000}).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	w, resp := doJSON(t, router, http.MethodGet, "/api/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if resp["fromCache"] != false {
		t.Errorf("first call fromCache = %v, want false", resp["fromCache"])
	}
	data := resp["data"].(map[string]interface{})
	if data["precatorios"].(float64) != 1 {
		t.Errorf("precatorios = %v, want 1", data["precatorios"])
	}

	_, resp = doJSON(t, router, http.MethodGet, "/api/stats", nil)
	if resp["fromCache"] != true {
		t.Errorf("second call fromCache = %v, want true", resp["fromCache"])
	}

	w, resp = doJSON(t, router, http.MethodGet, "/api/cache/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cache stats status = %d", w.Code)
	}
	stats := resp["stats"].(map[string]interface{})
	if stats["hits"].(float64) < 1 {
		t.Errorf("hits = %v, want >= 1", stats["hits"])
	}
}
