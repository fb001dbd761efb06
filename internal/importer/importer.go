// Package importer loads precatório spreadsheets into the database. Sheets
// are classified by their headers and each one is imported inside its own
// transaction, with bad rows logged and skipped rather than aborting the run.
package importer

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/precapp/precapp/internal/database"
	"github.com/precapp/precapp/pkg/logger"
)

// Shape identifies what kind of records a sheet carries.
const (
	shapeMixed         = "mixed"
	shapePrecatorios   = "precatorios"
	shapeClientes      = "clientes"
	shapeAlvaras       = "alvaras"
	shapeRequerimentos = "requerimentos"
	shapeUnknown       = "unknown"
)

// Options controls a single import run.
type Options struct {
	File   string
	Sheet  string
	DryRun bool
}

// Summary reports how many records an import created. Re-running the same
// file creates no new precatórios or clientes, but requerimento rows are
// always inserted.
type Summary struct {
	Precatorios   int `json:"precatorios"`
	Clientes      int `json:"clientes"`
	Requerimentos int `json:"requerimentos"`
	Errors        int `json:"errors"`
}

// Importer reads xlsx workbooks and persists their rows.
type Importer struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, log *logger.Logger) *Importer {
	return &Importer{db: db, log: log}
}

// Run imports the workbook at opts.File. With opts.Sheet empty every sheet
// is processed; otherwise only the named one. Dry-run previews rows and
// writes nothing.
func (im *Importer) Run(opts Options) (*Summary, error) {
	if _, err := os.Stat(opts.File); err != nil {
		return nil, fmt.Errorf("file not found: %s", opts.File)
	}

	f, err := excelize.OpenFile(opts.File)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	im.log.Info("Workbook opened", "file", opts.File, "sheets", strings.Join(sheets, ", "))

	targets := sheets
	if opts.Sheet != "" {
		found := false
		for _, s := range sheets {
			if s == opts.Sheet {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("sheet %q not found, available sheets: %s", opts.Sheet, strings.Join(sheets, ", "))
		}
		targets = []string{opts.Sheet}
	}

	summary := &Summary{}
	for _, sheet := range targets {
		if err := im.processSheet(f, sheet, opts.DryRun, summary); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}
	}
	return summary, nil
}

// sheetData is a parsed sheet: normalized headers plus the data rows that
// follow them, fully empty rows dropped.
type sheetData struct {
	headers []string
	rows    [][]string
	// firstRow is the 1-based workbook row of the first data row, for logs.
	firstRow int
}

func (s *sheetData) value(row []string, key string) string {
	idx := findColumn(s.headers, key)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (s *sheetData) hasColumn(key string) bool {
	return findColumn(s.headers, key) >= 0
}

func (im *Importer) processSheet(f *excelize.File, sheet string, dryRun bool, summary *Summary) error {
	raw, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}

	data := parseSheet(raw)
	if data == nil {
		im.log.Warn("Sheet has no data rows", "sheet", sheet)
		return nil
	}

	shape := detectShape(data.headers)
	im.log.Info("Processing sheet", "sheet", sheet, "rows", len(data.rows), "shape", shape)

	if dryRun {
		im.previewRows(sheet, data)
		return nil
	}

	switch shape {
	case shapeMixed:
		return im.db.Transaction(func(tx *gorm.DB) error {
			im.importMixed(tx, data, summary)
			return nil
		})
	case shapePrecatorios:
		return im.db.Transaction(func(tx *gorm.DB) error {
			im.importPrecatorios(tx, data, summary)
			return nil
		})
	case shapeClientes:
		return im.db.Transaction(func(tx *gorm.DB) error {
			im.importClientes(tx, data, summary)
			return nil
		})
	case shapeAlvaras, shapeRequerimentos:
		// These sheets reference records by context we do not have standalone.
		im.log.Warn("Sheet shape not importable on its own, skipping", "sheet", sheet, "shape", shape)
		return nil
	default:
		im.log.Warn("Could not identify sheet contents, skipping", "sheet", sheet)
		return nil
	}
}

// parseSheet splits the raw cell grid into headers and data rows. The first
// non-empty row is taken as the header row.
func parseSheet(raw [][]string) *sheetData {
	headerIdx := -1
	for i, row := range raw {
		if !rowEmpty(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 || headerIdx == len(raw)-1 {
		return nil
	}

	data := &sheetData{
		headers:  normalizeHeaders(raw[headerIdx]),
		firstRow: headerIdx + 2,
	}
	for _, row := range raw[headerIdx+1:] {
		if rowEmpty(row) {
			continue
		}
		data.rows = append(data.rows, row)
	}
	if len(data.rows) == 0 {
		return nil
	}
	return data
}

func rowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// detectShape classifies a sheet from its headers.
func detectShape(headers []string) string {
	hasCNJ := findColumn(headers, "cnj") >= 0
	hasNome := findColumn(headers, "nome") >= 0
	hasCPF := findColumn(headers, "cpf") >= 0
	hasTipoAlvara := findColumn(headers, "tipo_alvara") >= 0
	hasPedido := findColumn(headers, "pedido") >= 0

	switch {
	case hasCNJ && hasNome && (hasTipoAlvara || hasPedido):
		return shapeMixed
	case hasCNJ:
		return shapePrecatorios
	case hasCPF:
		return shapeClientes
	case hasTipoAlvara:
		return shapeAlvaras
	case hasPedido:
		return shapeRequerimentos
	default:
		return shapeUnknown
	}
}

func (im *Importer) previewRows(sheet string, data *sheetData) {
	n := len(data.rows)
	if n > 3 {
		n = 3
	}
	im.log.Info("Dry run, nothing will be written", "sheet", sheet, "rows", len(data.rows))
	for i := 0; i < n; i++ {
		row := data.rows[i]
		im.log.Info("Sample row",
			"cnj", data.value(row, "cnj"),
			"nome", data.value(row, "nome"),
			"cpf", data.value(row, "cpf"),
			"valor", data.value(row, "valor_face"),
		)
	}
}

// importMixed handles sheets carrying precatório, cliente and requerimento
// data in the same row. Row failures are absorbed so one bad line does not
// lose the rest of the sheet.
func (im *Importer) importMixed(tx *gorm.DB, data *sheetData, summary *Summary) {
	for i, row := range data.rows {
		rowNum := data.firstRow + i

		precatorio, created, err := im.upsertPrecatorio(tx, data, row)
		if err != nil {
			im.rowError(rowNum, err, summary)
			continue
		}
		if created {
			summary.Precatorios++
		}

		cliente, created, err := im.upsertCliente(tx, data, row)
		if err != nil {
			im.rowError(rowNum, err, summary)
			continue
		}
		if created {
			summary.Clientes++
		}

		if precatorio != nil && cliente != nil {
			if err := database.LinkCliente(tx, precatorio.CNJ, cliente.CPF); err != nil {
				im.rowError(rowNum, err, summary)
				continue
			}

			if pedido := data.value(row, "pedido"); pedido != "" {
				created, err := im.createRequerimento(tx, data, row, precatorio, cliente, pedido)
				if err != nil {
					im.rowError(rowNum, err, summary)
					continue
				}
				if created {
					summary.Requerimentos++
				}
			}
		}
	}
}

func (im *Importer) importPrecatorios(tx *gorm.DB, data *sheetData, summary *Summary) {
	for i, row := range data.rows {
		_, created, err := im.upsertPrecatorio(tx, data, row)
		if err != nil {
			im.rowError(data.firstRow+i, err, summary)
			continue
		}
		if created {
			summary.Precatorios++
		}
	}
}

func (im *Importer) importClientes(tx *gorm.DB, data *sheetData, summary *Summary) {
	for i, row := range data.rows {
		cliente, created, err := im.upsertCliente(tx, data, row)
		if err != nil {
			im.rowError(data.firstRow+i, err, summary)
			continue
		}
		if cliente == nil {
			im.rowError(data.firstRow+i, errors.New("cpf ou nome ausente"), summary)
			continue
		}
		if created {
			summary.Clientes++
		}
	}
}

func (im *Importer) rowError(rowNum int, err error, summary *Summary) {
	summary.Errors++
	im.log.Warn("Error processing row", "row", rowNum, "error", err.Error())
}

// upsertPrecatorio creates the precatório when absent. Existing rows are left
// untouched. A row without a CNJ is an error.
func (im *Importer) upsertPrecatorio(tx *gorm.DB, data *sheetData, row []string) (*database.Precatorio, bool, error) {
	cnj := data.value(row, "cnj")
	if cnj == "" {
		return nil, false, errors.New("CNJ ausente")
	}

	attrs := database.Precatorio{
		Origem:            "Importado da planilha",
		ValorDeFace:       0,
		UltimaAtualizacao: 0,
	}

	if origem := data.value(row, "origem"); origem != "" {
		attrs.Origem = origem
	}

	orcamento := 2024
	if v, ok := parseInt(data.value(row, "orcamento")); ok {
		orcamento = v
	}
	attrs.Orcamento = &orcamento

	if v, ok := parseFloat(data.value(row, "valor_face")); ok {
		attrs.ValorDeFace = v
		attrs.UltimaAtualizacao = v
	}
	if v, ok := parseFloat(data.value(row, "ultima_atualizacao")); ok {
		attrs.UltimaAtualizacao = v
	}

	if d := parseDate(data.value(row, "data_atualizacao")); d != nil {
		attrs.DataUltimaAtualizacao = d
	} else {
		now := time.Now()
		attrs.DataUltimaAtualizacao = &now
	}

	attrs.CreditoPrincipal = database.StatusPendente
	attrs.HonorariosContratuais = database.StatusPendente
	attrs.HonorariosSucumbenciais = database.StatusPendente

	if s, ok := mapStatus(data.value(row, "credito_principal")); ok {
		attrs.CreditoPrincipal = s
	}
	if s, ok := mapStatus(data.value(row, "honorarios_contratuais_status")); ok {
		attrs.HonorariosContratuais = s
	}
	if s, ok := mapStatus(data.value(row, "honorarios_sucumbenciais_status")); ok {
		attrs.HonorariosSucumbenciais = s
	}

	// Legacy sheets carry a single quitado flag instead of the three status
	// columns. It only fills statuses the specific columns did not set.
	if q := data.value(row, "quitado"); q != "" && !data.hasColumn("credito_principal") {
		status := database.StatusPendente
		if legacyQuitado(q) {
			status = database.StatusQuitado
		}
		attrs.CreditoPrincipal = status
		if !data.hasColumn("honorarios_contratuais_status") {
			attrs.HonorariosContratuais = status
		}
		if !data.hasColumn("honorarios_sucumbenciais_status") {
			attrs.HonorariosSucumbenciais = status
		}
	}

	if nome := data.value(row, "tipo"); nome != "" {
		tipoID, err := im.resolveTipo(tx, nome)
		if err != nil {
			return nil, false, err
		}
		attrs.TipoID = tipoID
	}

	precatorio := database.Precatorio{CNJ: cnj}
	res := tx.Where("cnj = ?", cnj).Attrs(attrs).FirstOrCreate(&precatorio)
	if res.Error != nil {
		return nil, false, res.Error
	}
	created := res.RowsAffected == 1
	if created {
		im.log.Debug("Created precatorio", "cnj", cnj)
	}
	return &precatorio, created, nil
}

// upsertCliente creates the cliente when absent, keyed by the cleaned CPF.
// Rows missing CPF or nome yield no client but are not errors: the caller
// still gets the precatório.
func (im *Importer) upsertCliente(tx *gorm.DB, data *sheetData, row []string) (*database.Cliente, bool, error) {
	cpf := cleanCPF(data.value(row, "cpf"))
	nome := data.value(row, "nome")
	if cpf == "" || nome == "" {
		return nil, false, nil
	}

	// Unparseable or absent birth dates stay null rather than guessing.
	attrs := database.Cliente{
		Nome:       nome,
		Nascimento: parseDate(data.value(row, "nascimento")),
		Prioridade: parseBool(data.value(row, "prioridade")),
	}

	cliente := database.Cliente{CPF: cpf}
	res := tx.Where("cpf = ?", cpf).Attrs(attrs).FirstOrCreate(&cliente)
	if res.Error != nil {
		return nil, false, res.Error
	}
	created := res.RowsAffected == 1
	if created {
		im.log.Debug("Created cliente", "nome", nome, "cpf", cpf)
	}
	return &cliente, created, nil
}

// createRequerimento inserts a requerimento for the row. Unlike precatórios
// and clientes there is no natural key, so every import inserts a new row.
func (im *Importer) createRequerimento(tx *gorm.DB, data *sheetData, row []string, precatorio *database.Precatorio, cliente *database.Cliente, pedido string) (bool, error) {
	normalized, ok := normalizePedido(pedido)
	if !ok {
		return false, fmt.Errorf("pedido não reconhecido: %q", pedido)
	}

	faseID, err := im.defaultFaseRequerimento(tx)
	if err != nil {
		return false, err
	}

	req := database.Requerimento{
		PrecatorioCNJ: precatorio.CNJ,
		ClienteCPF:    cliente.CPF,
		Pedido:        normalized,
		FaseID:        faseID,
	}
	if v, ok := parseFloat(data.value(row, "valor_face")); ok {
		req.Valor = v
	}
	if v, ok := parseFloat(data.value(row, "desagio")); ok {
		req.Desagio = v
	}

	if err := tx.Create(&req).Error; err != nil {
		return false, err
	}
	im.log.Debug("Created requerimento", "cliente", cliente.Nome, "pedido", normalized)
	return true, nil
}

// resolveTipo finds the classification whose name contains the sheet value,
// case-insensitively. Unknown values become a new active Tipo so the import
// never drops the information, with a warning for later curation.
func (im *Importer) resolveTipo(tx *gorm.DB, nome string) (*uint, error) {
	var tipo database.Tipo
	err := tx.Where("LOWER(nome) LIKE ?", "%"+strings.ToLower(nome)+"%").
		Order("ordem, id").
		First(&tipo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		tipo = database.Tipo{Nome: nome, Ativa: true}
		if err := tx.Create(&tipo).Error; err != nil {
			return nil, err
		}
		im.log.Warn("Tipo not in catalogue, created during import", "tipo", nome)
		return &tipo.ID, nil
	}
	if err != nil {
		return nil, err
	}
	return &tipo.ID, nil
}

// defaultFaseRequerimento picks the first active requerimento phase, creating
// a fallback when the catalogue was never seeded.
func (im *Importer) defaultFaseRequerimento(tx *gorm.DB) (*uint, error) {
	var fase database.Fase
	err := tx.Where("tipo IN ? AND ativa = ?", []string{database.FaseTipoRequerimento, database.FaseTipoAmbos}, true).
		Order("ordem, id").
		First(&fase).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fase = database.Fase{Nome: "Em Andamento", Tipo: database.FaseTipoRequerimento, Cor: "#28A745", Ativa: true}
		if err := tx.Create(&fase).Error; err != nil {
			return nil, err
		}
		return &fase.ID, nil
	}
	if err != nil {
		return nil, err
	}
	return &fase.ID, nil
}

// cleanCPF strips the usual CPF/CNPJ punctuation, keeping digits only.
func cleanCPF(s string) string {
	r := strings.NewReplacer(".", "", "-", "", "/", "", " ", "")
	return strings.TrimSpace(r.Replace(s))
}

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	// Excel often renders integers as floats ("2014.0").
	if f, ok := parseFloat(s); ok {
		return int(f), true
	}
	return 0, false
}

// parseFloat handles plain decimals plus Brazilian formatting
// ("R$ 1.234,56").
func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// dateLayouts are tried in order against date cells rendered as text.
var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	"01-02-06",
	"2006-01-02 15:04:05",
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "sim", "x":
		return true
	}
	return false
}

// mapStatus normalizes the payment status vocabulary, accepting both the
// short tokens and the long spreadsheet spellings.
func mapStatus(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case database.StatusPendente, database.StatusParcial, database.StatusQuitado, database.StatusVendido:
		return strings.ToLower(strings.TrimSpace(s)), true
	case "pendente de pagamento":
		return database.StatusPendente, true
	case "quitado parcialmente":
		return database.StatusParcial, true
	case "quitado integralmente":
		return database.StatusQuitado, true
	}
	return "", false
}

// legacyQuitado interprets the old single paid flag.
func legacyQuitado(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "sim", "quitado", "pago":
		return true
	}
	return false
}

// normalizePedido maps free-text request descriptions onto the closed pedido
// vocabulary. Fee categories are matched before "principal" because their
// spellings also contain that word in some sheets.
func normalizePedido(s string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(v, "doença") || strings.Contains(v, "doenca"):
		return "prioridade doença", true
	case strings.Contains(v, "idade"):
		return "prioridade idade", true
	case strings.Contains(v, "sucumben"):
		return "acordo honorários sucumbenciais", true
	case strings.Contains(v, "contratu"):
		return "acordo honorários contratuais", true
	case strings.Contains(v, "principal") || strings.Contains(v, "acordo"):
		return "acordo principal", true
	}
	return "", false
}
