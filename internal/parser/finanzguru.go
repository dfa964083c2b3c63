// Package parser reads Finanzguru bank-export files (XLSX or CSV) into
// normalized transaction rows. File-level preconditions (format, required
// columns) fail hard; individual rows are parsed best effort and a bad row is
// skipped without aborting the file.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

var log logrus.FieldLogger = logrus.StandardLogger()

// SetLogger replaces the package logger. A nil logger is ignored.
func SetLogger(logger logrus.FieldLogger) {
	if logger != nil {
		log = logger
	}
}

// columnMapping translates Finanzguru export headers to internal field names.
var columnMapping = map[string]string{
	"Buchungstag":                  "date",
	"Referenzkonto":                "account_iban",
	"Name Referenzkonto":           "account_name",
	"Betrag":                       "amount",
	"Kontostand":                   "balance",
	"Waehrung":                     "currency",
	"Beguenstigter/Auftraggeber":   "counterparty",
	"IBAN Beguenstigter/Auftraggeber": "counterparty_iban",
	"Verwendungszweck":             "description",
	"E-Ref":                        "e_ref",
	"Mandatsreferenz":              "mandate_ref",
	"Glaeubiger-ID":                "creditor_id",
	"Analyse-Hauptkategorie":       "category",
	"Analyse-Unterkategorie":       "subcategory",
	"Analyse-Vertrag":              "contract",
	"Analyse-Vertragsturnus":       "contract_frequency",
	"Analyse-Vertrags-ID":          "contract_id",
	"Analyse-Umbuchung":            "is_transfer",
	"Analyse-Vom frei verfuegbaren Einkommen ausgeschlossen": "excluded_from_budget",
	"Analyse-Umsatzart": "transaction_type",
	"Analyse-Betrag":    "analysis_amount",
	"Analyse-Woche":     "week",
	"Analyse-Monat":     "month",
	"Analyse-Quartal":   "quarter",
	"Analyse-Jahr":      "year",
	"Tags":              "tags",
	"Notiz":             "notes",
}

// requiredColumns must all be present in the header; the import is rejected
// before any row work otherwise.
var requiredColumns = []string{
	"Buchungstag",
	"Betrag",
	"Beguenstigter/Auftraggeber",
	"Verwendungszweck",
}

// Row is one normalized transaction row. Optional text fields are empty
// strings when the source cell was absent or blank.
type Row struct {
	Date         time.Time
	Amount       decimal.Decimal
	Counterparty string
	Description  string
	ImportHash   string

	AccountIBAN        string
	AccountName        string
	Balance            string
	Currency           string
	CounterpartyIBAN   string
	ERef               string
	MandateRef         string
	CreditorID         string
	Category           string
	Subcategory        string
	Contract           string
	ContractFrequency  string
	ContractID         string
	IsTransfer         bool
	ExcludedFromBudget bool
	TransactionType    string
	AnalysisAmount     string
	Week               string
	Month              string
	Quarter            string
	Year               string
	Tags               string // comma-joined, split downstream
	Notes              string
}

// RowDiagnostic records a skipped source row. The parser drops such rows and
// continues; error accounting happens one layer up.
type RowDiagnostic struct {
	Row int   `json:"row"` // 1-based data row number
	Err error `json:"-"`
}

func (d RowDiagnostic) Message() string {
	return fmt.Sprintf("row %d: %v", d.Row, d.Err)
}

// ParseFile reads a Finanzguru XLSX or CSV export and returns the normalized
// rows in source order together with diagnostics for every skipped row.
func ParseFile(path string) ([]Row, []RowDiagnostic, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("import file: %w", err)
	}

	var records [][]string
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		records, err = readWorkbook(path)
	case ".csv":
		records, err = readCSV(path)
	default:
		return nil, nil, &UnsupportedFormatError{Ext: ext}
	}
	if err != nil {
		return nil, nil, err
	}

	return parseRecords(records)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}
	return rows, nil
}

func parseRecords(records [][]string) ([]Row, []RowDiagnostic, error) {
	if len(records) == 0 {
		return nil, nil, &MissingColumnsError{Columns: requiredColumns}
	}

	// Map header name -> column index.
	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, &MissingColumnsError{Columns: missing}
	}

	rows := make([]Row, 0, len(records)-1)
	var diagnostics []RowDiagnostic
	for i, record := range records[1:] {
		cell := func(header string) string {
			col, ok := index[header]
			if !ok || col >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[col])
		}

		row, err := parseRow(cell)
		if err != nil {
			rowNum := i + 1
			diagnostics = append(diagnostics, RowDiagnostic{Row: rowNum, Err: err})
			log.WithFields(logrus.Fields{"row": rowNum}).WithError(err).Warn("skipping unparseable row")
			continue
		}
		rows = append(rows, row)
	}

	return rows, diagnostics, nil
}

func parseRow(cell func(string) string) (Row, error) {
	// Date and amount are hard requirements for the row.
	date, err := ParseGermanDate(cell("Buchungstag"))
	if err != nil {
		return Row{}, err
	}
	amount, err := ParseGermanAmount(cell("Betrag"))
	if err != nil {
		return Row{}, err
	}

	// Blank cells become empty strings, never a "missing" placeholder.
	row := Row{
		Date:         date,
		Amount:       amount,
		Counterparty: cell("Beguenstigter/Auftraggeber"),
		Description:  cell("Verwendungszweck"),
	}
	row.ImportHash = ImportHash(date, amount, row.Counterparty, row.Description)

	for header, field := range columnMapping {
		value := cell(header)
		if value == "" {
			continue
		}
		switch field {
		case "date", "amount", "counterparty", "description":
			// already handled
		case "account_iban":
			row.AccountIBAN = value
		case "account_name":
			row.AccountName = value
		case "balance":
			row.Balance = value
		case "currency":
			row.Currency = value
		case "counterparty_iban":
			row.CounterpartyIBAN = value
		case "e_ref":
			row.ERef = value
		case "mandate_ref":
			row.MandateRef = value
		case "creditor_id":
			row.CreditorID = value
		case "category":
			row.Category = value
		case "subcategory":
			row.Subcategory = value
		case "contract":
			row.Contract = value
		case "contract_frequency":
			row.ContractFrequency = value
		case "contract_id":
			row.ContractID = value
		case "is_transfer":
			row.IsTransfer = ParseGermanBoolean(value)
		case "excluded_from_budget":
			row.ExcludedFromBudget = ParseGermanBoolean(value)
		case "transaction_type":
			row.TransactionType = value
		case "analysis_amount":
			row.AnalysisAmount = value
		case "week":
			row.Week = value
		case "month":
			row.Month = value
		case "quarter":
			row.Quarter = value
		case "year":
			row.Year = value
		case "tags":
			row.Tags = value
		case "notes":
			row.Notes = value
		}
	}

	return row, nil
}
