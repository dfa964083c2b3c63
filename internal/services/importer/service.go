// Package importer turns parsed Finanzguru rows into persisted transactions.
// Duplicate rows are skipped, not errors; a failing row never aborts the
// batch, and the returned statistics always account for every input row.
package importer

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"

	"personal-finance-backend/internal/models"
	"personal-finance-backend/internal/parser"
	"personal-finance-backend/internal/repository"
	"personal-finance-backend/internal/services/categories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxErrorDetailLen bounds individual error messages in the stats so a
// pathological batch cannot grow the response without limit.
const maxErrorDetailLen = 200

var allowedExtensions = map[string]bool{
	".xlsx": true,
	".csv":  true,
}

// ImportStats reports the outcome of one import batch.
// Total == Imported + Skipped + Errors always holds.
type ImportStats struct {
	Total        int      `json:"total_rows"`
	Imported     int      `json:"imported"`
	Skipped      int      `json:"skipped"`
	Errors       int      `json:"errors"`
	ErrorDetails []string `json:"error_details"`
}

type Service struct {
	transactions  *repository.TransactionRepository
	categoryNames *categories.NameCache
	log           logrus.FieldLogger
}

func NewService(
	transactions *repository.TransactionRepository,
	categoryNames *categories.NameCache,
	log logrus.FieldLogger,
) *Service {
	return &Service{
		transactions:  transactions,
		categoryNames: categoryNames,
		log:           log,
	}
}

// ImportFile validates the file extension, parses the file and imports the
// resulting rows. Rows the parser had to skip come back as diagnostics.
func (s *Service) ImportFile(userID uuid.UUID, path string, skipDuplicates bool) (*ImportStats, []parser.RowDiagnostic, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !allowedExtensions[ext] {
		return nil, nil, &parser.UnsupportedFormatError{Ext: ext}
	}

	rows, diagnostics, err := parser.ParseFile(path)
	if err != nil {
		return nil, nil, err
	}

	stats, err := s.ImportRows(userID, rows, skipDuplicates)
	return stats, diagnostics, err
}

// ImportRows persists the given rows for the user. With skipDuplicates set,
// rows whose hash already exists for this user are skipped, including
// second-and-later occurrences of the same hash within the batch itself.
func (s *Service) ImportRows(userID uuid.UUID, rows []parser.Row, skipDuplicates bool) (*ImportStats, error) {
	stats := &ImportStats{Total: len(rows), ErrorDetails: []string{}}

	seen := make(map[string]struct{})
	if skipDuplicates && len(rows) > 0 {
		hashes := make([]string, len(rows))
		for i, row := range rows {
			hashes[i] = row.ImportHash
		}
		existing, err := s.transactions.ExistingHashes(userID, hashes)
		if err != nil {
			return nil, err
		}
		seen = existing
	}

	for _, row := range rows {
		if skipDuplicates {
			if _, dup := seen[row.ImportHash]; dup {
				stats.Skipped++
				continue
			}
		}

		tx, err := s.buildTransaction(userID, row)
		if err == nil {
			err = s.transactions.Create(tx)
		}
		if err != nil {
			// A concurrent import can race past the bulk existence check;
			// the (user, hash) unique constraint is the backstop and a
			// violation means duplicate, not failure.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				stats.Skipped++
				continue
			}
			stats.Errors++
			stats.ErrorDetails = append(stats.ErrorDetails, truncate(err.Error(), maxErrorDetailLen))
			s.log.WithError(err).WithField("import_hash", row.ImportHash).Error("failed to import row")
			continue
		}

		stats.Imported++
		if skipDuplicates {
			seen[row.ImportHash] = struct{}{}
		}
	}

	return stats, nil
}

func (s *Service) buildTransaction(userID uuid.UUID, row parser.Row) (*models.Transaction, error) {
	categoryID, subcategoryID, err := s.mapCategories(row.Category, row.Subcategory)
	if err != nil {
		return nil, err
	}

	hash := row.ImportHash
	tx := &models.Transaction{
		ID:               uuid.New(),
		UserID:           userID,
		AccountName:      row.AccountName,
		Date:             row.Date,
		Amount:           row.Amount,
		Currency:         "EUR",
		Counterparty:     row.Counterparty,
		CounterpartyIBAN: row.CounterpartyIBAN,
		Description:      row.Description,
		ERef:             row.ERef,
		MandateRef:       row.MandateRef,
		CreditorID:       row.CreditorID,

		CategoryID:    categoryID,
		SubcategoryID: subcategoryID,

		FgMainCategory:       row.Category,
		FgSubcategory:        row.Subcategory,
		FgContractName:       row.Contract,
		FgContractFrequency:  row.ContractFrequency,
		FgContractID:         row.ContractID,
		FgIsTransfer:         row.IsTransfer,
		FgExcludedFromBudget: row.ExcludedFromBudget,
		FgTransactionType:    row.TransactionType,
		FgWeek:               row.Week,
		FgMonth:              row.Month,
		FgQuarter:            row.Quarter,
		FgYear:               row.Year,

		Notes:      row.Notes,
		Source:     models.SourceFinanzguru,
		ImportHash: &hash,
	}

	if row.Currency != "" {
		tx.Currency = row.Currency
	}
	if len(row.AccountIBAN) >= 4 {
		tx.AccountIBANLast4 = row.AccountIBAN[len(row.AccountIBAN)-4:]
	}
	if row.Balance != "" {
		if balance, err := parser.ParseGermanAmount(row.Balance); err == nil {
			tx.BalanceAfter = &balance
		}
	}
	if row.AnalysisAmount != "" {
		if amount, err := parser.ParseGermanAmount(row.AnalysisAmount); err == nil {
			tx.FgAnalysisAmount = &amount
		}
	}
	if tags := splitTags(row.Tags); len(tags) > 0 {
		raw, err := json.Marshal(tags)
		if err != nil {
			return nil, err
		}
		tx.Tags = datatypes.JSON(raw)
	}

	return tx, nil
}

// mapCategories resolves the Finanzguru category names against our tree by
// exact German name, top level first, then a child of that match. A miss at
// either level leaves the corresponding link nil, never an error.
func (s *Service) mapCategories(mainName, subName string) (*uuid.UUID, *uuid.UUID, error) {
	if mainName == "" {
		return nil, nil, nil
	}

	category, err := s.categoryNames.ResolveTopLevel(mainName)
	if err != nil {
		return nil, nil, err
	}
	if category == nil {
		return nil, nil, nil
	}

	var subcategoryID *uuid.UUID
	if subName != "" {
		subcategory, err := s.categoryNames.ResolveChild(category.ID, subName)
		if err != nil {
			return nil, nil, err
		}
		if subcategory != nil {
			subcategoryID = &subcategory.ID
		}
	}
	return &category.ID, subcategoryID, nil
}

func splitTags(joined string) []string {
	if joined == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(joined, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
