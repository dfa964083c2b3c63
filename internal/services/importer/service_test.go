package importer

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"personal-finance-backend/internal/models"
	"personal-finance-backend/internal/parser"
	"personal-finance-backend/internal/repository"
	"personal-finance-backend/internal/services/categories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Category{}, &models.Transaction{}))
	return db
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	categoryRepo := repository.NewCategoryRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	cache := categories.NewNameCache(categoryRepo)
	return NewService(transactionRepo, cache, quietLogger()), db
}

func makeRow(date time.Time, amount, counterparty, description string) parser.Row {
	a := decimal.RequireFromString(amount)
	return parser.Row{
		Date:         date,
		Amount:       a,
		Counterparty: counterparty,
		Description:  description,
		ImportHash:   parser.ImportHash(date, a, counterparty, description),
	}
}

func TestImportRows(t *testing.T) {
	svc, db := newTestService(t)
	userID := uuid.New()
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	rows := []parser.Row{
		makeRow(day, "-45.67", "REWE Markt", "Lebensmittel"),
		makeRow(day.AddDate(0, 0, 1), "2500.00", "Arbeitgeber GmbH", "Gehalt"),
	}

	stats, err := svc.ImportRows(userID, rows, true)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Imported)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, 0, stats.Errors)
	assert.Equal(t, stats.Total, stats.Imported+stats.Skipped+stats.Errors)

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	var tx models.Transaction
	require.NoError(t, db.First(&tx, "counterparty = ?", "REWE Markt").Error)
	assert.Equal(t, models.SourceFinanzguru, tx.Source)
	require.NotNil(t, tx.ImportHash)
	assert.Len(t, *tx.ImportHash, 64)
	assert.Equal(t, "EUR", tx.Currency)
}

func TestImportRowsSecondRunSkipsEverything(t *testing.T) {
	svc, _ := newTestService(t)
	userID := uuid.New()
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	rows := []parser.Row{
		makeRow(day, "-45.67", "REWE Markt", "Lebensmittel"),
		makeRow(day, "-12.00", "Kiosk", "Zeitung"),
	}

	first, err := svc.ImportRows(userID, rows, true)
	require.NoError(t, err)
	require.Equal(t, 2, first.Imported)

	second, err := svc.ImportRows(userID, rows, true)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Total)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 2, second.Skipped)
	assert.Equal(t, 0, second.Errors)
}

func TestImportRowsIntraBatchDuplicate(t *testing.T) {
	svc, db := newTestService(t)
	userID := uuid.New()
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	row := makeRow(day, "-45.67", "REWE Markt", "Lebensmittel")
	stats, err := svc.ImportRows(userID, []parser.Row{row, row, row}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 2, stats.Skipped)

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestImportRowsConstraintBackstop(t *testing.T) {
	// With duplicate skipping off, the unique index still fires and the
	// violation counts as skipped, not as an error.
	svc, db := newTestService(t)
	userID := uuid.New()
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	row := makeRow(day, "-45.67", "REWE Markt", "Lebensmittel")
	stats, err := svc.ImportRows(userID, []parser.Row{row, row}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, stats.Errors)

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestImportRowsSameHashDifferentUsers(t *testing.T) {
	svc, _ := newTestService(t)
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	row := makeRow(day, "-45.67", "REWE Markt", "Lebensmittel")

	for _, userID := range []uuid.UUID{uuid.New(), uuid.New()} {
		stats, err := svc.ImportRows(userID, []parser.Row{row}, true)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Imported)
	}
}

func TestImportRowsCategoryMapping(t *testing.T) {
	svc, db := newTestService(t)
	userID := uuid.New()
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	parent := models.Category{ID: uuid.New(), Name: "Groceries", NameDE: "Lebensmittel"}
	require.NoError(t, db.Create(&parent).Error)
	child := models.Category{ID: uuid.New(), Name: "Supermarket", NameDE: "Supermarkt", ParentID: &parent.ID}
	require.NoError(t, db.Create(&child).Error)

	mapped := makeRow(day, "-45.67", "REWE Markt", "Einkauf")
	mapped.Category = "Lebensmittel"
	mapped.Subcategory = "Supermarkt"

	unknown := makeRow(day, "-9.99", "Unbekannt", "Sonstiges")
	unknown.Category = "Gibt es nicht"

	stats, err := svc.ImportRows(userID, []parser.Row{mapped, unknown}, true)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Imported)

	var tx models.Transaction
	require.NoError(t, db.First(&tx, "counterparty = ?", "REWE Markt").Error)
	require.NotNil(t, tx.CategoryID)
	assert.Equal(t, parent.ID, *tx.CategoryID)
	require.NotNil(t, tx.SubcategoryID)
	assert.Equal(t, child.ID, *tx.SubcategoryID)
	assert.Equal(t, "Lebensmittel", tx.FgMainCategory)

	tx = models.Transaction{}
	require.NoError(t, db.First(&tx, "counterparty = ?", "Unbekannt").Error)
	assert.Nil(t, tx.CategoryID)
	assert.Equal(t, "Gibt es nicht", tx.FgMainCategory)
}

func TestImportRowsTagsAndMetadata(t *testing.T) {
	svc, db := newTestService(t)
	userID := uuid.New()
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	row := makeRow(day, "-45.67", "REWE Markt", "Einkauf")
	row.Tags = "essen, alltag, "
	row.AccountIBAN = "DE89370400440532013000"
	row.Balance = "1.234,56"
	row.Currency = "CHF"
	row.IsTransfer = true

	stats, err := svc.ImportRows(userID, []parser.Row{row}, true)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Imported)

	var tx models.Transaction
	require.NoError(t, db.First(&tx, "user_id = ?", userID).Error)
	assert.JSONEq(t, `["essen","alltag"]`, string(tx.Tags))
	assert.Equal(t, "3000", tx.AccountIBANLast4)
	require.NotNil(t, tx.BalanceAfter)
	assert.Equal(t, "1234.56", tx.BalanceAfter.String())
	assert.Equal(t, "CHF", tx.Currency)
	assert.True(t, tx.FgIsTransfer)
}

func TestImportFile(t *testing.T) {
	svc, _ := newTestService(t)
	userID := uuid.New()

	path := filepath.Join(t.TempDir(), "export.csv")
	content := "Buchungstag,Betrag,Beguenstigter/Auftraggeber,Verwendungszweck\n" +
		"15.03.2024,\"-45,67\",REWE Markt,Lebensmittel\n" +
		"kaputt,\"1,00\",X,y\n" +
		"16.03.2024,\"2.500,00\",Arbeitgeber GmbH,Gehalt\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	stats, diagnostics, err := svc.ImportFile(userID, path, true)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Imported)
	require.Len(t, diagnostics, 1)
	assert.Equal(t, 2, diagnostics[0].Row)
}

func TestImportFileUnsupportedExtension(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.ImportFile(uuid.New(), "/tmp/export.txt", true)
	var unsupported *parser.UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
}
