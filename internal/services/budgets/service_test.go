package budgets

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"personal-finance-backend/internal/models"
	"personal-finance-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Category{}, &models.Transaction{}, &models.Budget{}))

	log := logrus.New()
	log.SetOutput(io.Discard)

	return NewService(
		repository.NewBudgetRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewTransactionRepository(db),
		log,
	), db
}

func seedCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()
	category := models.Category{ID: uuid.New(), Name: name}
	require.NoError(t, db.Create(&category).Error)
	return category
}

func seedSpending(t *testing.T, db *gorm.DB, userID uuid.UUID, categoryID uuid.UUID, date time.Time, amount string) {
	t.Helper()
	tx := models.Transaction{
		ID:         uuid.New(),
		UserID:     userID,
		Date:       date,
		Amount:     decimal.RequireFromString(amount),
		CategoryID: &categoryID,
	}
	require.NoError(t, db.Create(&tx).Error)
}

func TestCreateValidation(t *testing.T) {
	svc, db := newTestService(t)
	userID := uuid.New()
	category := seedCategory(t, db, "Groceries")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("unknown category", func(t *testing.T) {
		_, err := svc.Create(userID, CreateInput{
			CategoryID: uuid.New(),
			Amount:     decimal.RequireFromString("300"),
			StartDate:  start,
		})
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})

	t.Run("invalid period", func(t *testing.T) {
		_, err := svc.Create(userID, CreateInput{
			CategoryID: category.ID,
			Amount:     decimal.RequireFromString("300"),
			Period:     "daily",
			StartDate:  start,
		})
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})

	t.Run("blank period defaults to monthly", func(t *testing.T) {
		budget, err := svc.Create(userID, CreateInput{
			CategoryID: category.ID,
			Amount:     decimal.RequireFromString("300"),
			StartDate:  start,
		})
		require.NoError(t, err)
		assert.Equal(t, models.PeriodMonthly, budget.Period)
	})
}

func TestPeriodWindow(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	// 2024-03-15 is a Friday.
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

	t.Run("weekly starts Monday", func(t *testing.T) {
		budget := &models.Budget{Period: models.PeriodWeekly, StartDate: start}
		winStart, winEnd := periodWindow(budget, now)
		assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), winStart)
		assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), winEnd)
	})

	t.Run("weekly on a Monday", func(t *testing.T) {
		budget := &models.Budget{Period: models.PeriodWeekly, StartDate: start}
		winStart, _ := periodWindow(budget, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), winStart)
	})

	t.Run("monthly", func(t *testing.T) {
		budget := &models.Budget{Period: models.PeriodMonthly, StartDate: start}
		winStart, winEnd := periodWindow(budget, now)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), winStart)
		assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), winEnd)
	})

	t.Run("yearly", func(t *testing.T) {
		budget := &models.Budget{Period: models.PeriodYearly, StartDate: start}
		winStart, winEnd := periodWindow(budget, now)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), winStart)
		assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), winEnd)
	})

	t.Run("clamped to budget start", func(t *testing.T) {
		late := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		budget := &models.Budget{Period: models.PeriodMonthly, StartDate: late}
		winStart, _ := periodWindow(budget, now)
		assert.Equal(t, late, winStart)
	})

	t.Run("clamped to budget end", func(t *testing.T) {
		end := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
		budget := &models.Budget{Period: models.PeriodMonthly, StartDate: start, EndDate: &end}
		_, winEnd := periodWindow(budget, now)
		assert.Equal(t, end, winEnd)
	})
}

func TestGetProgress(t *testing.T) {
	svc, db := newTestService(t)
	userID := uuid.New()
	category := seedCategory(t, db, "Groceries")
	other := seedCategory(t, db, "Housing")

	budget, err := svc.Create(userID, CreateInput{
		CategoryID: category.ID,
		Name:       "Essen",
		Amount:     decimal.RequireFromString("300"),
		Period:     models.PeriodMonthly,
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	march := func(day int) time.Time { return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC) }

	seedSpending(t, db, userID, category.ID, march(5), "-45.67")
	seedSpending(t, db, userID, category.ID, march(20), "-54.33")
	// Income in the category does not count as spending.
	seedSpending(t, db, userID, category.ID, march(10), "25.00")
	// Other category and other month stay out.
	seedSpending(t, db, userID, other.ID, march(6), "-99.00")
	seedSpending(t, db, userID, category.ID, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), "-10.00")
	// Other user's spending stays out.
	seedSpending(t, db, uuid.New(), category.ID, march(7), "-33.00")

	progress, err := svc.GetProgress(budget, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "100", progress.Spent.String())
	assert.Equal(t, "200", progress.Remaining.String())
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), progress.PeriodStart)
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	svc, db := newTestService(t)
	userID := uuid.New()
	category := seedCategory(t, db, "Groceries")

	budget, err := svc.Create(userID, CreateInput{
		CategoryID: category.ID,
		Amount:     decimal.RequireFromString("300"),
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// Another user cannot see or touch the budget.
	_, err = svc.Get(budget.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	err = svc.Delete(budget.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	newAmount := decimal.RequireFromString("450")
	updated, err := svc.Update(budget.ID, userID, UpdateInput{Amount: &newAmount})
	require.NoError(t, err)
	assert.Equal(t, "450", updated.Amount.String())

	badPeriod := "daily"
	_, err = svc.Update(budget.ID, userID, UpdateInput{Period: &badPeriod})
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	updated, err = svc.Update(budget.ID, userID, UpdateInput{SetEnd: true, EndDate: &end})
	require.NoError(t, err)
	require.NotNil(t, updated.EndDate)

	updated, err = svc.Update(budget.ID, userID, UpdateInput{SetEnd: true})
	require.NoError(t, err)
	assert.Nil(t, updated.EndDate)

	require.NoError(t, svc.Delete(budget.ID, userID))
	_, err = svc.Get(budget.ID, userID)
	assert.ErrorIs(t, err, ErrNotFound)
}
