// Package budgets implements per-category spending budgets with weekly,
// monthly or yearly periods.
package budgets

import (
	"errors"
	"fmt"
	"time"

	"personal-finance-backend/internal/models"
	"personal-finance-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("budget not found")
	ErrInvalidPeriod   = errors.New("period must be weekly, monthly or yearly")
	ErrInvalidCategory = errors.New("budget category not found")
)

type Service struct {
	budgets      *repository.BudgetRepository
	categories   *repository.CategoryRepository
	transactions *repository.TransactionRepository
	log          logrus.FieldLogger
}

func NewService(
	budgets *repository.BudgetRepository,
	categories *repository.CategoryRepository,
	transactions *repository.TransactionRepository,
	log logrus.FieldLogger,
) *Service {
	return &Service{
		budgets:      budgets,
		categories:   categories,
		transactions: transactions,
		log:          log,
	}
}

type CreateInput struct {
	CategoryID uuid.UUID
	Name       string
	Amount     decimal.Decimal
	Period     string
	StartDate  time.Time
	EndDate    *time.Time
}

func (s *Service) Create(userID uuid.UUID, input CreateInput) (*models.Budget, error) {
	if _, err := s.categories.GetByID(input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCategory
		}
		return nil, err
	}

	period := input.Period
	if period == "" {
		period = models.PeriodMonthly
	}
	switch period {
	case models.PeriodWeekly, models.PeriodMonthly, models.PeriodYearly:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidPeriod, period)
	}

	budget := &models.Budget{
		ID:         uuid.New(),
		UserID:     userID,
		CategoryID: input.CategoryID,
		Name:       input.Name,
		Amount:     input.Amount,
		Period:     period,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
	}
	if err := s.budgets.Create(budget); err != nil {
		return nil, err
	}
	return budget, nil
}

func (s *Service) Get(id, userID uuid.UUID) (*models.Budget, error) {
	budget, err := s.budgets.GetByID(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return budget, nil
}

func (s *Service) List(userID uuid.UUID) ([]models.Budget, error) {
	return s.budgets.ListByUser(userID)
}

type UpdateInput struct {
	Name    *string
	Amount  *decimal.Decimal
	Period  *string
	EndDate *time.Time
	SetEnd  bool
}

func (s *Service) Update(id, userID uuid.UUID, input UpdateInput) (*models.Budget, error) {
	budget, err := s.Get(id, userID)
	if err != nil {
		return nil, err
	}

	if input.Period != nil {
		switch *input.Period {
		case models.PeriodWeekly, models.PeriodMonthly, models.PeriodYearly:
		default:
			return nil, fmt.Errorf("%w: %s", ErrInvalidPeriod, *input.Period)
		}
		budget.Period = *input.Period
	}
	if input.Name != nil {
		budget.Name = *input.Name
	}
	if input.Amount != nil {
		budget.Amount = *input.Amount
	}
	if input.SetEnd {
		budget.EndDate = input.EndDate
	}

	if err := s.budgets.Save(budget); err != nil {
		return nil, err
	}
	return budget, nil
}

func (s *Service) Delete(id, userID uuid.UUID) error {
	budget, err := s.Get(id, userID)
	if err != nil {
		return err
	}
	return s.budgets.Delete(budget)
}

// Progress is a budget with its current-period spending.
type Progress struct {
	models.Budget
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	Spent       decimal.Decimal `json:"spent"`
	Remaining   decimal.Decimal `json:"remaining"`
}

// GetProgress computes the current period window for the budget and the
// spending inside it.
func (s *Service) GetProgress(budget *models.Budget, now time.Time) (*Progress, error) {
	start, end := periodWindow(budget, now)
	spent, err := s.spentInWindow(budget, start, end)
	if err != nil {
		return nil, err
	}

	return &Progress{
		Budget:      *budget,
		PeriodStart: start,
		PeriodEnd:   end,
		Spent:       spent,
		Remaining:   budget.Amount.Sub(spent),
	}, nil
}

// spentInWindow sums the absolute value of negative amounts attributed to the
// budget's category or any transaction using it as subcategory. Summation is
// decimal arithmetic in Go, not floating point in SQL.
func (s *Service) spentInWindow(budget *models.Budget, start, end time.Time) (decimal.Decimal, error) {
	txs, err := s.transactions.AmountsInRange(budget.UserID, &start, &end)
	if err != nil {
		return decimal.Zero, err
	}

	spent := decimal.Zero
	for _, tx := range txs {
		if !tx.Amount.IsNegative() {
			continue
		}
		inCategory := (tx.CategoryID != nil && *tx.CategoryID == budget.CategoryID) ||
			(tx.SubcategoryID != nil && *tx.SubcategoryID == budget.CategoryID)
		if inCategory {
			spent = spent.Add(tx.Amount.Abs())
		}
	}
	return spent, nil
}

// periodWindow returns the current period for the budget: the ISO week
// starting Monday, the calendar month, or the calendar year containing now,
// clamped to the budget's start and end dates.
func periodWindow(budget *models.Budget, now time.Time) (time.Time, time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var start, end time.Time
	switch budget.Period {
	case models.PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
		start = day.AddDate(0, 0, -offset)
		end = start.AddDate(0, 0, 6)
	case models.PeriodYearly:
		start = time.Date(day.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(day.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
	default: // monthly
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, -1)
	}

	if start.Before(budget.StartDate) {
		start = budget.StartDate
	}
	if budget.EndDate != nil && end.After(*budget.EndDate) {
		end = *budget.EndDate
	}
	return start, end
}
