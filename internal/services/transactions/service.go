// Package transactions covers manual transaction CRUD, listing and the
// aggregate statistics endpoint. Import is handled by the importer package.
package transactions

import (
	"encoding/json"
	"errors"
	"time"

	"personal-finance-backend/internal/models"
	"personal-finance-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("transaction not found")

type Service struct {
	transactions *repository.TransactionRepository
	log          logrus.FieldLogger
}

func NewService(transactions *repository.TransactionRepository, log logrus.FieldLogger) *Service {
	return &Service{transactions: transactions, log: log}
}

type CreateInput struct {
	Date          time.Time
	Amount        decimal.Decimal
	Currency      string
	Counterparty  string
	Description   string
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
	TaxCategoryID *uuid.UUID
	Tags          []string
	Notes         string
}

// Create adds a manual transaction. Manual transactions carry no import hash
// and are exempt from the per-user hash uniqueness constraint.
func (s *Service) Create(userID uuid.UUID, input CreateInput) (*models.Transaction, error) {
	tx := &models.Transaction{
		ID:            uuid.New(),
		UserID:        userID,
		Date:          input.Date,
		Amount:        input.Amount,
		Currency:      "EUR",
		Counterparty:  input.Counterparty,
		Description:   input.Description,
		CategoryID:    input.CategoryID,
		SubcategoryID: input.SubcategoryID,
		TaxCategoryID: input.TaxCategoryID,
		Notes:         input.Notes,
		Source:        models.SourceManual,
	}
	if input.Currency != "" {
		tx.Currency = input.Currency
	}
	if len(input.Tags) > 0 {
		raw, err := json.Marshal(input.Tags)
		if err != nil {
			return nil, err
		}
		tx.Tags = datatypes.JSON(raw)
	}

	if err := s.transactions.Create(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Service) Get(id, userID uuid.UUID) (*models.Transaction, error) {
	tx, err := s.transactions.GetByID(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tx, nil
}

func (s *Service) List(userID uuid.UUID, params repository.ListParams) ([]models.Transaction, int64, error) {
	return s.transactions.List(userID, params)
}

type UpdateInput struct {
	CategoryID     *uuid.UUID
	SetCategory    bool
	SubcategoryID  *uuid.UUID
	SetSubcategory bool
	TaxCategoryID  *uuid.UUID
	SetTaxCategory bool
	Tags           []string
	SetTags        bool
	Notes          *string
}

// Update mutates the categorization, tags and notes of an owned transaction.
// The imported core fields are immutable after import.
func (s *Service) Update(id, userID uuid.UUID, input UpdateInput) (*models.Transaction, error) {
	tx, err := s.Get(id, userID)
	if err != nil {
		return nil, err
	}

	if input.SetCategory {
		tx.CategoryID = input.CategoryID
	}
	if input.SetSubcategory {
		tx.SubcategoryID = input.SubcategoryID
	}
	if input.SetTaxCategory {
		tx.TaxCategoryID = input.TaxCategoryID
	}
	if input.SetTags {
		if len(input.Tags) == 0 {
			tx.Tags = nil
		} else {
			raw, err := json.Marshal(input.Tags)
			if err != nil {
				return nil, err
			}
			tx.Tags = datatypes.JSON(raw)
		}
	}
	if input.Notes != nil {
		tx.Notes = *input.Notes
	}

	if err := s.transactions.Save(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Service) Delete(id, userID uuid.UUID) error {
	tx, err := s.Get(id, userID)
	if err != nil {
		return err
	}
	return s.transactions.Delete(tx)
}

// Statistics summarizes a user's transactions in an optional date window.
type Statistics struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transaction_count"`
}

// GetStatistics sums income and expenses with decimal arithmetic; expenses
// are reported as a positive magnitude.
func (s *Service) GetStatistics(userID uuid.UUID, start, end *time.Time) (*Statistics, error) {
	txs, err := s.transactions.AmountsInRange(userID, start, end)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, tx := range txs {
		if tx.Amount.IsPositive() {
			stats.TotalIncome = stats.TotalIncome.Add(tx.Amount)
		} else {
			stats.TotalExpenses = stats.TotalExpenses.Add(tx.Amount.Abs())
		}
	}
	stats.Balance = stats.TotalIncome.Sub(stats.TotalExpenses)
	stats.TransactionCount = len(txs)
	return stats, nil
}
