// Package matching scores a user's transactions against the structured data
// extracted from a receipt. Matching is recomputed on every call and has no
// persisted side effect; linking is a separate, explicit operation.
package matching

import (
	"sort"
	"strings"
	"time"

	"personal-finance-backend/internal/models"
	"personal-finance-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultMaxResults bounds the candidate list when the caller does not
	// ask for a specific size.
	DefaultMaxResults = 10

	// poolLimit caps how many transactions are fetched for scoring.
	poolLimit = 100

	// minConfidence is the inclusion floor: candidates scoring below it are
	// discarded, not merely ranked low.
	minConfidence = 10.0

	dateWindowDays = 7
)

// Candidate pairs a transaction with its confidence score in [0,100].
// Candidates are transient; nothing about them is persisted.
type Candidate struct {
	Transaction models.Transaction `json:"transaction"`
	Confidence  float64            `json:"confidence"`
}

type Engine struct {
	transactions *repository.TransactionRepository
	log          logrus.FieldLogger
}

func NewEngine(transactions *repository.TransactionRepository, log logrus.FieldLogger) *Engine {
	return &Engine{transactions: transactions, log: log}
}

// FindMatches returns up to maxResults of the user's transactions ranked by
// descending confidence against the receipt's extracted data. When the
// receipt carries a parseable date the candidate pool is narrowed to ±7 days
// around it before scoring.
func (e *Engine) FindMatches(receipt *models.Receipt, userID uuid.UUID, maxResults int) ([]Candidate, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	data := receipt.ExtractedFields()

	var receiptDate *time.Time
	var start, end *time.Time
	if data.Date != "" {
		if d, err := time.Parse("2006-01-02", data.Date); err == nil {
			receiptDate = &d
			s := d.AddDate(0, 0, -dateWindowDays)
			t := d.AddDate(0, 0, dateWindowDays)
			start, end = &s, &t
		}
		// An unparseable date disables the pre-filter; scoring proceeds
		// over the full pool.
	}

	pool, err := e.transactions.FindInDateRange(userID, start, end, poolLimit)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(pool))
	for _, tx := range pool {
		score := scoreDate(receiptDate, tx.Date) +
			scoreAmount(data.Total, tx.Amount) +
			scoreMerchant(data.Merchant, tx.Counterparty)

		if score >= minConfidence {
			candidates = append(candidates, Candidate{Transaction: tx, Confidence: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}

	e.log.WithFields(logrus.Fields{
		"receipt_id": receipt.ID,
		"pool":       len(pool),
		"candidates": len(candidates),
	}).Debug("receipt matching completed")

	return candidates, nil
}

// scoreDate awards up to 40 points for calendar-day proximity.
func scoreDate(receiptDate *time.Time, txDate time.Time) float64 {
	if receiptDate == nil {
		return 0
	}
	days := daysBetween(*receiptDate, txDate)
	switch {
	case days == 0:
		return 40
	case days <= 2:
		return 30
	case days <= dateWindowDays:
		return 20
	default:
		return 0
	}
}

// scoreAmount awards up to 40 points by comparing absolute amounts.
func scoreAmount(receiptTotal *decimal.Decimal, txAmount decimal.Decimal) float64 {
	if receiptTotal == nil {
		return 0
	}
	diff := receiptTotal.Abs().Sub(txAmount.Abs()).Abs()
	switch {
	case diff.IsZero():
		return 40
	case diff.LessThanOrEqual(decimal.NewFromFloat(0.01)):
		return 35
	case diff.LessThanOrEqual(decimal.NewFromInt(1)):
		return 25
	case diff.LessThanOrEqual(decimal.NewFromInt(5)):
		return 15
	default:
		return 0
	}
}

// scoreMerchant awards up to 20 points for case-insensitive name overlap:
// full containment either way scores 20, a shared word longer than three
// characters scores 10.
func scoreMerchant(merchant, counterparty string) float64 {
	if merchant == "" || counterparty == "" {
		return 0
	}
	m := strings.ToLower(merchant)
	c := strings.ToLower(counterparty)

	if strings.Contains(c, m) || strings.Contains(m, c) {
		return 20
	}
	for _, word := range strings.Fields(m) {
		if len(word) > 3 && strings.Contains(c, word) {
			return 10
		}
	}
	return 0
}

func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := int(a.Sub(b).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}
