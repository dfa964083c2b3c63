package parser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestImportHash(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	amount := decimal.RequireFromString("-45.67")

	h1 := ImportHash(date, amount, "REWE Markt", "Lebensmittel")

	t.Run("deterministic", func(t *testing.T) {
		h2 := ImportHash(date, amount, "REWE Markt", "Lebensmittel")
		assert.Equal(t, h1, h2)
	})

	t.Run("hex encoded sha256", func(t *testing.T) {
		assert.Len(t, h1, 64)
		assert.Regexp(t, "^[0-9a-f]{64}$", h1)
	})

	t.Run("any field change alters the hash", func(t *testing.T) {
		assert.NotEqual(t, h1, ImportHash(date.AddDate(0, 0, 1), amount, "REWE Markt", "Lebensmittel"))
		assert.NotEqual(t, h1, ImportHash(date, amount.Neg(), "REWE Markt", "Lebensmittel"))
		assert.NotEqual(t, h1, ImportHash(date, amount, "REWE", "Lebensmittel"))
		assert.NotEqual(t, h1, ImportHash(date, amount, "REWE Markt", ""))
	})

	t.Run("amount is canonicalized to two decimal places", func(t *testing.T) {
		a := ImportHash(date, decimal.RequireFromString("2500"), "X", "Y")
		b := ImportHash(date, decimal.RequireFromString("2500.00"), "X", "Y")
		c := ImportHash(date, decimal.RequireFromString("2500.0"), "X", "Y")
		assert.Equal(t, a, b)
		assert.Equal(t, a, c)
	})

	t.Run("time of day is ignored", func(t *testing.T) {
		noon := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
		assert.Equal(t, h1, ImportHash(noon, amount, "REWE Markt", "Lebensmittel"))
	})
}
