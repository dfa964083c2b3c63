package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ImportHash fingerprints the identifying fields of a transaction for
// duplicate detection. The canonical form is
// "<ISO date>|<amount with 2 decimals>|<counterparty>|<description>",
// hashed with SHA-256 into a 64-character hex string. The same four inputs
// always produce the same hash regardless of platform or locale.
func ImportHash(date time.Time, amount decimal.Decimal, counterparty, description string) string {
	payload := fmt.Sprintf("%s|%s|%s|%s",
		date.Format("2006-01-02"), amount.StringFixed(2), counterparty, description)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
