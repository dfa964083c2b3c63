package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"personal-finance-backend/internal/middleware"
	"personal-finance-backend/internal/parser"
	"personal-finance-backend/internal/repository"
	importersvc "personal-finance-backend/internal/services/importer"
	txsvc "personal-finance-backend/internal/services/transactions"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionHandler struct {
	transactions *txsvc.Service
	importer     *importersvc.Service
}

func NewTransactionHandler(transactions *txsvc.Service, importer *importersvc.Service) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, importer: importer}
}

// Import accepts a multipart Finanzguru export (.xlsx or .csv), stages it in
// a temp file and runs the import. The response always carries complete
// statistics, even when some or all rows failed.
func (h *TransactionHandler) Import(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	skipDuplicates := c.DefaultQuery("skip_duplicates", "true") != "false"

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file format, expected .xlsx or .csv"})
		return
	}

	tmp, err := os.CreateTemp("", "import-*"+ext)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, file)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	stats, diagnostics, err := h.importer.ImportFile(userID, tmp.Name(), skipDuplicates)
	if err != nil {
		var missingCols *parser.MissingColumnsError
		var badFormat *parser.UnsupportedFormatError
		switch {
		case errors.As(err, &missingCols), errors.As(err, &badFormat):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	skipped := make([]string, 0, len(diagnostics))
	for _, d := range diagnostics {
		skipped = append(skipped, d.Message())
	}

	c.JSON(http.StatusOK, gin.H{
		"filename":     header.Filename,
		"stats":        stats,
		"skipped_rows": skipped,
	})
}

type createTransactionPayload struct {
	Date          string   `json:"date"` // ISO YYYY-MM-DD
	Amount        string   `json:"amount"`
	Currency      string   `json:"currency"`
	Counterparty  string   `json:"counterparty"`
	Description   string   `json:"description"`
	CategoryID    *string  `json:"category_id"`
	SubcategoryID *string  `json:"subcategory_id"`
	TaxCategoryID *string  `json:"tax_category_id"`
	Tags          []string `json:"tags"`
	Notes         string   `json:"notes"`
}

func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var payload createTransactionPayload
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}
	amount, err := decimal.NewFromString(payload.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	input := txsvc.CreateInput{
		Date:         date,
		Amount:       amount,
		Currency:     payload.Currency,
		Counterparty: payload.Counterparty,
		Description:  payload.Description,
		Tags:         payload.Tags,
		Notes:        payload.Notes,
	}
	if input.CategoryID, err = parseOptionalUUID(payload.CategoryID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
		return
	}
	if input.SubcategoryID, err = parseOptionalUUID(payload.SubcategoryID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subcategory_id"})
		return
	}
	if input.TaxCategoryID, err = parseOptionalUUID(payload.TaxCategoryID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tax_category_id"})
		return
	}

	tx, err := h.transactions.Create(userID, input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	params := repository.ListParams{
		Search: c.Query("search"),
	}
	if v := c.Query("start_date"); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			params.StartDate = &d
		}
	}
	if v := c.Query("end_date"); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			params.EndDate = &d
		}
	}
	if v := c.Query("category_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			params.CategoryID = &id
		}
	}
	params.Offset, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	params.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))

	txs, total, err := h.transactions.List(userID, params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": txs, "total": total})
}

func (h *TransactionHandler) Get(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}

	tx, err := h.transactions.Get(id, userID)
	if err != nil {
		if errors.Is(err, txsvc.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

type updateTransactionPayload struct {
	CategoryID    jsonOptional[string] `json:"category_id"`
	SubcategoryID jsonOptional[string] `json:"subcategory_id"`
	TaxCategoryID jsonOptional[string] `json:"tax_category_id"`
	Tags          *[]string            `json:"tags"`
	Notes         *string              `json:"notes"`
}

func (h *TransactionHandler) Update(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}

	var payload updateTransactionPayload
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var input txsvc.UpdateInput
	if payload.CategoryID.Set {
		input.SetCategory = true
		if input.CategoryID, err = parseOptionalUUID(payload.CategoryID.Value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
			return
		}
	}
	if payload.SubcategoryID.Set {
		input.SetSubcategory = true
		if input.SubcategoryID, err = parseOptionalUUID(payload.SubcategoryID.Value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subcategory_id"})
			return
		}
	}
	if payload.TaxCategoryID.Set {
		input.SetTaxCategory = true
		if input.TaxCategoryID, err = parseOptionalUUID(payload.TaxCategoryID.Value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tax_category_id"})
			return
		}
	}
	if payload.Tags != nil {
		input.SetTags = true
		input.Tags = *payload.Tags
	}
	input.Notes = payload.Notes

	tx, err := h.transactions.Update(id, userID, input)
	if err != nil {
		if errors.Is(err, txsvc.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}

	if err := h.transactions.Delete(id, userID); err != nil {
		if errors.Is(err, txsvc.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction deleted"})
}

func (h *TransactionHandler) Statistics(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var start, end *time.Time
	if v := c.Query("start_date"); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			start = &d
		}
	}
	if v := c.Query("end_date"); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			end = &d
		}
	}

	stats, err := h.transactions.GetStatistics(userID, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
