package handler

import (
	"errors"
	"net/http"
	"strconv"

	"personal-finance-backend/internal/middleware"
	"personal-finance-backend/internal/services/matching"
	receiptsvc "personal-finance-backend/internal/services/receipts"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReceiptHandler struct {
	receipts *receiptsvc.Service
	matcher  *matching.Engine
}

func NewReceiptHandler(receipts *receiptsvc.Service, matcher *matching.Engine) *ReceiptHandler {
	return &ReceiptHandler{receipts: receipts, matcher: matcher}
}

func (h *ReceiptHandler) Upload(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	receipt, err := h.receipts.Upload(userID, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"receipt": receipt})
}

func (h *ReceiptHandler) List(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	receipts, err := h.receipts.List(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipts": receipts})
}

func (h *ReceiptHandler) Get(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receipt ID"})
		return
	}

	receipt, err := h.receipts.Get(id, userID)
	if err != nil {
		if errors.Is(err, receiptsvc.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipt": receipt})
}

// Matches ranks the user's transactions against the receipt's extracted
// fields and returns scored candidates, best first.
func (h *ReceiptHandler) Matches(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receipt ID"})
		return
	}

	receipt, err := h.receipts.Get(id, userID)
	if err != nil {
		if errors.Is(err, receiptsvc.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	maxResults, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	candidates, err := h.matcher.FindMatches(receipt, userID, maxResults)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": candidates})
}

type linkReceiptPayload struct {
	TransactionID string `json:"transaction_id" binding:"required"`
}

func (h *ReceiptHandler) Link(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receipt ID"})
		return
	}

	var payload linkReceiptPayload
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	transactionID, err := uuid.Parse(payload.TransactionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction_id"})
		return
	}

	receipt, err := h.receipts.Link(id, transactionID, userID)
	if err != nil {
		if errors.Is(err, receiptsvc.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipt": receipt})
}

func (h *ReceiptHandler) Unlink(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receipt ID"})
		return
	}

	receipt, err := h.receipts.Unlink(id, userID)
	if err != nil {
		if errors.Is(err, receiptsvc.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipt": receipt})
}

func (h *ReceiptHandler) Delete(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receipt ID"})
		return
	}

	if err := h.receipts.Delete(id, userID); err != nil {
		if errors.Is(err, receiptsvc.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "receipt deleted"})
}
