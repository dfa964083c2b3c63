package handler

import (
	"errors"
	"net/http"
	"time"

	"personal-finance-backend/internal/middleware"
	budgetsvc "personal-finance-backend/internal/services/budgets"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BudgetHandler struct {
	budgets *budgetsvc.Service
}

func NewBudgetHandler(budgets *budgetsvc.Service) *BudgetHandler {
	return &BudgetHandler{budgets: budgets}
}

type createBudgetPayload struct {
	CategoryID string  `json:"category_id" binding:"required"`
	Name       string  `json:"name"`
	Amount     string  `json:"amount" binding:"required"`
	Period     string  `json:"period"`
	StartDate  string  `json:"start_date"`
	EndDate    *string `json:"end_date"`
}

func (h *BudgetHandler) Create(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var payload createBudgetPayload
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	categoryID, err := uuid.Parse(payload.CategoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
		return
	}
	amount, err := decimal.NewFromString(payload.Amount)
	if err != nil || amount.Sign() <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive number"})
		return
	}

	input := budgetsvc.CreateInput{
		CategoryID: categoryID,
		Name:       payload.Name,
		Amount:     amount,
		Period:     payload.Period,
		StartDate:  time.Now().UTC(),
	}
	if payload.StartDate != "" {
		if input.StartDate, err = time.Parse("2006-01-02", payload.StartDate); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, expected YYYY-MM-DD"})
			return
		}
	}
	if payload.EndDate != nil && *payload.EndDate != "" {
		end, err := time.Parse("2006-01-02", *payload.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date, expected YYYY-MM-DD"})
			return
		}
		input.EndDate = &end
	}

	budget, err := h.budgets.Create(userID, input)
	if err != nil {
		switch {
		case errors.Is(err, budgetsvc.ErrInvalidCategory), errors.Is(err, budgetsvc.ErrInvalidPeriod):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

func (h *BudgetHandler) List(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	budgets, err := h.budgets.List(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"budgets": budgets})
}

func (h *BudgetHandler) Get(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid budget ID"})
		return
	}

	budget, err := h.budgets.Get(id, userID)
	if err != nil {
		if errors.Is(err, budgetsvc.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "budget not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// Progress reports how much of the budget is spent inside the period window
// containing the current date.
func (h *BudgetHandler) Progress(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid budget ID"})
		return
	}

	budget, err := h.budgets.Get(id, userID)
	if err != nil {
		if errors.Is(err, budgetsvc.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "budget not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	progress, err := h.budgets.GetProgress(budget, time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, progress)
}

type updateBudgetPayload struct {
	Name    *string              `json:"name"`
	Amount  *string              `json:"amount"`
	Period  *string              `json:"period"`
	EndDate jsonOptional[string] `json:"end_date"`
}

func (h *BudgetHandler) Update(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid budget ID"})
		return
	}

	var payload updateBudgetPayload
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	input := budgetsvc.UpdateInput{
		Name:   payload.Name,
		Period: payload.Period,
	}
	if payload.Amount != nil {
		amount, err := decimal.NewFromString(*payload.Amount)
		if err != nil || amount.Sign() <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive number"})
			return
		}
		input.Amount = &amount
	}
	if payload.EndDate.Set {
		input.SetEnd = true
		if payload.EndDate.Value != nil && *payload.EndDate.Value != "" {
			end, err := time.Parse("2006-01-02", *payload.EndDate.Value)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date, expected YYYY-MM-DD"})
				return
			}
			input.EndDate = &end
		}
	}

	budget, err := h.budgets.Update(id, userID, input)
	if err != nil {
		switch {
		case errors.Is(err, budgetsvc.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "budget not found"})
		case errors.Is(err, budgetsvc.ErrInvalidPeriod):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

func (h *BudgetHandler) Delete(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid budget ID"})
		return
	}

	if err := h.budgets.Delete(id, userID); err != nil {
		if errors.Is(err, budgetsvc.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "budget not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "budget deleted"})
}
