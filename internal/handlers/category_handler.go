package handler

import (
	"errors"
	"net/http"

	catsvc "personal-finance-backend/internal/services/categories"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CategoryHandler struct {
	categories *catsvc.Service
}

func NewCategoryHandler(categories *catsvc.Service) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

func (h *CategoryHandler) List(c *gin.Context) {
	cats, err := h.categories.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (h *CategoryHandler) Tree(c *gin.Context) {
	tree, err := h.categories.Tree()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": tree})
}

type createCategoryPayload struct {
	Name      string  `json:"name" binding:"required"`
	NameDE    string  `json:"name_de"`
	ParentID  *string `json:"parent_id"`
	IsIncome  bool    `json:"is_income"`
	Icon      string  `json:"icon"`
	Color     string  `json:"color"`
	SortOrder int     `json:"sort_order"`
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var payload createCategoryPayload
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	input := catsvc.CreateInput{
		Name:      payload.Name,
		NameDE:    payload.NameDE,
		IsIncome:  payload.IsIncome,
		Icon:      payload.Icon,
		Color:     payload.Color,
		SortOrder: payload.SortOrder,
	}
	var err error
	if input.ParentID, err = parseOptionalUUID(payload.ParentID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parent_id"})
		return
	}

	category, err := h.categories.Create(input)
	if err != nil {
		if errors.Is(err, catsvc.ErrInvalidParent) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

type updateCategoryPayload struct {
	Name      *string              `json:"name"`
	NameDE    *string              `json:"name_de"`
	ParentID  jsonOptional[string] `json:"parent_id"`
	IsIncome  *bool                `json:"is_income"`
	Icon      *string              `json:"icon"`
	Color     *string              `json:"color"`
	SortOrder *int                 `json:"sort_order"`
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category ID"})
		return
	}

	var payload updateCategoryPayload
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	input := catsvc.UpdateInput{
		Name:      payload.Name,
		NameDE:    payload.NameDE,
		IsIncome:  payload.IsIncome,
		Icon:      payload.Icon,
		Color:     payload.Color,
		SortOrder: payload.SortOrder,
	}
	if payload.ParentID.Set {
		input.SetParent = true
		if input.ParentID, err = parseOptionalUUID(payload.ParentID.Value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parent_id"})
			return
		}
	}

	category, err := h.categories.Update(id, input)
	if err != nil {
		switch {
		case errors.Is(err, catsvc.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		case errors.Is(err, catsvc.ErrCyclicParent), errors.Is(err, catsvc.ErrInvalidParent):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category ID"})
		return
	}

	if err := h.categories.Delete(id); err != nil {
		switch {
		case errors.Is(err, catsvc.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		case errors.Is(err, catsvc.ErrHasChildren), errors.Is(err, catsvc.ErrInUse):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}

func (h *CategoryHandler) TaxCategories(c *gin.Context) {
	cats, err := h.categories.ListTaxCategories(c.Query("anlage"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tax_categories": cats})
}
