package rest

import (
	"net/http"

	"foodcourt-be/internal/menu"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type createMenuItemRequest struct {
	StallID     string          `json:"stallId" validate:"required"`
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=500"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Category    string          `json:"category" validate:"max=50"`
	Stock       int             `json:"stock" validate:"gte=0"`
}

type updateMenuItemRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=100"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Category    *string          `json:"category" validate:"omitempty,max=50"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	IsActive    *bool            `json:"isActive"`
}

func (h *Handler) listMenuByStall(w http.ResponseWriter, r *http.Request) {
	items, err := h.Menu.ListByStall(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) listMenuByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		respondError(w, http.StatusBadRequest, "invalid_query", "category is required")
		return
	}
	items, err := h.Menu.ListByCategory(r.Context(), category)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) getMenuItem(w http.ResponseWriter, r *http.Request) {
	it, err := h.Menu.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, it)
}

func (h *Handler) createMenuItem(w http.ResponseWriter, r *http.Request) {
	var req createMenuItemRequest
	if !decode(w, r, &req) {
		return
	}
	it, err := h.Menu.Create(r.Context(), actorOf(r), menu.CreateInput{
		StallID:     req.StallID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, it)
}

func (h *Handler) updateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req updateMenuItemRequest
	if !decode(w, r, &req) {
		return
	}
	it, err := h.Menu.Update(r.Context(), actorOf(r), chi.URLParam(r, "id"), menu.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, it)
}

func (h *Handler) deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Menu.Delete(r.Context(), actorOf(r), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
