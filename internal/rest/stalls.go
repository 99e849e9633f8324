package rest

import (
	"net/http"

	"foodcourt-be/internal/stall"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type createStallRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=100"`
	Description string          `json:"description" validate:"max=500"`
	Category    string          `json:"category" validate:"max=50"`
	Rent        decimal.Decimal `json:"rent" validate:"gte=0"`
}

type updateStallRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
	Category    *string          `json:"category" validate:"omitempty,max=50"`
	Rent        *decimal.Decimal `json:"rent" validate:"omitempty,gte=0"`
	IsActive    *bool            `json:"isActive"`
}

func (h *Handler) listStalls(w http.ResponseWriter, r *http.Request) {
	stalls, err := h.Stalls.List(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stalls)
}

func (h *Handler) getStall(w http.ResponseWriter, r *http.Request) {
	st, err := h.Stalls.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (h *Handler) myStalls(w http.ResponseWriter, r *http.Request) {
	stalls, err := h.Stalls.Mine(r.Context(), actorOf(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stalls)
}

func (h *Handler) createStall(w http.ResponseWriter, r *http.Request) {
	var req createStallRequest
	if !decode(w, r, &req) {
		return
	}
	st, err := h.Stalls.Create(r.Context(), actorOf(r), stall.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Rent:        req.Rent,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, st)
}

func (h *Handler) updateStall(w http.ResponseWriter, r *http.Request) {
	var req updateStallRequest
	if !decode(w, r, &req) {
		return
	}
	st, err := h.Stalls.Update(r.Context(), actorOf(r), chi.URLParam(r, "id"), stall.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Rent:        req.Rent,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (h *Handler) deleteStall(w http.ResponseWriter, r *http.Request) {
	if err := h.Stalls.Delete(r.Context(), actorOf(r), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
