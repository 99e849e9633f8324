package rest

import (
	"net/http"

	"foodcourt-be/internal/rating"

	"github.com/go-chi/chi/v5"
)

type rateStallRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=500"`
}

type rateStallResponse struct {
	Rating *rating.Rating `json:"rating"`
	rating.Summary
}

func (h *Handler) rateStall(w http.ResponseWriter, r *http.Request) {
	var req rateStallRequest
	if !decode(w, r, &req) {
		return
	}
	rt, summary, err := h.Ratings.Rate(r.Context(), actorOf(r), chi.URLParam(r, "id"), req.Rating, req.Comment)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rateStallResponse{Rating: rt, Summary: summary})
}

func (h *Handler) listRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.Ratings.ListByStall(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ratings)
}

// myRating responds with null when the caller has not rated the stall.
func (h *Handler) myRating(w http.ResponseWriter, r *http.Request) {
	rt, err := h.Ratings.Mine(r.Context(), actorOf(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rt)
}
