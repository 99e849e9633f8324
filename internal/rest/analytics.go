package rest

import "net/http"

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Analytics.Dashboard(r.Context(), actorOf(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handler) recentOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Analytics.RecentOrders(r.Context(), actorOf(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handler) topStalls(w http.ResponseWriter, r *http.Request) {
	stalls, err := h.Analytics.TopStalls(r.Context(), actorOf(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stalls)
}

func (h *Handler) salesTrends(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r.URL.Query(), "days")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}
	trend, err := h.Analytics.SalesTrends(r.Context(), actorOf(r), days)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, trend)
}

func (h *Handler) realtimeStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Analytics.Realtime(r.Context(), actorOf(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
