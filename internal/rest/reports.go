package rest

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"foodcourt-be/internal/report"

	"github.com/go-chi/chi/v5"
)

type generateReportRequest struct {
	Type      string     `json:"type" validate:"required,oneof=sales performance stall-ranking"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	StallID   string     `json:"stallId"`
}

func (h *Handler) generateReport(w http.ResponseWriter, r *http.Request) {
	var req generateReportRequest
	if !decode(w, r, &req) {
		return
	}
	params := report.Params{From: req.StartDate, To: req.EndDate, StallID: req.StallID}
	actor := actorOf(r)

	var (
		rep *report.Report
		err error
	)
	switch report.Type(req.Type) {
	case report.TypeSales:
		rep, err = h.Reports.Sales(r.Context(), actor, params)
	case report.TypePerformance:
		rep, err = h.Reports.Performance(r.Context(), actor, params)
	case report.TypeStallRanking:
		rep, err = h.Reports.StallRanking(r.Context(), actor, params)
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, rep)
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Reports.List(r.Context(), actorOf(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, reports)
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Reports.Get(r.Context(), actorOf(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

func (h *Handler) exportReport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	rep, err := h.Reports.Export(r.Context(), actorOf(r), chi.URLParam(r, "id"), &buf)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+report.Filename(rep))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
