package rest

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"foodcourt-be/internal/order"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type createOrderRequest struct {
	PaymentMethod   string `json:"paymentMethod" validate:"required"`
	DeliveryAddress string `json:"deliveryAddress" validate:"max=500"`
	Notes           string `json:"notes" validate:"max=500"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// listOrdersQuery is parsed from the query string.
type listOrdersQuery struct {
	Status      string           `json:"status" validate:"omitempty,oneof=PENDING PREPARING READY_FOR_PICKUP COMPLETED CANCELLED"`
	CreatedFrom *time.Time       `json:"createdFrom"`
	CreatedTo   *time.Time       `json:"createdTo"`
	MinAmount   *decimal.Decimal `json:"minAmount" validate:"omitempty,gte=0"`
	MaxAmount   *decimal.Decimal `json:"maxAmount" validate:"omitempty,gte=0"`
	Limit       int              `json:"limit" validate:"gte=0,lte=100"`
	Page        int              `json:"page" validate:"gte=0"`
}

func (q listOrdersQuery) filter() order.Filter {
	f := order.Filter{
		CreatedFrom: q.CreatedFrom,
		CreatedTo:   q.CreatedTo,
		MinAmount:   q.MinAmount,
		MaxAmount:   q.MaxAmount,
		Limit:       q.Limit,
		Page:        q.Page,
	}
	if q.Status != "" {
		s := order.Status(q.Status)
		f.Status = &s
	}
	return f
}

func parseListOrdersQuery(values url.Values) (listOrdersQuery, error) {
	q := listOrdersQuery{Status: values.Get("status")}
	var err error
	if q.CreatedFrom, err = queryTime(values, "createdFrom", false); err != nil {
		return q, err
	}
	if q.CreatedTo, err = queryTime(values, "createdTo", true); err != nil {
		return q, err
	}
	if q.MinAmount, err = queryDecimal(values, "minAmount"); err != nil {
		return q, err
	}
	if q.MaxAmount, err = queryDecimal(values, "maxAmount"); err != nil {
		return q, err
	}
	if q.Limit, err = queryInt(values, "limit"); err != nil {
		return q, err
	}
	if q.Page, err = queryInt(values, "page"); err != nil {
		return q, err
	}
	return q, nil
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.Orders.CreateOrder(r.Context(), actorOf(r), order.CreateInput{
		PaymentMethod:   order.PaymentMethod(req.PaymentMethod),
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q, err := parseListOrdersQuery(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}
	if !check(w, &q) {
		return
	}
	orders, err := h.Orders.ListOrders(r.Context(), actorOf(r), q.filter())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.GetOrder(r.Context(), actorOf(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.Orders.UpdateStatus(r.Context(), actorOf(r), chi.URLParam(r, "id"), order.Status(req.Status))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// queryTime accepts RFC 3339 timestamps or plain dates. A plain date used as
// an upper bound covers the whole day: the last microsecond Postgres can store.
func queryTime(values url.Values, key string, endOfDay bool) (*time.Time, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Microsecond)
		}
		return &t, nil
	}
	return nil, fmt.Errorf("%s must be a date or RFC 3339 timestamp", key)
}

func queryDecimal(values url.Values, key string) (*decimal.Decimal, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &d, nil
}

func queryInt(values url.Values, key string) (int, error) {
	raw := values.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}
