package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/motosync-terminal/internal/validation"
)

// GetCustomers возвращает клиентов, отсортированных по имени, с фильтром по подстроке.
func (h *Handler) GetCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, "list customers", err)
		return
	}

	resp := make([]customerResponse, 0, len(customers))
	for _, c := range customers {
		resp = append(resp, newCustomerResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

type createCustomerRequest struct {
	Name string `json:"name"`
}

// CreateCustomer создаёт клиента.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	c, err := h.service.CreateCustomer(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, "create customer", err)
		return
	}
	writeJSON(w, http.StatusCreated, newCustomerResponse(*c))
}

// GetCustomer возвращает карточку клиента и историю его покупок.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := validation.ParseID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	detail, err := h.service.GetCustomerDetail(r.Context(), id)
	if err != nil {
		h.writeError(w, "get customer", err)
		return
	}

	resp := customerDetailResponse{
		customerResponse: newCustomerResponse(detail.Customer),
		Sales:            make([]saleResponse, 0, len(detail.Sales)),
	}
	for _, s := range detail.Sales {
		resp.Sales = append(resp.Sales, newSaleResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteCustomer удаляет клиента; требует параметр confirm=true.
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := validation.ParseID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	if err := h.service.DeleteCustomer(r.Context(), id, confirmed); err != nil {
		h.writeError(w, "delete customer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
