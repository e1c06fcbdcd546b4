package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/motosync-terminal/internal/service"
	"github.com/mmeshcher/motosync-terminal/internal/validation"
)

// GetCart возвращает корзину с подытогами, итогом и привязанным клиентом.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newCartResponse(h.service.Cart()))
}

func (h *Handler) writeCart(w http.ResponseWriter, op string, v service.CartView, err error) {
	if err != nil {
		h.writeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(v))
}

type addItemRequest struct {
	Product int64 `json:"product"`
}

// AddCartItem добавляет товар в корзину по идентификатору.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Product <= 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	v, err := h.service.AddProductToCart(r.Context(), req.Product)
	h.writeCart(w, "add to cart", v, err)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem меняет количество товара в корзине.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := validation.ParseID(chi.URLParam(r, "productID"))
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	v, err := h.service.SetQuantity(id, req.Quantity)
	h.writeCart(w, "set quantity", v, err)
}

// DeleteCartItem удаляет товар из корзины.
func (h *Handler) DeleteCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := validation.ParseID(chi.URLParam(r, "productID"))
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	v, err := h.service.RemoveFromCart(id)
	h.writeCart(w, "remove from cart", v, err)
}

type loyaltyRequest struct {
	Enabled bool `json:"enabled"`
}

// SetLoyalty включает или выключает начисление баллов.
func (h *Handler) SetLoyalty(w http.ResponseWriter, r *http.Request) {
	var req loyaltyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	v, err := h.service.SetLoyalty(req.Enabled)
	h.writeCart(w, "set loyalty", v, err)
}

type lookupRequest struct {
	Query string `json:"query"`
}

// LookupCustomer ищет клиента по имени и привязывает его к продаже.
func (h *Handler) LookupCustomer(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if _, err := h.service.LookupCustomer(r.Context(), req.Query); err != nil {
		h.writeError(w, "lookup customer", err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(h.service.Cart()))
}

// SelectCustomer привязывает к продаже клиента по идентификатору.
func (h *Handler) SelectCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := validation.ParseID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	if _, err := h.service.SelectCustomer(r.Context(), id); err != nil {
		h.writeError(w, "select customer", err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(h.service.Cart()))
}

// ClearCustomer отвязывает клиента от продажи.
func (h *Handler) ClearCustomer(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.ClearCustomer()
	h.writeCart(w, "clear customer", v, err)
}

// Checkout оформляет продажу.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.CompleteSale(r.Context())
	if err != nil {
		h.writeError(w, "checkout", err)
		return
	}

	h.logger.Info("sale completed",
		zap.Int("lines", len(res.Sales)),
		zap.String("total", res.Total.StringFixed(2)),
		zap.Bool("loyalty", res.Loyalty),
	)
	writeJSON(w, http.StatusCreated, newCheckoutResponse(res))
}
