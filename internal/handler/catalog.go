package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/motosync-terminal/internal/model"
	"github.com/mmeshcher/motosync-terminal/internal/service"
	"github.com/mmeshcher/motosync-terminal/internal/validation"
)

// GetProducts возвращает каталог с фильтрами по категории и подстроке названия.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	f := service.ProductFilter{
		Category: model.Category(r.URL.Query().Get("category")),
		Query:    r.URL.Query().Get("q"),
	}
	if f.Category != "" && !f.Category.IsValid() {
		http.Error(w, "unknown category", http.StatusBadRequest)
		return
	}

	products, err := h.service.ListProducts(r.Context(), f)
	if err != nil {
		h.writeError(w, "list products", err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, newProductResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) decodeProductForm(w http.ResponseWriter, r *http.Request) (model.Product, bool) {
	var form validation.ProductForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return model.Product{}, false
	}

	p, err := validation.ParseProductForm(form)
	if err != nil {
		h.logger.Debug("product form rejected", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return model.Product{}, false
	}
	return p, true
}

// CreateProduct создаёт товар.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.decodeProductForm(w, r)
	if !ok {
		return
	}

	created, err := h.service.SaveProduct(r.Context(), p)
	if err != nil {
		h.writeError(w, "create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, newProductResponse(*created))
}

// UpdateProduct полностью заменяет товар.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := validation.ParseID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	p, ok := h.decodeProductForm(w, r)
	if !ok {
		return
	}
	p.ID = id

	updated, err := h.service.SaveProduct(r.Context(), p)
	if err != nil {
		h.writeError(w, "update product", err)
		return
	}
	writeJSON(w, http.StatusOK, newProductResponse(*updated))
}

// DeleteProduct удаляет товар; требует параметр confirm=true.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := validation.ParseID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	if err := h.service.DeleteProduct(r.Context(), id, confirmed); err != nil {
		h.writeError(w, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSuppliers возвращает список поставщиков.
func (h *Handler) GetSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service.ListSuppliers(r.Context())
	if err != nil {
		h.writeError(w, "list suppliers", err)
		return
	}
	if suppliers == nil {
		suppliers = []model.Supplier{}
	}
	writeJSON(w, http.StatusOK, suppliers)
}
