// Package handler содержит HTTP-обработчики локального API терминала MotoSync.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/motosync-terminal/internal/api"
	"github.com/mmeshcher/motosync-terminal/internal/middleware"
	"github.com/mmeshcher/motosync-terminal/internal/model"
	"github.com/mmeshcher/motosync-terminal/internal/report"
	"github.com/mmeshcher/motosync-terminal/internal/service"
	"github.com/mmeshcher/motosync-terminal/internal/session"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Login(ctx context.Context, username, password string) error
	Logout() error
	SessionStatus() session.Status

	ListProducts(ctx context.Context, f service.ProductFilter) ([]model.Product, error)
	SaveProduct(ctx context.Context, p model.Product) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64, confirmed bool) error
	ListSuppliers(ctx context.Context) ([]model.Supplier, error)

	ListCustomers(ctx context.Context, query string) ([]model.Customer, error)
	CreateCustomer(ctx context.Context, name string) (*model.Customer, error)
	GetCustomerDetail(ctx context.Context, id int64) (*service.CustomerDetail, error)
	DeleteCustomer(ctx context.Context, id int64, confirmed bool) error

	Cart() service.CartView
	AddProductToCart(ctx context.Context, productID int64) (service.CartView, error)
	SetQuantity(productID int64, qty int) (service.CartView, error)
	RemoveFromCart(productID int64) (service.CartView, error)
	SetLoyalty(enabled bool) (service.CartView, error)
	ClearCustomer() (service.CartView, error)
	LookupCustomer(ctx context.Context, query string) (*model.Customer, error)
	SelectCustomer(ctx context.Context, id int64) (*model.Customer, error)
	CompleteSale(ctx context.Context) (*service.CheckoutResult, error)

	SalesReport(ctx context.Context) (*report.Summary, error)
	ListCheckouts(ctx context.Context, limit int) ([]model.CheckoutRecord, error)
}

// Handler реализует HTTP-обработчики локального API терминала.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type ambiguousResponse struct {
	Error      string             `json:"error"`
	Candidates []customerResponse `json:"candidates"`
}

// writeError переводит ошибку сервиса или удалённого API в HTTP-ответ.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var (
		apiErr    *api.Error
		ambiguous *service.AmbiguousCustomerError
	)

	switch {
	case errors.As(err, &ambiguous):
		resp := ambiguousResponse{Error: ambiguous.Error()}
		for _, c := range ambiguous.Candidates {
			resp.Candidates = append(resp.Candidates, newCustomerResponse(c))
		}
		writeJSON(w, http.StatusConflict, resp)

	case errors.Is(err, service.ErrCheckoutInProgress):
		http.Error(w, err.Error(), http.StatusConflict)

	case errors.Is(err, service.ErrAuthFailed), errors.Is(err, api.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusUnauthorized)

	case errors.Is(err, service.ErrCustomerNotFound), errors.Is(err, api.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)

	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrNoCustomer),
		errors.Is(err, service.ErrEmptyQuery),
		errors.Is(err, service.ErrBlankName),
		errors.Is(err, service.ErrNotConfirmed):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)

	case errors.Is(err, service.ErrJournalDisabled):
		http.Error(w, err.Error(), http.StatusNotImplemented)

	case errors.As(err, &apiErr) && apiErr.IsValidation():
		h.logger.Warn(op+" rejected by server", zap.Int("status", apiErr.StatusCode), zap.ByteString("body", apiErr.Body))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write(apiErr.Body)
		return

	case errors.Is(err, context.Canceled):
		h.logger.Info(op+" canceled", zap.Error(err))
		return

	default:
		h.logger.Error(op+" error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	h.logger.Debug(op+" failed", zap.Error(err))
}
