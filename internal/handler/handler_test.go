package handler

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmeshcher/motosync-terminal/internal/api"
	"github.com/mmeshcher/motosync-terminal/internal/cart"
	"github.com/mmeshcher/motosync-terminal/internal/middleware"
	"github.com/mmeshcher/motosync-terminal/internal/model"
	"github.com/mmeshcher/motosync-terminal/internal/report"
	"github.com/mmeshcher/motosync-terminal/internal/service"
	"github.com/mmeshcher/motosync-terminal/internal/session"
)

type stubService struct {
	loginErr error
	status   session.Status

	products   []model.Product
	gotFilter  service.ProductFilter
	saved      *model.Product
	saveErr    error
	deleteErr  error
	suppliers  []model.Supplier
	customers  []model.Customer
	detail     *service.CustomerDetail
	detailErr  error
	created    string
	confirmed  bool
	deletedErr error

	view       service.CartView
	cartErr    error
	addedID    int64
	quantity   int
	lookupErr  error
	selectErr  error
	checkout   *service.CheckoutResult
	checkErr   error
	summary    *report.Summary
	journal    []model.CheckoutRecord
	journalErr error
	limit      int
}

func (s *stubService) Login(ctx context.Context, username, password string) error {
	return s.loginErr
}

func (s *stubService) Logout() error { return nil }

func (s *stubService) SessionStatus() session.Status { return s.status }

func (s *stubService) ListProducts(ctx context.Context, f service.ProductFilter) ([]model.Product, error) {
	s.gotFilter = f
	return s.products, nil
}

func (s *stubService) SaveProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	s.saved = &p
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	if p.ID == 0 {
		p.ID = 99
	}
	return &p, nil
}

func (s *stubService) DeleteProduct(ctx context.Context, id int64, confirmed bool) error {
	s.confirmed = confirmed
	if !confirmed {
		return service.ErrNotConfirmed
	}
	return s.deleteErr
}

func (s *stubService) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	return s.suppliers, nil
}

func (s *stubService) ListCustomers(ctx context.Context, query string) ([]model.Customer, error) {
	return s.customers, nil
}

func (s *stubService) CreateCustomer(ctx context.Context, name string) (*model.Customer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, service.ErrBlankName
	}
	s.created = name
	return &model.Customer{ID: 11, Name: name, RFID: "rfid"}, nil
}

func (s *stubService) GetCustomerDetail(ctx context.Context, id int64) (*service.CustomerDetail, error) {
	return s.detail, s.detailErr
}

func (s *stubService) DeleteCustomer(ctx context.Context, id int64, confirmed bool) error {
	s.confirmed = confirmed
	if !confirmed {
		return service.ErrNotConfirmed
	}
	return s.deletedErr
}

func (s *stubService) Cart() service.CartView { return s.view }

func (s *stubService) AddProductToCart(ctx context.Context, productID int64) (service.CartView, error) {
	s.addedID = productID
	return s.view, s.cartErr
}

func (s *stubService) SetQuantity(productID int64, qty int) (service.CartView, error) {
	s.quantity = qty
	return s.view, s.cartErr
}

func (s *stubService) RemoveFromCart(productID int64) (service.CartView, error) {
	return s.view, s.cartErr
}

func (s *stubService) SetLoyalty(enabled bool) (service.CartView, error) {
	s.view.Loyalty = enabled
	return s.view, s.cartErr
}

func (s *stubService) ClearCustomer() (service.CartView, error) {
	s.view.Customer = nil
	return s.view, s.cartErr
}

func (s *stubService) LookupCustomer(ctx context.Context, query string) (*model.Customer, error) {
	return nil, s.lookupErr
}

func (s *stubService) SelectCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	return nil, s.selectErr
}

func (s *stubService) CompleteSale(ctx context.Context) (*service.CheckoutResult, error) {
	return s.checkout, s.checkErr
}

func (s *stubService) SalesReport(ctx context.Context) (*report.Summary, error) {
	return s.summary, nil
}

func (s *stubService) ListCheckouts(ctx context.Context, limit int) ([]model.CheckoutRecord, error) {
	s.limit = limit
	return s.journal, s.journalErr
}

type fakeSession bool

func (f fakeSession) Active() bool { return bool(f) }

func newTestRouter(t *testing.T, svc Service, loggedIn bool) http.Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	h := NewHandler(svc, logger, middleware.NewAuthMiddleware(fakeSession(loggedIn)))
	return h.SetupRouter()
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *http.Response {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	return rec.Result()
}

func decode(t *testing.T, res *http.Response, v any) {
	t.Helper()
	defer res.Body.Close()
	require.NoError(t, json.NewDecoder(res.Body).Decode(v))
}

var oilFilter = model.Product{ID: 1, Name: "Oil Filter", SRP: decimal.RequireFromString("150.00"), Stock: 4, Category: model.CategoryPart}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		loginErr   error
		wantStatus int
	}{
		{name: "success", body: `{"username":"cashier","password":"secret"}`, wantStatus: http.StatusOK},
		{name: "bad credentials", body: `{"username":"cashier","password":"nope"}`, loginErr: service.ErrAuthFailed, wantStatus: http.StatusUnauthorized},
		{name: "malformed body", body: `{`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{loginErr: tt.loginErr, status: session.Status{Active: tt.loginErr == nil}}
			h := newTestRouter(t, svc, false)

			res := doRequest(t, h, http.MethodPost, "/api/session/login", tt.body)
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatus, res.StatusCode)
		})
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	h := newTestRouter(t, &stubService{}, false)

	for _, target := range []string{"/api/products", "/api/cart", "/api/customers", "/api/reports/sales"} {
		res := doRequest(t, h, http.MethodGet, target, "")
		res.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode, target)
	}

	res := doRequest(t, h, http.MethodGet, "/api/session", "")
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestGetProducts_FiltersAndLowStock(t *testing.T) {
	svc := &stubService{products: []model.Product{oilFilter}}
	h := newTestRouter(t, svc, true)

	res := doRequest(t, h, http.MethodGet, "/api/products?category=part&q=filter", "")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var got []map[string]any
	decode(t, res, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "Oil Filter", got[0]["name"])
	assert.Equal(t, true, got[0]["low_stock"])
	assert.Equal(t, model.CategoryPart, svc.gotFilter.Category)
	assert.Equal(t, "filter", svc.gotFilter.Query)

	res = doRequest(t, h, http.MethodGet, "/api/products?category=FOOD", "")
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestCreateProduct_CoercesForm(t *testing.T) {
	svc := &stubService{}
	h := newTestRouter(t, svc, true)

	body := `{"name":"Chain","description":"","srp":"450.50","supplier_price":300,"stock":"12","category":"part","supplier":"2"}`
	res := doRequest(t, h, http.MethodPost, "/api/products", body)
	defer res.Body.Close()

	require.Equal(t, http.StatusCreated, res.StatusCode)
	require.NotNil(t, svc.saved)
	assert.True(t, svc.saved.SRP.Equal(decimal.RequireFromString("450.50")))
	assert.Equal(t, 12, svc.saved.Stock)
	assert.Equal(t, int64(2), svc.saved.Supplier)
}

func TestCreateProduct_InvalidNumber(t *testing.T) {
	svc := &stubService{}
	h := newTestRouter(t, svc, true)

	res := doRequest(t, h, http.MethodPost, "/api/products", `{"name":"Chain","srp":"abc","supplier_price":"1","stock":"1","supplier":"1"}`)
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Nil(t, svc.saved)
}

func TestUpdateProduct_ServerValidationPassthrough(t *testing.T) {
	upstream := &api.Error{
		Method:     http.MethodPut,
		Path:       "products/5/",
		StatusCode: http.StatusBadRequest,
		Body:       []byte(`{"srp":["A valid number is required."]}`),
	}
	svc := &stubService{saveErr: fmt.Errorf("save: %w", upstream)}
	h := newTestRouter(t, svc, true)

	res := doRequest(t, h, http.MethodPut, "/api/products/5", `{"name":"Chain","srp":"1","supplier_price":"1","stock":"1","supplier":"1"}`)
	defer res.Body.Close()

	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Equal(t, int64(5), svc.saved.ID)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"srp":["A valid number is required."]}`, string(body))
}

func TestDeleteProduct_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "deleted", wantStatus: http.StatusNoContent},
		{name: "not found", err: &api.Error{StatusCode: http.StatusNotFound}, wantStatus: http.StatusNotFound},
		{name: "expired token", err: &api.Error{StatusCode: http.StatusUnauthorized}, wantStatus: http.StatusUnauthorized},
		{name: "transport", err: io.ErrUnexpectedEOF, wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, &stubService{deleteErr: tt.err}, true)

			res := doRequest(t, h, http.MethodDelete, "/api/products/3?confirm=true", "")
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatus, res.StatusCode)
		})
	}
}

func TestDeleteProduct_RequiresConfirm(t *testing.T) {
	svc := &stubService{}
	h := newTestRouter(t, svc, true)

	res := doRequest(t, h, http.MethodDelete, "/api/products/3", "")
	res.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.False(t, svc.confirmed)

	res = doRequest(t, h, http.MethodDelete, "/api/products/3?confirm=true", "")
	defer res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.True(t, svc.confirmed)
}

func TestCreateCustomer(t *testing.T) {
	svc := &stubService{}
	h := newTestRouter(t, svc, true)

	res := doRequest(t, h, http.MethodPost, "/api/customers", `{"name":"Pedro Penduko"}`)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var got customerResponse
	decode(t, res, &got)
	assert.Equal(t, int64(11), got.ID)
	assert.Equal(t, "Pedro Penduko", svc.created)

	res = doRequest(t, h, http.MethodPost, "/api/customers", `{"name":"  "}`)
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
}

func TestGetCustomer_WithHistory(t *testing.T) {
	id := int64(7)
	svc := &stubService{detail: &service.CustomerDetail{
		Customer: model.Customer{ID: id, Name: "Juan Dela Cruz", LoyaltyPoints: 12},
		Sales: []model.Sale{
			{ID: 1, Date: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), Product: 1, Quantity: 3, TotalPrice: decimal.RequireFromString("450"), Customer: &id},
		},
	}}
	h := newTestRouter(t, svc, true)

	res := doRequest(t, h, http.MethodGet, "/api/customers/7", "")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var got customerDetailResponse
	decode(t, res, &got)
	assert.Equal(t, "Juan Dela Cruz", got.Name)
	assert.Equal(t, 12, got.LoyaltyPoints)
	require.Len(t, got.Sales, 1)
	assert.Equal(t, "₱450.00", got.Sales[0].TotalPrice)
	assert.Equal(t, "#1", got.Sales[0].Name)
}

func TestDeleteCustomer_RequiresConfirm(t *testing.T) {
	svc := &stubService{}
	h := newTestRouter(t, svc, true)

	res := doRequest(t, h, http.MethodDelete, "/api/customers/7", "")
	res.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	res = doRequest(t, h, http.MethodDelete, "/api/customers/7?confirm=true", "")
	defer res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.True(t, svc.confirmed)
}

func TestGetCart_FormatsMoney(t *testing.T) {
	c := cart.New()
	c.Add(oilFilter)
	c.SetQuantity(oilFilter.ID, 3)

	svc := &stubService{view: service.CartView{
		Lines: c.Lines(),
		Total: c.Total(),
		State: service.StateItemsSelected,
	}}
	h := newTestRouter(t, svc, true)

	res := doRequest(t, h, http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var got cartResponse
	decode(t, res, &got)
	assert.Equal(t, "ITEMS_SELECTED", got.State)
	assert.Equal(t, "₱450.00", got.Total)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "₱150.00", got.Lines[0].Price)
	assert.Equal(t, "₱450.00", got.Lines[0].Subtotal)
	assert.Nil(t, got.Customer)
}

func TestCartItems(t *testing.T) {
	svc := &stubService{}
	h := newTestRouter(t, svc, true)

	res := doRequest(t, h, http.MethodPost, "/api/cart/items", `{"product":3}`)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, int64(3), svc.addedID)

	res = doRequest(t, h, http.MethodPut, "/api/cart/items/3", `{"quantity":5}`)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 5, svc.quantity)

	res = doRequest(t, h, http.MethodPost, "/api/cart/items", `{"product":0}`)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	svc.cartErr = service.ErrCheckoutInProgress
	res = doRequest(t, h, http.MethodDelete, "/api/cart/items/3", "")
	defer res.Body.Close()
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestLookupCustomer_StatusMapping(t *testing.T) {
	ambiguous := &service.AmbiguousCustomerError{
		Query: "maria",
		Candidates: []model.Customer{
			{ID: 8, Name: "Maria Santos"},
			{ID: 9, Name: "Maria Santos-Reyes"},
		},
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "found", wantStatus: http.StatusOK},
		{name: "empty query", err: service.ErrEmptyQuery, wantStatus: http.StatusUnprocessableEntity},
		{name: "no match", err: service.ErrCustomerNotFound, wantStatus: http.StatusNotFound},
		{name: "ambiguous", err: ambiguous, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, &stubService{lookupErr: tt.err}, true)

			res := doRequest(t, h, http.MethodPost, "/api/cart/customer/lookup", `{"query":"maria"}`)
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatus, res.StatusCode)

			if tt.err == ambiguous {
				var got ambiguousResponse
				require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
				require.Len(t, got.Candidates, 2)
				assert.Equal(t, int64(8), got.Candidates[0].ID)
			}
		})
	}
}

func TestCheckout(t *testing.T) {
	earned := 4
	svc := &stubService{checkout: &service.CheckoutResult{
		Sales: []model.Sale{
			{ID: 31, Product: 1, ProductName: "Oil Filter", Quantity: 3, TotalPrice: decimal.RequireFromString("450")},
		},
		Total:        decimal.RequireFromString("450"),
		Loyalty:      true,
		Customer:     &model.Customer{ID: 7, Name: "Juan Dela Cruz", LoyaltyPoints: 14},
		PointsEarned: &earned,
	}}
	h := newTestRouter(t, svc, true)

	res := doRequest(t, h, http.MethodPost, "/api/cart/checkout", "")
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var got checkoutResponse
	decode(t, res, &got)
	assert.Equal(t, "₱450.00", got.Total)
	require.NotNil(t, got.PointsEarned)
	assert.Equal(t, 4, *got.PointsEarned)
	require.NotNil(t, got.Customer)
	assert.Equal(t, 14, got.Customer.LoyaltyPoints)
}

func TestCheckout_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "empty cart", err: service.ErrEmptyCart, wantStatus: http.StatusUnprocessableEntity},
		{name: "no customer", err: service.ErrNoCustomer, wantStatus: http.StatusUnprocessableEntity},
		{name: "in progress", err: service.ErrCheckoutInProgress, wantStatus: http.StatusConflict},
		{name: "line rejected", err: fmt.Errorf("%w: %w", service.ErrCheckoutFailed, &api.Error{StatusCode: http.StatusBadRequest, Body: []byte(`{"quantity":["too many"]}`)}), wantStatus: http.StatusUnprocessableEntity},
		{name: "server down", err: fmt.Errorf("%w: %w", service.ErrCheckoutFailed, io.ErrUnexpectedEOF), wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, &stubService{checkErr: tt.err}, true)

			res := doRequest(t, h, http.MethodPost, "/api/cart/checkout", "")
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatus, res.StatusCode)
		})
	}
}

func TestGetSalesReport(t *testing.T) {
	svc := &stubService{summary: &report.Summary{
		Week:  report.Window{Days: 7, Count: 3, Revenue: decimal.RequireFromString("360.5")},
		Month: report.Window{Days: 30, Count: 5, Revenue: decimal.RequireFromString("405.75")},
		Year:  report.Window{Days: 365, Count: 8, Revenue: decimal.RequireFromString("1706.75")},
		Daily: []report.DailyPoint{{Date: "2026-03-15", Revenue: decimal.RequireFromString("100")}},
	}}
	h := newTestRouter(t, svc, true)

	res := doRequest(t, h, http.MethodGet, "/api/reports/sales", "")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var got reportResponse
	decode(t, res, &got)
	assert.Equal(t, "₱360.50", got.Week.Revenue)
	assert.Equal(t, 5, got.Month.Count)
	assert.Equal(t, "₱1706.75", got.Year.Revenue)
	require.Len(t, got.Daily, 1)
	assert.Equal(t, "₱100.00", got.Daily[0].Revenue)
}

func TestGetJournal(t *testing.T) {
	h := newTestRouter(t, &stubService{journalErr: service.ErrJournalDisabled}, true)
	res := doRequest(t, h, http.MethodGet, "/api/journal", "")
	res.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, res.StatusCode)

	saleID := int64(40)
	svc := &stubService{journal: []model.CheckoutRecord{{
		ID:     1,
		Status: model.CheckoutStatusFailed,
		Error:  "sale failed",
		Lines: []model.CheckoutLine{
			{Product: 1, Quantity: 1, TotalPrice: decimal.NewFromInt(150), SaleID: &saleID},
			{Product: 2, Quantity: 1, TotalPrice: decimal.NewFromInt(320), Error: "out of stock"},
		},
	}}}
	h = newTestRouter(t, svc, true)

	res = doRequest(t, h, http.MethodGet, "/api/journal?limit=5", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 5, svc.limit)

	var got []journalResponse
	decode(t, res, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "FAILED", got[0].Status)
	require.Len(t, got[0].Lines, 2)
	assert.Equal(t, "out of stock", got[0].Lines[1].Error)

	res = doRequest(t, h, http.MethodGet, "/api/journal?limit=abc", "")
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestGzipResponse(t *testing.T) {
	h := newTestRouter(t, &stubService{}, true)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", bytes.NewReader(nil))
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestGzipRequest_AddsCartItem(t *testing.T) {
	svc := &stubService{view: service.CartView{State: service.StateItemsSelected}}
	h := newTestRouter(t, svc, true)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(`{"product":3}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), svc.addedID)

	req = httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"product":3}`))
	req.Header.Set("Content-Encoding", "gzip")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
