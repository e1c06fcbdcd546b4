package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mmeshcher/motosync-terminal/internal/model"
)

const (
	tokenPath     = "token/"
	productsPath  = "products/"
	suppliersPath = "suppliers/"
	customersPath = "customers/"
	salesPath     = "sales/"
)

func itemPath(collection string, id int64) string {
	return collection + strconv.FormatInt(id, 10) + "/"
}

// ObtainToken обменивает учётные данные на пару токенов.
func (c *Client) ObtainToken(ctx context.Context, creds model.Credentials) (*model.Tokens, error) {
	var t model.Tokens
	if err := c.do(ctx, http.MethodPost, tokenPath, nil, creds, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListProducts возвращает все товары.
func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	var res []model.Product
	if err := c.do(ctx, http.MethodGet, productsPath, nil, nil, &res); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return res, nil
}

// GetProduct возвращает товар по идентификатору.
func (c *Client) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	if err := c.do(ctx, http.MethodGet, itemPath(productsPath, id), nil, nil, &p); err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

// CreateProduct создаёт товар.
func (c *Client) CreateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	p.ID = 0
	var res model.Product
	if err := c.do(ctx, http.MethodPost, productsPath, nil, p, &res); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &res, nil
}

// UpdateProduct полностью заменяет товар с указанным идентификатором.
func (c *Client) UpdateProduct(ctx context.Context, id int64, p model.Product) (*model.Product, error) {
	p.ID = id
	var res model.Product
	if err := c.do(ctx, http.MethodPut, itemPath(productsPath, id), nil, p, &res); err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	return &res, nil
}

// DeleteProduct удаляет товар.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, itemPath(productsPath, id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}

// ListSuppliers возвращает всех поставщиков.
func (c *Client) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	var res []model.Supplier
	if err := c.do(ctx, http.MethodGet, suppliersPath, nil, nil, &res); err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return res, nil
}

// ListCustomers возвращает клиентов. Непустой name передаётся серверу как фильтр по имени.
func (c *Client) ListCustomers(ctx context.Context, name string) ([]model.Customer, error) {
	var query url.Values
	if name != "" {
		query = url.Values{"name": {name}}
	}

	var res []model.Customer
	if err := c.do(ctx, http.MethodGet, customersPath, query, nil, &res); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return res, nil
}

// GetCustomer возвращает клиента по идентификатору.
func (c *Client) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	var res model.Customer
	if err := c.do(ctx, http.MethodGet, itemPath(customersPath, id), nil, nil, &res); err != nil {
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}
	return &res, nil
}

type newCustomer struct {
	Name string `json:"name"`
	RFID string `json:"rfid"`
}

// CreateCustomer создаёт клиента с указанным именем и RFID.
func (c *Client) CreateCustomer(ctx context.Context, name, rfid string) (*model.Customer, error) {
	var res model.Customer
	if err := c.do(ctx, http.MethodPost, customersPath, nil, newCustomer{Name: name, RFID: rfid}, &res); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &res, nil
}

// DeleteCustomer удаляет клиента.
func (c *Client) DeleteCustomer(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, itemPath(customersPath, id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete customer %d: %w", id, err)
	}
	return nil
}

// ListSales возвращает продажи. Если customerID задан, только продажи этого клиента.
func (c *Client) ListSales(ctx context.Context, customerID *int64) ([]model.Sale, error) {
	var query url.Values
	if customerID != nil {
		query = url.Values{"customer": {strconv.FormatInt(*customerID, 10)}}
	}

	var res []model.Sale
	if err := c.do(ctx, http.MethodGet, salesPath, query, nil, &res); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return res, nil
}

// CreateSale создаёт запись о продаже одной позиции.
func (c *Client) CreateSale(ctx context.Context, s model.NewSale) (*model.Sale, error) {
	var res model.Sale
	if err := c.do(ctx, http.MethodPost, salesPath, nil, s, &res); err != nil {
		return nil, fmt.Errorf("create sale of product %d: %w", s.Product, err)
	}
	return &res, nil
}
