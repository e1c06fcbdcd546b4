// Package model содержит доменные сущности терминала MotoSync.
package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Category описывает категорию товара.
type Category string

const (
	CategoryAccessory Category = "accessory"
	CategoryPart      Category = "part"
	CategoryOil       Category = "oil"
	CategoryCleaner   Category = "cleaner"
)

// Categories перечисляет допустимые категории в порядке отображения.
var Categories = []Category{CategoryAccessory, CategoryPart, CategoryOil, CategoryCleaner}

// IsValid сообщает, входит ли категория в фиксированный перечень.
func (c Category) IsValid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// LowStockThreshold задаёт остаток, при котором товар считается заканчивающимся.
const LowStockThreshold = 5

// Product описывает товар каталога.
type Product struct {
	ID            int64           `json:"id,omitempty"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	SRP           decimal.Decimal `json:"srp"`
	SupplierPrice decimal.Decimal `json:"supplier_price"`
	Stock         int             `json:"stock"`
	Category      Category        `json:"category"`
	Supplier      int64           `json:"supplier"`
	SupplierName  string          `json:"supplier_name,omitempty"`
}

// IsLowStock сообщает, что остаток товара не превышает порога.
func (p Product) IsLowStock() bool {
	return p.Stock <= LowStockThreshold
}

// Supplier описывает поставщика.
type Supplier struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ContactInfo string `json:"contact_info,omitempty"`
}

// Customer описывает клиента программы лояльности.
type Customer struct {
	ID            int64  `json:"id,omitempty"`
	Name          string `json:"name"`
	RFID          string `json:"rfid"`
	LoyaltyPoints int    `json:"loyalty_points"`
}

// Sale описывает одну проданную позицию.
type Sale struct {
	ID          int64           `json:"id"`
	Date        time.Time       `json:"date"`
	Product     int64           `json:"product"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Customer    *int64          `json:"customer,omitempty"`
}

// DisplayName возвращает название товара продажи, а при его отсутствии идентификатор.
func (s Sale) DisplayName() string {
	if s.ProductName != "" {
		return s.ProductName
	}
	return "#" + strconv.FormatInt(s.Product, 10)
}

// NewSale содержит данные для создания записи о продаже.
type NewSale struct {
	Product    int64           `json:"product"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Customer   *int64          `json:"customer,omitempty"`
}

// Tokens содержит пару токенов, выданных при входе.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Credentials содержит учётные данные пользователя.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
