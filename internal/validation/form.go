// Package validation содержит приведение типов для входных данных форм.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/motosync-terminal/internal/model"
)

// ErrInvalidNumber возвращается, если числовое поле формы не удалось разобрать.
var ErrInvalidNumber = errors.New("invalid number")

// Field хранит значение поля формы. Принимает как строку JSON, так и число.
type Field string

// UnmarshalJSON принимает строку, число или null.
func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Field(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("form field must be a string or a number: %w", err)
	}
	*f = Field(n.String())
	return nil
}

// ProductForm содержит поля формы товара в том виде, в каком их прислал пользователь.
type ProductForm struct {
	Name          Field `json:"name"`
	Description   Field `json:"description"`
	SRP           Field `json:"srp"`
	SupplierPrice Field `json:"supplier_price"`
	Stock         Field `json:"stock"`
	Category      Field `json:"category"`
	Supplier      Field `json:"supplier"`
}

// ParseProductForm приводит поля формы к типам товара. Диапазоны и ссылки
// не проверяются: допустимость данных определяет сервер.
func ParseProductForm(f ProductForm) (model.Product, error) {
	srp, err := parseDecimal("srp", f.SRP)
	if err != nil {
		return model.Product{}, err
	}
	supplierPrice, err := parseDecimal("supplier_price", f.SupplierPrice)
	if err != nil {
		return model.Product{}, err
	}
	stock, err := parseInt("stock", f.Stock)
	if err != nil {
		return model.Product{}, err
	}
	supplier, err := parseInt("supplier", f.Supplier)
	if err != nil {
		return model.Product{}, err
	}

	return model.Product{
		Name:          string(f.Name),
		Description:   string(f.Description),
		SRP:           srp,
		SupplierPrice: supplierPrice,
		Stock:         int(stock),
		Category:      model.Category(strings.TrimSpace(string(f.Category))),
		Supplier:      supplier,
	}, nil
}

func parseDecimal(name string, f Field) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(string(f)))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s=%q", ErrInvalidNumber, name, string(f))
	}
	return d, nil
}

func parseInt(name string, f Field) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(string(f)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidNumber, name, string(f))
	}
	return n, nil
}

// ParseID разбирает идентификатор из пути запроса.
func ParseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
