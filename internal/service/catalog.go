package service

import (
	"context"
	"strings"

	"github.com/mmeshcher/motosync-terminal/internal/model"
)

// ProductFilter описывает фильтр списка товаров. Пустые поля не ограничивают выборку.
type ProductFilter struct {
	Category model.Category
	Query    string
}

// FilterProducts отбирает товары по категории и подстроке названия без учёта регистра.
func FilterProducts(products []model.Product, f ProductFilter) []model.Product {
	q := strings.ToLower(strings.TrimSpace(f.Query))

	res := make([]model.Product, 0, len(products))
	for _, p := range products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		res = append(res, p)
	}
	return res
}

// ListProducts загружает товары и применяет фильтр.
func (s *Service) ListProducts(ctx context.Context, f ProductFilter) ([]model.Product, error) {
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return FilterProducts(products, f), nil
}

// ListSuppliers возвращает всех поставщиков.
func (s *Service) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	return s.api.ListSuppliers(ctx)
}

// SaveProduct создаёт товар, если у него нет идентификатора, иначе полностью заменяет существующий.
func (s *Service) SaveProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	if p.ID == 0 {
		return s.api.CreateProduct(ctx, p)
	}
	return s.api.UpdateProduct(ctx, p.ID, p)
}

// DeleteProduct удаляет товар после явного подтверждения.
func (s *Service) DeleteProduct(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	return s.api.DeleteProduct(ctx, id)
}
