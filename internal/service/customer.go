package service

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/motosync-terminal/internal/model"
)

// CustomerDetail содержит карточку клиента и историю его покупок.
type CustomerDetail struct {
	Customer model.Customer
	Sales    []model.Sale
}

// SortCustomers сортирует клиентов по имени без учёта регистра.
func SortCustomers(customers []model.Customer) {
	sort.SliceStable(customers, func(i, j int) bool {
		return strings.ToLower(customers[i].Name) < strings.ToLower(customers[j].Name)
	})
}

// SearchCustomers отбирает клиентов, имя которых содержит query без учёта регистра.
func SearchCustomers(customers []model.Customer, query string) []model.Customer {
	q := strings.ToLower(strings.TrimSpace(query))

	res := make([]model.Customer, 0, len(customers))
	for _, c := range customers {
		if q == "" || strings.Contains(strings.ToLower(c.Name), q) {
			res = append(res, c)
		}
	}
	return res
}

// ListCustomers возвращает клиентов, отсортированных по имени и отфильтрованных по подстроке.
func (s *Service) ListCustomers(ctx context.Context, query string) ([]model.Customer, error) {
	customers, err := s.api.ListCustomers(ctx, "")
	if err != nil {
		return nil, err
	}

	res := SearchCustomers(customers, query)
	SortCustomers(res)
	return res, nil
}

// CreateCustomer создаёт клиента со сгенерированным RFID.
func (s *Service) CreateCustomer(ctx context.Context, name string) (*model.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrBlankName
	}
	return s.api.CreateCustomer(ctx, name, s.newRFID())
}

// DeleteCustomer удаляет клиента после явного подтверждения.
func (s *Service) DeleteCustomer(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := s.api.DeleteCustomer(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if s.customer != nil && s.customer.ID == id && !s.submitting {
		s.customer = nil
	}
	s.mu.Unlock()

	return nil
}

// GetCustomerDetail загружает клиента и историю его покупок.
func (s *Service) GetCustomerDetail(ctx context.Context, id int64) (*CustomerDetail, error) {
	var (
		customer *model.Customer
		sales    []model.Sale
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customer, err = s.api.GetCustomer(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = s.api.ListSales(gctx, &id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &CustomerDetail{Customer: *customer, Sales: sales}, nil
}
