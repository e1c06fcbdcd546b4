package service

import (
	"context"

	"github.com/mmeshcher/motosync-terminal/internal/report"
)

// SalesReport загружает все продажи и строит сводку выручки на текущий момент.
func (s *Service) SalesReport(ctx context.Context) (*report.Summary, error) {
	sales, err := s.api.ListSales(ctx, nil)
	if err != nil {
		return nil, err
	}
	summary := report.Build(sales, s.now())
	return &summary, nil
}
