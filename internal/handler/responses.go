package handler

import (
	"time"

	"github.com/mmeshcher/motosync-terminal/internal/model"
	"github.com/mmeshcher/motosync-terminal/internal/report"
	"github.com/mmeshcher/motosync-terminal/internal/service"
)

type productResponse struct {
	model.Product
	LowStock bool `json:"low_stock"`
}

func newProductResponse(p model.Product) productResponse {
	return productResponse{Product: p, LowStock: p.IsLowStock()}
}

type customerResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	RFID          string `json:"rfid"`
	LoyaltyPoints int    `json:"loyalty_points"`
}

func newCustomerResponse(c model.Customer) customerResponse {
	return customerResponse{
		ID:            c.ID,
		Name:          c.Name,
		RFID:          c.RFID,
		LoyaltyPoints: c.LoyaltyPoints,
	}
}

type saleResponse struct {
	ID         int64  `json:"id"`
	Date       string `json:"date"`
	Product    int64  `json:"product"`
	Name       string `json:"product_name"`
	Quantity   int    `json:"quantity"`
	TotalPrice string `json:"total_price"`
	Customer   *int64 `json:"customer,omitempty"`
}

func newSaleResponse(s model.Sale) saleResponse {
	return saleResponse{
		ID:         s.ID,
		Date:       s.Date.Format(time.RFC3339),
		Product:    s.Product,
		Name:       s.DisplayName(),
		Quantity:   s.Quantity,
		TotalPrice: model.FormatMoney(s.TotalPrice),
		Customer:   s.Customer,
	}
}

type customerDetailResponse struct {
	customerResponse
	Sales []saleResponse `json:"sales"`
}

type cartLineResponse struct {
	Product  int64  `json:"product"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

type cartResponse struct {
	State    string             `json:"state"`
	Lines    []cartLineResponse `json:"lines"`
	Total    string             `json:"total"`
	Loyalty  bool               `json:"loyalty"`
	Customer *customerResponse  `json:"customer,omitempty"`
}

func newCartResponse(v service.CartView) cartResponse {
	resp := cartResponse{
		State:   string(v.State),
		Lines:   make([]cartLineResponse, 0, len(v.Lines)),
		Total:   model.FormatMoney(v.Total),
		Loyalty: v.Loyalty,
	}
	for _, l := range v.Lines {
		resp.Lines = append(resp.Lines, cartLineResponse{
			Product:  l.Product.ID,
			Name:     l.Product.Name,
			Price:    model.FormatMoney(l.Product.SRP),
			Quantity: l.Quantity,
			Subtotal: model.FormatMoney(l.Total()),
		})
	}
	if v.Customer != nil {
		c := newCustomerResponse(*v.Customer)
		resp.Customer = &c
	}
	return resp
}

type checkoutResponse struct {
	Sales        []saleResponse    `json:"sales"`
	Total        string            `json:"total"`
	Loyalty      bool              `json:"loyalty"`
	Customer     *customerResponse `json:"customer,omitempty"`
	PointsEarned *int              `json:"points_earned,omitempty"`
}

func newCheckoutResponse(r *service.CheckoutResult) checkoutResponse {
	resp := checkoutResponse{
		Sales:        make([]saleResponse, 0, len(r.Sales)),
		Total:        model.FormatMoney(r.Total),
		Loyalty:      r.Loyalty,
		PointsEarned: r.PointsEarned,
	}
	for _, s := range r.Sales {
		resp.Sales = append(resp.Sales, newSaleResponse(s))
	}
	if r.Customer != nil {
		c := newCustomerResponse(*r.Customer)
		resp.Customer = &c
	}
	return resp
}

type windowResponse struct {
	Days    int    `json:"days"`
	Count   int    `json:"count"`
	Revenue string `json:"revenue"`
}

type dailyResponse struct {
	Date    string `json:"date"`
	Revenue string `json:"revenue"`
}

type reportResponse struct {
	Week  windowResponse  `json:"week"`
	Month windowResponse  `json:"month"`
	Year  windowResponse  `json:"year"`
	Daily []dailyResponse `json:"daily"`
}

func newWindowResponse(w report.Window) windowResponse {
	return windowResponse{Days: w.Days, Count: w.Count, Revenue: model.FormatMoney(w.Revenue)}
}

func newReportResponse(s *report.Summary) reportResponse {
	resp := reportResponse{
		Week:  newWindowResponse(s.Week),
		Month: newWindowResponse(s.Month),
		Year:  newWindowResponse(s.Year),
		Daily: make([]dailyResponse, 0, len(s.Daily)),
	}
	for _, p := range s.Daily {
		resp.Daily = append(resp.Daily, dailyResponse{Date: p.Date, Revenue: model.FormatMoney(p.Revenue)})
	}
	return resp
}

type checkoutLineResponse struct {
	Product    int64  `json:"product"`
	Quantity   int    `json:"quantity"`
	TotalPrice string `json:"total_price"`
	SaleID     *int64 `json:"sale_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

type journalResponse struct {
	ID           int64                  `json:"id"`
	StartedAt    string                 `json:"started_at"`
	FinishedAt   string                 `json:"finished_at"`
	Loyalty      bool                   `json:"loyalty"`
	Customer     *int64                 `json:"customer,omitempty"`
	Status       string                 `json:"status"`
	PointsEarned *int                   `json:"points_earned,omitempty"`
	Error        string                 `json:"error,omitempty"`
	Lines        []checkoutLineResponse `json:"lines"`
}

func newJournalResponse(rec model.CheckoutRecord) journalResponse {
	resp := journalResponse{
		ID:           rec.ID,
		StartedAt:    rec.StartedAt.Format(time.RFC3339),
		FinishedAt:   rec.FinishedAt.Format(time.RFC3339),
		Loyalty:      rec.Loyalty,
		Customer:     rec.Customer,
		Status:       string(rec.Status),
		PointsEarned: rec.PointsEarned,
		Error:        rec.Error,
		Lines:        make([]checkoutLineResponse, 0, len(rec.Lines)),
	}
	for _, l := range rec.Lines {
		resp.Lines = append(resp.Lines, checkoutLineResponse{
			Product:    l.Product,
			Quantity:   l.Quantity,
			TotalPrice: model.FormatMoney(l.TotalPrice),
			SaleID:     l.SaleID,
			Error:      l.Error,
		})
	}
	return resp
}
