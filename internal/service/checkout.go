package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/motosync-terminal/internal/cart"
	"github.com/mmeshcher/motosync-terminal/internal/model"
)

// CheckoutState описывает этап оформления продажи.
type CheckoutState string

const (
	StateIdle             CheckoutState = "IDLE"
	StateItemsSelected    CheckoutState = "ITEMS_SELECTED"
	StateCustomerAttached CheckoutState = "CUSTOMER_ATTACHED"
	StateSubmitting       CheckoutState = "SUBMITTING"
)

// CartView содержит снимок корзины и привязанного клиента.
type CartView struct {
	Lines    []cart.Line
	Total    decimal.Decimal
	Loyalty  bool
	Customer *model.Customer
	State    CheckoutState
}

// CheckoutResult описывает успешно оформленную продажу.
type CheckoutResult struct {
	Sales        []model.Sale
	Total        decimal.Decimal
	Loyalty      bool
	Customer     *model.Customer
	PointsEarned *int
}

// Cart возвращает текущее состояние корзины.
func (s *Service) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Service) viewLocked() CartView {
	v := CartView{
		Lines:   s.cart.Lines(),
		Total:   s.cart.Total(),
		Loyalty: s.loyalty,
		State:   s.stateLocked(),
	}
	if s.customer != nil {
		c := *s.customer
		v.Customer = &c
	}
	return v
}

func (s *Service) stateLocked() CheckoutState {
	switch {
	case s.submitting:
		return StateSubmitting
	case s.cart.Len() == 0:
		return StateIdle
	case s.loyalty && s.customer != nil:
		return StateCustomerAttached
	default:
		return StateItemsSelected
	}
}

func (s *Service) resetCheckoutLocked() {
	s.cart.Clear()
	s.customer = nil
	s.loyalty = false
}

// mutate выполняет изменение корзины под блокировкой, если продажа не отправляется.
func (s *Service) mutate(fn func()) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return s.viewLocked(), ErrCheckoutInProgress
	}
	fn()
	return s.viewLocked(), nil
}

// AddToCart добавляет товар в корзину с количеством 1; повторное добавление ничего не меняет.
func (s *Service) AddToCart(p model.Product) (CartView, error) {
	return s.mutate(func() { s.cart.Add(p) })
}

// AddProductToCart загружает товар по идентификатору и добавляет его в корзину.
func (s *Service) AddProductToCart(ctx context.Context, productID int64) (CartView, error) {
	p, err := s.api.GetProduct(ctx, productID)
	if err != nil {
		return s.Cart(), err
	}
	return s.AddToCart(*p)
}

// SetQuantity меняет количество товара в корзине, не опуская его ниже 1.
// Если товара нет в корзине, ничего не происходит.
func (s *Service) SetQuantity(productID int64, qty int) (CartView, error) {
	return s.mutate(func() { s.cart.SetQuantity(productID, qty) })
}

// RemoveFromCart удаляет товар из корзины. Если товара нет, ничего не происходит.
func (s *Service) RemoveFromCart(productID int64) (CartView, error) {
	return s.mutate(func() { s.cart.Remove(productID) })
}

// SetLoyalty включает или выключает начисление баллов при оформлении.
func (s *Service) SetLoyalty(enabled bool) (CartView, error) {
	return s.mutate(func() { s.loyalty = enabled })
}

// ClearCustomer отвязывает клиента от продажи.
func (s *Service) ClearCustomer() (CartView, error) {
	return s.mutate(func() { s.customer = nil })
}

// LookupCustomer ищет клиента по имени и привязывает его к продаже.
// Точное совпадение имени (без учёта регистра) имеет приоритет; если подходящих
// клиентов несколько и точного совпадения нет, возвращается *AmbiguousCustomerError
// со списком кандидатов. При неудаче привязанный клиент не меняется.
func (s *Service) LookupCustomer(ctx context.Context, query string) (*model.Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	found, err := s.api.ListCustomers(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("customer lookup: %w", err)
	}

	// Сервер может проигнорировать фильтр и вернуть всех клиентов.
	matches := SearchCustomers(found, query)

	var exact []model.Customer
	for _, c := range matches {
		if strings.EqualFold(strings.TrimSpace(c.Name), query) {
			exact = append(exact, c)
		}
	}

	var chosen model.Customer
	switch {
	case len(matches) == 0:
		return nil, ErrCustomerNotFound
	case len(matches) == 1:
		chosen = matches[0]
	case len(exact) == 1:
		chosen = exact[0]
	default:
		candidates := matches
		if len(exact) > 1 {
			candidates = exact
		}
		SortCustomers(candidates)
		return nil, &AmbiguousCustomerError{Query: query, Candidates: candidates}
	}

	return s.SelectCustomer(ctx, chosen.ID)
}

// SelectCustomer загружает клиента по идентификатору и привязывает его к продаже.
func (s *Service) SelectCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	c, err := s.api.GetCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("customer lookup: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return nil, ErrCheckoutInProgress
	}
	attached := *c
	s.customer = &attached

	return c, nil
}

// CompleteSale оформляет продажу: по одной записи на каждую позицию корзины.
//
// Все позиции отправляются одновременно; при ошибке любой из них возвращается одна
// общая ошибка, корзина остаётся нетронутой, а уже созданные продажи не откатываются.
// После проверки предусловий отправка не прерывается отменой ctx; время ограничивает
// только таймаут HTTP-клиента.
// При включённой лояльности баланс клиента читается до и после отправки, и разница
// сообщается как начисленные баллы. Само правило начисления известно только серверу.
func (s *Service) CompleteSale(ctx context.Context) (*CheckoutResult, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}
	if s.loyalty && s.customer == nil {
		s.mu.Unlock()
		return nil, ErrNoCustomer
	}
	if s.cart.Len() == 0 {
		s.mu.Unlock()
		return nil, ErrEmptyCart
	}

	lines := s.cart.Lines()
	loyalty := s.loyalty
	var customerID *int64
	if loyalty {
		id := s.customer.ID
		customerID = &id
	}
	s.submitting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	// Начатая отправка доводится до конца даже при отмене запроса вызывающей стороны.
	ctx = context.WithoutCancel(ctx)

	rec := model.CheckoutRecord{
		StartedAt: s.now(),
		Loyalty:   loyalty,
		Customer:  customerID,
		Lines:     make([]model.CheckoutLine, len(lines)),
	}

	var before int
	if loyalty {
		c, err := s.api.GetCustomer(ctx, *customerID)
		if err != nil {
			err = fmt.Errorf("%w: read loyalty balance: %w", ErrCheckoutFailed, err)
			s.finishFailed(ctx, &rec, err)
			return nil, err
		}
		before = c.LoyaltyPoints
	}

	sales := make([]model.Sale, len(lines))

	// Без общего контекста: отказ одной позиции не отменяет остальные.
	var g errgroup.Group
	for i, l := range lines {
		i, l := i, l
		total := l.Total()
		rec.Lines[i] = model.CheckoutLine{
			Product:    l.Product.ID,
			Quantity:   l.Quantity,
			TotalPrice: total,
		}

		g.Go(func() error {
			sale, err := s.api.CreateSale(ctx, model.NewSale{
				Product:    l.Product.ID,
				Quantity:   l.Quantity,
				TotalPrice: total,
				Customer:   customerID,
			})
			if err != nil {
				rec.Lines[i].Error = err.Error()
				return err
			}
			if sale.ProductName == "" {
				sale.ProductName = l.Product.Name
			}
			sales[i] = *sale
			id := sale.ID
			rec.Lines[i].SaleID = &id
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		err = fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
		s.finishFailed(ctx, &rec, err)
		return nil, err
	}

	res := &CheckoutResult{
		Sales:   sales,
		Total:   decimal.Zero,
		Loyalty: loyalty,
	}
	for _, sale := range sales {
		res.Total = res.Total.Add(sale.TotalPrice)
	}

	var fresh *model.Customer
	if loyalty {
		c, err := s.api.GetCustomer(ctx, *customerID)
		if err != nil {
			// Продажи уже созданы: корзину всё равно очищаем, баллы неизвестны.
			s.logger.Warn("read loyalty balance after sale error", zap.Error(err), zap.Int64("customerID", *customerID))
		} else {
			earned := c.LoyaltyPoints - before
			if earned < 0 {
				s.logger.Warn("loyalty balance decreased during sale",
					zap.Int64("customerID", c.ID), zap.Int("before", before), zap.Int("after", c.LoyaltyPoints))
			}
			res.PointsEarned = &earned
			res.Customer = c
			fresh = c
		}
	}

	s.mu.Lock()
	s.cart.Clear()
	if fresh != nil && s.customer != nil && s.customer.ID == fresh.ID {
		c := *fresh
		s.customer = &c
	}
	s.mu.Unlock()

	rec.Status = model.CheckoutStatusCompleted
	rec.FinishedAt = s.now()
	rec.PointsEarned = res.PointsEarned
	s.recordCheckout(ctx, rec)

	return res, nil
}

func (s *Service) finishFailed(ctx context.Context, rec *model.CheckoutRecord, err error) {
	fields := []zap.Field{zap.Error(err), zap.Int("lines", len(rec.Lines))}
	if isCanceled(err) {
		s.logger.Info("checkout interrupted", fields...)
	} else {
		s.logger.Error("checkout error", fields...)
	}

	rec.Status = model.CheckoutStatusFailed
	rec.FinishedAt = s.now()
	rec.Error = err.Error()
	s.recordCheckout(ctx, *rec)
}
