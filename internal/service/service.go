// Package service реализует бизнес-логику терминала MotoSync.
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/motosync-terminal/internal/cart"
	"github.com/mmeshcher/motosync-terminal/internal/model"
	"github.com/mmeshcher/motosync-terminal/internal/session"
)

// API описывает контракт удалённого REST API, используемый сервисом.
type API interface {
	ObtainToken(ctx context.Context, creds model.Credentials) (*model.Tokens, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, p model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, id int64, p model.Product) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListSuppliers(ctx context.Context) ([]model.Supplier, error)
	ListCustomers(ctx context.Context, name string) ([]model.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*model.Customer, error)
	CreateCustomer(ctx context.Context, name, rfid string) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	ListSales(ctx context.Context, customerID *int64) ([]model.Sale, error)
	CreateSale(ctx context.Context, s model.NewSale) (*model.Sale, error)
}

// Journal описывает хранилище журнала оформлений продаж.
type Journal interface {
	Close() error
	RecordCheckout(ctx context.Context, rec model.CheckoutRecord) (int64, error)
	ListCheckouts(ctx context.Context, limit int) ([]model.CheckoutRecord, error)
}

// Service содержит бизнес-логику терминала.
type Service struct {
	api     API
	session *session.Session
	journal Journal
	logger  *zap.Logger

	now     func() time.Time
	newRFID func() string

	mu         sync.Mutex
	cart       *cart.Cart
	loyalty    bool
	customer   *model.Customer
	submitting bool
}

// Option настраивает Service.
type Option func(*Service)

// WithJournal подключает журнал оформлений продаж.
func WithJournal(j Journal) Option {
	return func(s *Service) {
		s.journal = j
	}
}

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService создаёт новый сервис поверх клиента API и сессии.
func NewService(api API, sess *session.Session, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		api:     api,
		session: sess,
		logger:  logger,
		now:     time.Now,
		newRFID: uuid.NewString,
		cart:    cart.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.journal != nil {
		return s.journal.Close()
	}
	return nil
}

// Login обменивает учётные данные на токены и сохраняет их в сессии.
// Любая неудача сообщается как ErrAuthFailed.
func (s *Service) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return ErrAuthFailed
	}

	tokens, err := s.api.ObtainToken(ctx, model.Credentials{Username: username, Password: password})
	if err != nil {
		s.logger.Warn("login failed", zap.String("username", username), zap.Error(err))
		return ErrAuthFailed
	}
	if tokens.Access == "" {
		s.logger.Warn("login failed: empty access token", zap.String("username", username))
		return ErrAuthFailed
	}

	if err := s.session.Set(*tokens); err != nil {
		return err
	}
	return nil
}

// Logout удаляет токены локально и сбрасывает корзину.
func (s *Service) Logout() error {
	s.mu.Lock()
	if !s.submitting {
		s.resetCheckoutLocked()
	}
	s.mu.Unlock()

	return s.session.Clear()
}

// SessionStatus возвращает состояние сессии.
func (s *Service) SessionStatus() session.Status {
	return s.session.Status()
}

// ListCheckouts возвращает последние записи журнала оформлений.
func (s *Service) ListCheckouts(ctx context.Context, limit int) ([]model.CheckoutRecord, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	return s.journal.ListCheckouts(ctx, limit)
}

func (s *Service) recordCheckout(ctx context.Context, rec model.CheckoutRecord) {
	if s.journal == nil {
		return
	}
	id, err := s.journal.RecordCheckout(context.WithoutCancel(ctx), rec)
	if err != nil {
		s.logger.Error("record checkout error", zap.Error(err), zap.String("status", string(rec.Status)))
		return
	}
	s.logger.Debug("checkout recorded", zap.Int64("checkoutID", id))
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
