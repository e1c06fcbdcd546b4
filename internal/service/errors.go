package service

import (
	"errors"
	"strings"

	"github.com/mmeshcher/motosync-terminal/internal/model"
)

// Ошибки локальных предусловий: запросы к API при них не выполняются.
var (
	// ErrAuthFailed возвращается при любой неудаче входа.
	ErrAuthFailed = errors.New("authentication failed")
	// ErrEmptyCart возвращается при оформлении пустой корзины.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNoCustomer возвращается при оформлении с лояльностью без выбранного клиента.
	ErrNoCustomer = errors.New("select a customer first")
	// ErrEmptyQuery возвращается при поиске клиента по пустой строке.
	ErrEmptyQuery = errors.New("search query is empty")
	// ErrBlankName возвращается при создании клиента без имени.
	ErrBlankName = errors.New("enter a name")
	// ErrNotConfirmed возвращается при удалении без подтверждения.
	ErrNotConfirmed = errors.New("deletion must be confirmed")
	// ErrCheckoutInProgress возвращается при изменении корзины во время отправки продажи.
	ErrCheckoutInProgress = errors.New("checkout in progress")
	// ErrJournalDisabled возвращается, если журнал оформлений не настроен.
	ErrJournalDisabled = errors.New("checkout journal is not configured")
)

var (
	// ErrCustomerNotFound возвращается, если поиск клиента не дал результатов.
	ErrCustomerNotFound = errors.New("no customer found")
	// ErrAmbiguousCustomer возвращается, если под запрос подходят несколько клиентов.
	ErrAmbiguousCustomer = errors.New("several customers match")
	// ErrCheckoutFailed оборачивает ошибку отправки позиций корзины.
	ErrCheckoutFailed = errors.New("sale failed")
)

// AmbiguousCustomerError перечисляет клиентов, подходящих под запрос.
// Выбор делается явно через SelectCustomer.
type AmbiguousCustomerError struct {
	Query      string
	Candidates []model.Customer
}

func (e *AmbiguousCustomerError) Error() string {
	names := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		names = append(names, c.Name)
	}
	return ErrAmbiguousCustomer.Error() + " " + `"` + e.Query + `": ` + strings.Join(names, ", ")
}

func (e *AmbiguousCustomerError) Unwrap() error {
	return ErrAmbiguousCustomer
}
