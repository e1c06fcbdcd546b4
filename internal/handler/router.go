package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/motosync-terminal/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware терминала.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/session/login", h.Login)
		r.Get("/session", h.GetSession)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Post("/session/logout", h.Logout)

			r.Get("/products", h.GetProducts)
			r.Post("/products", h.CreateProduct)
			r.Put("/products/{id}", h.UpdateProduct)
			r.Delete("/products/{id}", h.DeleteProduct)

			r.Get("/suppliers", h.GetSuppliers)

			r.Get("/customers", h.GetCustomers)
			r.Post("/customers", h.CreateCustomer)
			r.Get("/customers/{id}", h.GetCustomer)
			r.Delete("/customers/{id}", h.DeleteCustomer)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Post("/items", h.AddCartItem)
				r.Put("/items/{productID}", h.UpdateCartItem)
				r.Delete("/items/{productID}", h.DeleteCartItem)
				r.Put("/loyalty", h.SetLoyalty)
				r.Post("/customer/lookup", h.LookupCustomer)
				r.Put("/customer/{id}", h.SelectCustomer)
				r.Delete("/customer", h.ClearCustomer)
				r.Post("/checkout", h.Checkout)
			})

			r.Get("/reports/sales", h.GetSalesReport)
			r.Get("/journal", h.GetJournal)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
