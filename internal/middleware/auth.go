// Package middleware содержит HTTP middleware терминала MotoSync.
package middleware

import (
	"net/http"
)

// SessionChecker сообщает, есть ли у терминала активная сессия удалённого API.
type SessionChecker interface {
	Active() bool
}

// AuthMiddleware пропускает запросы только при наличии токена доступа.
type AuthMiddleware struct {
	session SessionChecker
}

// NewAuthMiddleware создаёт новый экземпляр AuthMiddleware поверх сессии терминала.
func NewAuthMiddleware(s SessionChecker) *AuthMiddleware {
	return &AuthMiddleware{
		session: s,
	}
}

// Middleware возвращает 401, если вход в удалённый API не выполнен.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.session == nil || !a.session.Active() {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
