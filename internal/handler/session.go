package handler

import (
	"encoding/json"
	"net/http"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login выполняет вход в удалённый API и сохраняет токены в сессии терминала.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.Login(r.Context(), req.Username, req.Password); err != nil {
		h.writeError(w, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, h.service.SessionStatus())
}

// Logout удаляет токены и сбрасывает корзину.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(); err != nil {
		h.writeError(w, "logout", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetSession возвращает состояние сессии.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.SessionStatus())
}
