// Package session хранит токены авторизации терминала.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/mmeshcher/motosync-terminal/internal/model"
)

// Session хранит пару токенов между входом и выходом пользователя.
// Если задан путь к файлу, токены переживают перезапуск терминала.
type Session struct {
	mu     sync.RWMutex
	tokens model.Tokens
	path   string
}

// New создаёт пустую сессию. Пустой path означает хранение только в памяти.
func New(path string) *Session {
	return &Session{path: path}
}

// Load восстанавливает токены из файла сессии, если он существует.
func (s *Session) Load() error {
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read session file: %w", err)
	}

	var t model.Tokens
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("decode session file: %w", err)
	}

	s.mu.Lock()
	s.tokens = t
	s.mu.Unlock()

	return nil
}

// Set сохраняет токены, выданные при входе.
func (s *Session) Set(t model.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = t

	if s.path == "" {
		return nil
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	return nil
}

// Clear удаляет оба токена. На сервере токены не отзываются.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = model.Tokens{}

	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}

	return nil
}

// AccessToken возвращает текущий токен доступа или пустую строку.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.Access
}

// RefreshToken возвращает текущий токен обновления или пустую строку.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.Refresh
}

// Active сообщает, выполнен ли вход.
func (s *Session) Active() bool {
	return s.AccessToken() != ""
}

// Status описывает состояние сессии для отображения.
type Status struct {
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Status возвращает состояние сессии. Срок действия читается из claims токена
// доступа без проверки подписи: её проверяет только сервер.
func (s *Session) Status() Status {
	access := s.AccessToken()
	if access == "" {
		return Status{}
	}

	st := Status{Active: true}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return st
	}
	if exp, ok := claims["exp"].(float64); ok {
		t := time.Unix(int64(exp), 0).UTC()
		st.ExpiresAt = &t
	}

	return st
}
