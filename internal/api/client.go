// Package api предоставляет клиент для REST API MotoSync.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// DefaultBaseURL задаёт адрес API по умолчанию.
const DefaultBaseURL = "http://localhost:8000/api/"

// maxErrorBody ограничивает объём тела ответа с ошибкой, сохраняемого в Error.
const maxErrorBody = 64 << 10

var (
	// ErrUnauthorized соответствует ответам 401 и 403.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound соответствует ответу 404.
	ErrNotFound = errors.New("not found")
)

// Error описывает ответ сервера с кодом вне диапазона 2xx.
// Body содержит структурированное описание ошибки валидации, если сервер его вернул.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *Error) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return fmt.Sprintf("%s %s: unexpected status: %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status: %d: %s", e.Method, e.Path, e.StatusCode, body)
}

// Is позволяет сопоставлять Error с ErrUnauthorized и ErrNotFound через errors.Is.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// IsValidation сообщает, что сервер отклонил данные запроса.
func (e *Error) IsValidation() bool {
	return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
}

// TokenSource отдаёт текущий токен доступа; пустая строка означает отсутствие входа.
type TokenSource interface {
	AccessToken() string
}

// Client инкапсулирует HTTP-взаимодействие с API MotoSync.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient создаёт клиент API по указанному адресу. Нулевой timeout означает
// отсутствие ограничения времени запроса.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) (*Client, error) {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = timeout

	return &Client{
		baseURL:    u,
		httpClient: httpClient,
		tokens:     tokens,
	}, nil
}

// BaseURL возвращает нормализованный адрес API.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	ref := &url.URL{Path: path}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	target := c.baseURL.ResolveReference(ref)

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       data,
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
