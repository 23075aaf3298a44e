// Package backend предоставляет клиент REST API кухонного бэкенда.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmeshcher/kitchen-display/internal/model"
)

// ErrUnauthenticated возвращается, когда бэкенд сообщил о недействительной сессии.
var (
	ErrUnauthenticated = errors.New("session is not authenticated")
	// ErrNoToken возвращается, когда вызов требует токен, а его нет: запрос в сеть не уходит.
	ErrNoToken = errors.New("no session token")
)

// TokenSource выдаёт текущий токен сессии; пустая строка означает его отсутствие.
type TokenSource func() string

// Client инкапсулирует HTTP-взаимодействие с кухонным бэкендом.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
}

// LoginResponse описывает ответ бэкенда на успешный вход.
type LoginResponse struct {
	Token   string `json:"token"`
	Kitchen struct {
		Name   string `json:"name"`
		Branch struct {
			Name string `json:"name"`
		} `json:"branch"`
	} `json:"kitchen"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// NewClient создаёт клиент бэкенда по указанному адресу. Токен для
// авторизованных вызовов берётся из token на каждом запросе.
func NewClient(baseURL string, token TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		token: token,
	}
}

// Login выполняет вход кухни по имени и паролю. Токен не требуется.
func (c *Client) Login(ctx context.Context, name, password string) (*LoginResponse, error) {
	body, err := json.Marshal(map[string]string{"name": name, "password": password})
	if err != nil {
		return nil, fmt.Errorf("marshal credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/kitchen/auth/login"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var result LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// Logout завершает сессию на бэкенде.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/api/logout", nil)
}

// FetchOrders запрашивает текущую пачку заказов кухни.
func (c *Client) FetchOrders(ctx context.Context) ([]model.RawOrder, error) {
	return c.fetchBatch(ctx, "/kitchen/orders")
}

// FetchNotifications запрашивает пачку непрочитанных заказов.
func (c *Client) FetchNotifications(ctx context.Context) ([]model.RawOrder, error) {
	return c.fetchBatch(ctx, "/kitchen/orders/notification")
}

// ChangeDoneStatus меняет статус готовности заказа.
func (c *Client) ChangeDoneStatus(ctx context.Context, orderID, status string) error {
	return c.post(ctx, "/kitchen/orders/done_status/"+orderID, map[string]string{"status": status})
}

// MarkRead помечает заказ прочитанным.
func (c *Client) MarkRead(ctx context.Context, orderID string) error {
	return c.post(ctx, "/kitchen/orders/read_status/"+orderID, nil)
}

func (c *Client) fetchBatch(ctx context.Context, path string) ([]model.RawOrder, error) {
	token := c.token()
	if token == "" {
		return nil, ErrNoToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var batch model.OrdersBatch
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return batch.KitchenOrder, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	token := c.token()
	if token == "" {
		return ErrNoToken
	}

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), &body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

func (c *Client) url(path string) string {
	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return base + path
}

// statusError различает протухшую сессию и прочие неуспешные ответы.
// Бэкенд сопровождает 401 сообщением "Unauthenticated.".
func statusError(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		var er errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err == nil && er.Message == "Unauthenticated." {
			return ErrUnauthenticated
		}
	}
	return fmt.Errorf("unexpected status: %d", resp.StatusCode)
}
