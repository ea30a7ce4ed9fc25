package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rsavin/bookdesk/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI определяет интерфейс REST-клиента для мутаций и снапшота
type ClientAPI interface {
	// Reserve создает новую запись для клиента
	Reserve(ctx context.Context, customerKey string, req api.ReserveRequest) (*api.ReservationResponse, error)

	// CancelReservation отменяет запись клиента
	CancelReservation(ctx context.Context, customerKey string, req api.CancelRequest) (*api.ReservationResponse, error)

	// ModifyReservation изменяет запись клиента
	ModifyReservation(ctx context.Context, customerKey string, req api.ModifyRequest) (*api.ReservationResponse, error)

	// UndoCancel восстанавливает отменённую запись
	UndoCancel(ctx context.Context, req api.UndoCancelRequest) (*api.ReservationResponse, error)

	// ModifyID меняет идентификатор клиента (номер телефона)
	ModifyID(ctx context.Context, req api.ModifyIDRequest) error

	// FetchSnapshot запрашивает полное состояние (REST fallback для стрима)
	FetchSnapshot(ctx context.Context) (*api.SnapshotPayload, error)
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
	}
}

// Reserve создает новую запись для клиента
func (c *Client) Reserve(ctx context.Context, customerKey string, req api.ReserveRequest) (*api.ReservationResponse, error) {
	var resp api.ReservationResponse
	path := fmt.Sprintf("/reservations/%s", url.PathEscape(customerKey))
	if err := c.doRequest(ctx, "POST", path, req, &resp); err != nil {
		return nil, fmt.Errorf("reserve request failed: %w", err)
	}
	return &resp, nil
}

// CancelReservation отменяет запись клиента
func (c *Client) CancelReservation(ctx context.Context, customerKey string, req api.CancelRequest) (*api.ReservationResponse, error) {
	var resp api.ReservationResponse
	path := fmt.Sprintf("/reservations/%s/cancel", url.PathEscape(customerKey))
	if err := c.doRequest(ctx, "POST", path, req, &resp); err != nil {
		return nil, fmt.Errorf("cancel request failed: %w", err)
	}
	return &resp, nil
}

// ModifyReservation изменяет запись клиента
func (c *Client) ModifyReservation(ctx context.Context, customerKey string, req api.ModifyRequest) (*api.ReservationResponse, error) {
	var resp api.ReservationResponse
	path := fmt.Sprintf("/reservations/%s/modify", url.PathEscape(customerKey))
	if err := c.doRequest(ctx, "POST", path, req, &resp); err != nil {
		return nil, fmt.Errorf("modify request failed: %w", err)
	}
	return &resp, nil
}

// UndoCancel восстанавливает отменённую запись
func (c *Client) UndoCancel(ctx context.Context, req api.UndoCancelRequest) (*api.ReservationResponse, error) {
	var resp api.ReservationResponse
	if err := c.doRequest(ctx, "POST", "/undo-cancel", req, &resp); err != nil {
		return nil, fmt.Errorf("undo-cancel request failed: %w", err)
	}
	return &resp, nil
}

// ModifyID меняет идентификатор клиента (номер телефона)
func (c *Client) ModifyID(ctx context.Context, req api.ModifyIDRequest) error {
	if err := c.doRequest(ctx, "POST", "/api/modify-id", req, nil); err != nil {
		return fmt.Errorf("modify-id request failed: %w", err)
	}
	return nil
}

// FetchSnapshot запрашивает полное состояние (REST fallback для стрима)
func (c *Client) FetchSnapshot(ctx context.Context) (*api.SnapshotPayload, error) {
	var resp api.SnapshotPayload
	if err := c.doRequest(ctx, "GET", "/api/snapshot", nil, &resp); err != nil {
		return nil, fmt.Errorf("snapshot request failed: %w", err)
	}
	return &resp, nil
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	reqURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
