// Package apiclient talks to the POS REST backend. Client implements the
// order, table and catalog collaborators the POS session depends on.
package apiclient

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

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MikeMC777/cafe-pos/internal/catalog"
	"github.com/MikeMC777/cafe-pos/internal/order"
	"github.com/MikeMC777/cafe-pos/internal/table"
)

const DefaultTimeout = 10 * time.Second

// StatusError is a non-2xx response.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

type Client struct {
	HTTP    *http.Client
	BaseURL string
	Token   string
	log     *zap.Logger
}

// New returns a client for baseURL (for example http://localhost:4000/api).
// A non-empty token is sent as a bearer header.
func New(baseURL, token string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		log:     log,
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	start := time.Now()
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	c.log.Debug("api call",
		zap.String("method", method), zap.String("path", path),
		zap.Int("status", res.StatusCode), zap.Duration("dur", time.Since(start)))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var e catalog.HTTPError
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		if json.Unmarshal(raw, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(raw))
		}
		return &StatusError{Method: method, Path: path, Code: res.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// ListAvailableProducts implements catalog.Source.
func (c *Client) ListAvailableProducts(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	if err := c.do(ctx, http.MethodGet, "/menu", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListTables(ctx context.Context) ([]table.Table, error) {
	var out []table.Table
	if err := c.do(ctx, http.MethodGet, "/tables", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SetTableAvailability(ctx context.Context, id string, available bool) (*table.Table, error) {
	var out table.Table
	in := table.AvailabilityRequest{IsAvailable: &available}
	if err := c.do(ctx, http.MethodPatch, "/tables/"+url.PathEscape(id)+"/availability", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateOrder(ctx context.Context, tableID string, lines []order.Line) (*order.Order, error) {
	var out order.Order
	in := order.CreateOrderRequest{TableID: tableID, Items: order.FromLines(lines)}
	err := c.do(ctx, http.MethodPost, "/orders", in, &out)
	if IsStatus(err, http.StatusConflict) {
		return nil, fmt.Errorf("%w: %v", order.ErrOpenExists, err)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateOrderLines(ctx context.Context, orderID string, lines []order.Line) (*order.Order, error) {
	var out order.Order
	in := order.UpdateOrderRequest{Items: order.FromLines(lines)}
	if err := c.do(ctx, http.MethodPatch, "/orders/"+url.PathEscape(orderID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOpenOrderForTable returns nil, nil when the table has no open order.
func (c *Client) GetOpenOrderForTable(ctx context.Context, tableID string) (*order.Order, error) {
	var out order.Order
	err := c.do(ctx, http.MethodGet, "/orders/table/"+url.PathEscape(tableID)+"/active", nil, &out)
	if IsStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetOrderStatus(ctx context.Context, orderID string, status order.Status, reason string) (*order.Order, error) {
	var out order.Order
	path := "/orders/" + url.PathEscape(orderID)
	var err error
	switch status {
	case order.StatusPaid:
		err = c.do(ctx, http.MethodPatch, path+"/pay", nil, &out)
	case order.StatusCancelled:
		err = c.do(ctx, http.MethodPost, path+"/cancel", order.CancelOrderRequest{Reason: reason}, &out)
	default:
		return nil, fmt.Errorf("%w: %s", order.ErrInvalidStatus, status)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

var (
	_ order.Backend  = (*Client)(nil)
	_ table.Backend  = (*Client)(nil)
	_ catalog.Source = (*Client)(nil)
)
