package gateway

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
	"sync"
	"time"

	"github.com/stocktakehq/stocktake-web/pkg/config"
	pkgerrors "github.com/stocktakehq/stocktake-web/pkg/errors"
	"github.com/stocktakehq/stocktake-web/pkg/logger"
	"github.com/stocktakehq/stocktake-web/pkg/metrics"
)

const (
	restPrefix = "/rest/v1"
	authPrefix = "/auth/v1"
)

var (
	errBaseURLRequired = errors.New("gateway base url is required")
	errAPIKeyRequired  = errors.New("gateway api key is required")
	errLoggerRequired  = errors.New("gateway logger is required")
)

// Client talks to the hosted data/auth backend. It owns the current session:
// every data call carries the signed-in bearer token when one is held, and
// falls back to the API key otherwise.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	leeway     time.Duration
	logger     *logger.Logger
	metrics    *metrics.HTTPMetrics

	mu       sync.Mutex
	session  *Session
	subs     map[int]func(AuthEvent, *Session)
	nextSub  int
	refreshC chan struct{}
}

// New initializes the gateway wrapper and validates the credentials.
func New(cfg config.GatewayConfig, logg *logger.Logger, m *metrics.HTTPMetrics) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		leeway:     cfg.RefreshLeeway,
		logger:     logg,
		metrics:    m,
		subs:       make(map[int]func(AuthEvent, *Session)),
		refreshC:   make(chan struct{}, 1),
	}, nil
}

// do executes one gateway request and decodes a 2xx body into out when out is
// non-nil. Non-2xx answers become typed errors carrying the remote body.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, headers http.Header, payload, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("encoding %s payload", op))
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("building %s request", op))
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearerToken())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveGatewayCall(op, err)
		wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("gateway %s failed", op))
		c.logError(ctx, op, wrapped)
		return wrapped
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ObserveGatewayCall(op, err)
		wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("reading %s response", op))
		c.logError(ctx, op, wrapped)
		return wrapped
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gwErr := parseError(op, resp.StatusCode, raw)
		c.metrics.ObserveGatewayCall(op, gwErr)
		wrapped := pkgerrors.Wrap(codeForStatus(resp.StatusCode), gwErr, fmt.Sprintf("gateway %s failed", op))
		c.logError(ctx, op, wrapped)
		return wrapped
	}

	c.metrics.ObserveGatewayCall(op, nil)
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decoding %s response", op))
	}
	return nil
}

func (c *Client) bearerToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil && c.session.AccessToken != "" {
		return c.session.AccessToken
	}
	return c.apiKey
}

func (c *Client) logError(ctx context.Context, op string, err error) {
	if c.logger == nil {
		return
	}
	dump := pkgerrors.Dump(err)
	ctx = c.logger.WithFields(ctx, map[string]any{
		"operation":       op,
		"gateway_status":  dump.GatewayStatus,
		"gateway_code":    dump.GatewayCode,
		"gateway_message": dump.GatewayMessage,
	})
	c.logger.Error(ctx, fmt.Sprintf("gateway %s failed", op), err)
}

// restSelect fetches rows from a data table.
func (c *Client) restSelect(ctx context.Context, op, table string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	if query.Get("select") == "" {
		query.Set("select", "*")
	}
	return c.do(ctx, op, http.MethodGet, restPrefix+"/"+table, query, nil, nil, out)
}

// restInsert inserts a single row and decodes the representation the gateway
// returns. The data API takes an array payload and answers with one.
func (c *Client) restInsert(ctx context.Context, op, table string, payload, out any) error {
	headers := http.Header{}
	headers.Set("Prefer", "return=representation")
	var rows []json.RawMessage
	if err := c.do(ctx, op, http.MethodPost, restPrefix+"/"+table, nil, headers, []any{payload}, &rows); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(rows) == 0 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("gateway %s returned no row", op))
	}
	if err := json.Unmarshal(rows[0], out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decoding %s row", op))
	}
	return nil
}

// restUpdate patches the row with the given id.
func (c *Client) restUpdate(ctx context.Context, op, table, id string, payload, out any) error {
	query := url.Values{}
	query.Set("id", "eq."+id)
	headers := http.Header{}
	headers.Set("Prefer", "return=representation")
	var rows []json.RawMessage
	if err := c.do(ctx, op, http.MethodPatch, restPrefix+"/"+table, query, headers, payload, &rows); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(rows) == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("gateway %s matched no row", op))
	}
	if err := json.Unmarshal(rows[0], out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decoding %s row", op))
	}
	return nil
}

// restDelete removes the row with the given id.
func (c *Client) restDelete(ctx context.Context, op, table, id string) error {
	query := url.Values{}
	query.Set("id", "eq."+id)
	return c.do(ctx, op, http.MethodDelete, restPrefix+"/"+table, query, nil, nil, nil)
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	case http.StatusUnprocessableEntity:
		return pkgerrors.CodeStateConflict
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}
