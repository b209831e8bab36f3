package arcpay

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

	"github.com/dujiao-next/checkout/internal/constants"
	"github.com/dujiao-next/checkout/internal/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

var (
	ErrConfigInvalid   = errors.New("arcpay config invalid")
	ErrRequestFailed   = errors.New("arcpay request failed")
	ErrResponseInvalid = errors.New("arcpay response invalid")
	ErrRequestRejected = errors.New("arcpay request rejected")
	ErrCircuitOpen     = errors.New("arcpay circuit open")
)

const (
	defaultAPIURL          = "https://dev.arcpay.ai"
	defaultTimeout         = 12 * time.Second
	defaultBreakerFailures = 5
	defaultBreakerOpen     = 30 * time.Second

	// IdempotencyHeader 幂等键请求头
	IdempotencyHeader = "Idempotency-Key"
)

// Config ArcPay 客户端配置。
type Config struct {
	APIURL              string
	APIKey              string
	RequestTimeout      time.Duration
	BreakerMaxFailures  int
	BreakerOpenDuration time.Duration
}

// CaptureRequest 创建扣款请求。
type CaptureRequest struct {
	Amount               string            `json:"amount"`
	Currency             string            `json:"currency"`
	GrantedMandateSecret string            `json:"granted_mandate_secret"`
	Metadata             map[string]string `json:"metadata,omitempty"`
}

// CaptureMethod 扣款方式。
type CaptureMethod struct {
	Type string `json:"type"`
}

// PaymentCapture 扣款资源。
type PaymentCapture struct {
	ID                   string            `json:"id"`
	Live                 bool              `json:"live"`
	Amount               string            `json:"amount"`
	Currency             string            `json:"currency"`
	Method               CaptureMethod     `json:"method"`
	Status               string            `json:"status"`
	GrantedMandateSecret string            `json:"granted_mandate_secret,omitempty"`
	CancellationReason   string            `json:"cancellation_reason,omitempty"`
	CancelledAt          string            `json:"cancelled_at,omitempty"`
	FailureReason        string            `json:"failure_reason,omitempty"`
	FailedAt             string            `json:"failed_at,omitempty"`
	FinishedAt           string            `json:"finished_at,omitempty"`
	CreatedAt            string            `json:"created_at"`
	Metadata             map[string]string `json:"metadata,omitempty"`
}

// IsTerminal 是否已到终态（succeeded/failed/cancelled）。
func (p *PaymentCapture) IsTerminal() bool {
	if p == nil {
		return false
	}
	switch p.Status {
	case constants.CaptureStatusSucceeded, constants.CaptureStatusFailed, constants.CaptureStatusCancelled:
		return true
	default:
		return false
	}
}

// Reason 失败或取消原因。
func (p *PaymentCapture) Reason() string {
	if p == nil {
		return ""
	}
	if reason := strings.TrimSpace(p.FailureReason); reason != "" {
		return reason
	}
	return strings.TrimSpace(p.CancellationReason)
}

// APIError 服务端返回的错误体。
type APIError struct {
	HTTPStatus int    `json:"-"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Status     int    `json:"status"`
	Detail     string `json:"detail,omitempty"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s (http %d): %s", ErrRequestRejected.Error(), e.HTTPStatus, e.Title)
	if e.Detail != "" {
		msg += " - " + e.Detail
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return ErrRequestRejected
}

// Client ArcPay 扣款客户端。
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*rawResponse]
}

type rawResponse struct {
	status int
	body   []byte
}

// New 创建客户端。
func New(cfg Config, httpClient *http.Client) (*Client, error) {
	cfg.normalize()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: api key is required", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(cfg.APIURL); err != nil {
		return nil, fmt.Errorf("%w: api url is invalid", ErrConfigInvalid)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	maxFailures := uint32(cfg.BreakerMaxFailures)
	breaker := gobreaker.NewCircuitBreaker[*rawResponse](gobreaker.Settings{
		Name:        "arcpay",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenDuration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warnw("arcpay_breaker_state_changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &Client{cfg: cfg, http: httpClient, breaker: breaker}, nil
}

// CreateCapture 创建扣款，idempotencyKey 为空时生成随机键。
func (c *Client) CreateCapture(ctx context.Context, req CaptureRequest, idempotencyKey string) (*PaymentCapture, error) {
	if strings.TrimSpace(req.Amount) == "" || strings.TrimSpace(req.Currency) == "" || strings.TrimSpace(req.GrantedMandateSecret) == "" {
		return nil, fmt.Errorf("%w: amount, currency and mandate secret are required", ErrConfigInvalid)
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request failed", ErrRequestFailed)
	}
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}
	headers := map[string]string{IdempotencyHeader: idempotencyKey}
	resp, err := c.doJSONRequest(ctx, http.MethodPost, "/payment_captures", payload, headers)
	if err != nil {
		return nil, err
	}
	return decodeCapture(resp)
}

// GetCapture 查询扣款。
func (c *Client) GetCapture(ctx context.Context, captureID string) (*PaymentCapture, error) {
	captureID = strings.TrimSpace(captureID)
	if captureID == "" {
		return nil, fmt.Errorf("%w: capture id is required", ErrConfigInvalid)
	}
	resp, err := c.doJSONRequest(ctx, http.MethodGet, "/payment_captures/"+url.PathEscape(captureID), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeCapture(resp)
}

func (c *Client) doJSONRequest(ctx context.Context, method, path string, body []byte, headers map[string]string) (*rawResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := c.breaker.Execute(func() (*rawResponse, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.cfg.APIURL+path, reader)
		if err != nil {
			return nil, fmt.Errorf("%w: build request failed", ErrRequestFailed)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		httpResp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
		defer httpResp.Body.Close()
		raw, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
		}
		result := &rawResponse{status: httpResp.StatusCode, body: raw}
		if httpResp.StatusCode >= http.StatusInternalServerError {
			// 5xx 计入熔断失败次数，4xx 为调用方问题不计入
			return nil, decodeAPIError(result)
		}
		return result, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	if err != nil {
		return nil, err
	}
	if resp.status < http.StatusOK || resp.status >= http.StatusMultipleChoices {
		return nil, decodeAPIError(resp)
	}
	return resp, nil
}

func decodeAPIError(resp *rawResponse) error {
	apiErr := &APIError{HTTPStatus: resp.status}
	if err := json.Unmarshal(resp.body, apiErr); err != nil || strings.TrimSpace(apiErr.Title) == "" {
		apiErr.Title = http.StatusText(resp.status)
	}
	return apiErr
}

func decodeCapture(resp *rawResponse) (*PaymentCapture, error) {
	body := resp.body
	var envelope struct {
		Object string          `json:"object"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 && envelope.Data[0] == '{' {
		body = envelope.Data
	}
	var capture PaymentCapture
	if err := json.Unmarshal(body, &capture); err != nil {
		return nil, fmt.Errorf("%w: decode capture failed", ErrResponseInvalid)
	}
	if strings.TrimSpace(capture.ID) == "" || strings.TrimSpace(capture.Status) == "" {
		return nil, fmt.Errorf("%w: capture id or status missing", ErrResponseInvalid)
	}
	return &capture, nil
}

// StablecoinCurrency 法币映射到结算稳定币（USD→USDC，EUR→EURC）。
func StablecoinCurrency(fiat string) string {
	code := strings.ToUpper(strings.TrimSpace(fiat))
	switch code {
	case "USD":
		return "USDC"
	case "EUR":
		return "EURC"
	default:
		return code
	}
}

// FormatAmount 将最小货币单位金额格式化为十进制字符串。
func FormatAmount(minor int64) string {
	return decimal.NewFromInt(minor).String()
}

func (c *Config) normalize() {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		c.APIURL = defaultAPIURL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultTimeout
	}
	if c.BreakerMaxFailures <= 0 {
		c.BreakerMaxFailures = defaultBreakerFailures
	}
	if c.BreakerOpenDuration <= 0 {
		c.BreakerOpenDuration = defaultBreakerOpen
	}
}
