package estimator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/yourusername/sharpeye/internal/models"
)

// HTTPModelConfig holds settings for the REST model backend
type HTTPModelConfig struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	RateLimit    float64 // requests per second, 0 disables limiting
}

// DefaultHTTPModelConfig returns recommended defaults for baseURL
func DefaultHTTPModelConfig(baseURL string) HTTPModelConfig {
	return HTTPModelConfig{
		BaseURL:      baseURL,
		Timeout:      2 * time.Second,
		MaxRetries:   2,
		RetryWaitMin: 50 * time.Millisecond,
		RetryWaitMax: 500 * time.Millisecond,
	}
}

type httpPredictRequest struct {
	Features models.FeatureVector `json:"features"`
}

type httpPredictResponse struct {
	PredictedPoints *float64 `json:"predicted_points"`
	MAE             *float64 `json:"mae"`
}

// HTTPModel calls a remote model server over REST with bounded retries and
// client-side rate limiting.
type HTTPModel struct {
	client   *retryablehttp.Client
	limiter  *rate.Limiter
	endpoint string
	apiKey   string
}

// NewHTTPModel creates a REST model client
func NewHTTPModel(cfg HTTPModelConfig) *HTTPModel {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = retryPolicy
	retryClient.Logger = nil

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &HTTPModel{
		client:   retryClient,
		limiter:  rate.NewLimiter(limit, 1),
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/v1/predict",
		apiKey:   cfg.APIKey,
	}
}

// Predict implements Model
func (m *HTTPModel) Predict(ctx context.Context, features models.FeatureVector) (float64, float64, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return 0, 0, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(httpPredictRequest{Features: features})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("X-API-Key", m.apiKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, 0, fmt.Errorf("%w: status %d: %s", ErrInvalidResponse, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out httpPredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if out.PredictedPoints == nil || out.MAE == nil {
		return 0, 0, fmt.Errorf("%w: missing predicted_points or mae", ErrInvalidResponse)
	}

	return *out.PredictedPoints, *out.MAE, nil
}

// Close drops idle connections
func (m *HTTPModel) Close() error {
	m.client.HTTPClient.CloseIdleConnections()
	return nil
}

// retryPolicy retries network errors, 429 and 5xx; other responses are final
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}
