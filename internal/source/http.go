// Package source retrieves raw receipt payloads from the receipt backend or
// from a local JSON export.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/raseed/internal/common"
	"github.com/Veraticus/raseed/internal/model"
	"github.com/Veraticus/raseed/internal/service"
	"golang.org/x/oauth2"
)

var _ service.ReceiptSource = (*HTTPSource)(nil)

// HTTPConfig configures an HTTPSource.
type HTTPConfig struct {
	BaseURL string
	// Token is sent as a bearer token when set.
	Token      string
	Timeout    time.Duration
	Retry      service.RetryOptions
	HTTPClient *http.Client
}

// HTTPSource fetches receipts from GET {base}/receipts/{userID}.
type HTTPSource struct {
	client  *http.Client
	logger  *slog.Logger
	baseURL string
	retry   service.RetryOptions
}

// NewHTTPSource creates an HTTP receipt source.
func NewHTTPSource(ctx context.Context, cfg HTTPConfig, logger *slog.Logger) (*HTTPSource, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("%w: receipt backend base URL", common.ErrMissingConfig)
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("%w: base URL %q: %w", common.ErrInvalidConfig, cfg.BaseURL, err)
	}

	client := &http.Client{}
	if cfg.HTTPClient != nil {
		c := *cfg.HTTPClient
		client = &c
	}
	if cfg.Token != "" {
		// oauth2.NewClient picks up the base client from the context.
		ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.Token,
			TokenType:   "Bearer",
		}))
	}
	if cfg.Timeout > 0 {
		client.Timeout = cfg.Timeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPSource{
		client:  client,
		logger:  logger,
		baseURL: base,
		retry:   cfg.Retry,
	}, nil
}

type receiptsEnvelope struct {
	Receipts []model.RawReceipt `json:"receipts"`
}

// FetchReceipts implements service.ReceiptSource. Server errors and rate
// limits are retried with backoff; other client errors are not.
func (s *HTTPSource) FetchReceipts(ctx context.Context, userID string) ([]model.RawReceipt, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id", common.ErrMissingConfig)
	}

	endpoint := s.baseURL + "/receipts/" + url.PathEscape(userID)

	var receipts []model.RawReceipt
	err := common.WithRetry(ctx, func() error {
		var fetchErr error
		receipts, fetchErr = s.fetch(ctx, endpoint)
		return fetchErr
	}, s.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch receipts: %w", err)
	}

	s.logger.Debug("Fetched receipts", "user", userID, "count", len(receipts))
	return receipts, nil
}

func (s *HTTPSource) fetch(ctx context.Context, endpoint string) ([]model.RawReceipt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, common.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", common.ErrSourceUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, common.RetryAfter(common.ErrRateLimit, retryAfter(resp.Header.Get("Retry-After"), time.Now()))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, common.Permanent(fmt.Errorf("%w: status %d", common.ErrUnauthorized, resp.StatusCode))
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: status %d", common.ErrSourceUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, common.Permanent(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	receipts, err := decodeReceipts(resp.Body)
	if err != nil {
		return nil, common.Permanent(err)
	}
	return receipts, nil
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP
// date. It returns 0 when the header is absent or unusable.
func retryAfter(header string, now time.Time) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		return time.Duration(max(secs, 0)) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		return max(at.Sub(now), 0)
	}
	return 0
}

// decodeReceipts reads either a bare JSON array of payloads or an object with
// a "receipts" array. Numbers are kept as json.Number.
func decodeReceipts(r io.Reader) ([]model.RawReceipt, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty body", common.ErrMalformedPayload)
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()

	if strings.HasPrefix(trimmed, "[") {
		var receipts []model.RawReceipt
		if err := dec.Decode(&receipts); err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrMalformedPayload, err)
		}
		return receipts, nil
	}

	var envelope receiptsEnvelope
	if err := dec.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMalformedPayload, err)
	}
	if envelope.Receipts == nil {
		return []model.RawReceipt{}, nil
	}
	return envelope.Receipts, nil
}
