package lookup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/common"
	"github.com/joseph-ayodele/receipts-collator/internal/entity"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	// product pages are large; the title and first price sit near the top
	maxPageBytes = 4 << 20
)

// HTTPSource scrapes the retailer's public search page for an item code.
type HTTPSource struct {
	baseURL   string
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

type HTTPOption func(*HTTPSource)

func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if c != nil {
			s.client = c
		}
	}
}

func WithUserAgent(ua string) HTTPOption {
	return func(s *HTTPSource) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

func WithHTTPLogger(l *slog.Logger) HTTPOption {
	return func(s *HTTPSource) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewHTTPSource(baseURL string, timeout time.Duration, opts ...HTTPOption) *HTTPSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	s := &HTTPSource{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SearchURL is the page fetched for code.
func (s *HTTPSource) SearchURL(code string) string {
	return s.baseURL + "/s?keyword=" + url.QueryEscape(code)
}

func (s *HTTPSource) Fetch(ctx context.Context, code string) (entity.PriceHint, constants.LookupStatus) {
	raw, status, err := getPage(ctx, s.client, s.SearchURL(code), s.headers(), s.logger)
	if err != nil {
		if status == http.StatusNotFound {
			return entity.PriceHint{}, constants.LookupStatusNotFound
		}
		s.logger.Warn("lookup.http.failed", "code", code, "status", status, "error", err)
		return entity.PriceHint{}, constants.LookupStatusFailed
	}
	hint := ParseProductPage(raw)
	if hint.Empty() {
		return entity.PriceHint{}, constants.LookupStatusNotFound
	}
	return hint, constants.LookupStatusFound
}

func (s *HTTPSource) headers() map[string]string {
	return map[string]string{
		"User-Agent":      s.userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
	}
}

// getPage issues a GET with headers and returns the (size-capped) body and
// status. Non-2xx statuses come back as an error together with the status.
func getPage(ctx context.Context, client *http.Client, url string, headers map[string]string, logger *slog.Logger) ([]byte, int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	reqID := uuid.New().String()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logger.Error("lookup.http.build_request_error", "req_id", reqID, "error", err)
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	logger.Debug("lookup.http.request", "req_id", reqID, "url", url)

	resp, err := client.Do(req)
	if err != nil {
		logger.Warn("lookup.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0, fmt.Errorf("%w: %w", common.ErrLookup, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Warn("lookup.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}

	logger.Debug("lookup.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, fmt.Errorf("%w: non-2xx status: %d", common.ErrLookup, resp.StatusCode)
	}
	return raw, resp.StatusCode, nil
}
