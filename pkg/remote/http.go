package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultTimeout bounds each HTTP call when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// HTTPConfig configures HTTPService.
type HTTPConfig struct {
	BaseURL   string
	ProjectID string
	PublicKey string
	Timeout   time.Duration
}

// HTTPService is a RecordService speaking JSON over HTTP:
//
//	POST   {base}/{collection}/fetch  {fields, orderBy}
//	POST   {base}/{collection}        {records}
//	PATCH  {base}/{collection}        {records}
//	DELETE {base}/{collection}        {RecordIds}
type HTTPService struct {
	base   string
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTPService validates the base URL and builds a client.
func NewHTTPService(cfg HTTPConfig) (*HTTPService, error) {
	if !strings.HasPrefix(cfg.BaseURL, "https://") && !strings.HasPrefix(cfg.BaseURL, "http://") {
		return nil, fmt.Errorf("invalid remote url %q: must be http or https", cfg.BaseURL)
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &HTTPService{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (s *HTTPService) FetchRecords(ctx context.Context, collection string, params FetchParams) (*FetchResponse, error) {
	var out FetchResponse
	if err := s.do(ctx, http.MethodPost, s.endpoint(collection)+"/fetch", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *HTTPService) CreateRecord(ctx context.Context, collection string, records []Record) (*MutationResponse, error) {
	var out MutationResponse
	if err := s.do(ctx, http.MethodPost, s.endpoint(collection), map[string]any{"records": records}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *HTTPService) UpdateRecord(ctx context.Context, collection string, records []Record) (*MutationResponse, error) {
	var out MutationResponse
	if err := s.do(ctx, http.MethodPatch, s.endpoint(collection), map[string]any{"records": records}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *HTTPService) DeleteRecord(ctx context.Context, collection string, ids []string) (*DeleteResponse, error) {
	var out DeleteResponse
	if err := s.do(ctx, http.MethodDelete, s.endpoint(collection), map[string]any{"RecordIds": ids}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *HTTPService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *HTTPService) endpoint(collection string) string {
	return s.base + "/" + url.PathEscape(collection)
}

func (s *HTTPService) do(ctx context.Context, method, target string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.cfg.ProjectID != "" {
		req.Header.Set("X-Project-Id", s.cfg.ProjectID)
	}
	if s.cfg.PublicKey != "" {
		req.Header.Set("X-Public-Key", s.cfg.PublicKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Read body (limited to 10MB)
	b, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msg := gjson.GetBytes(b, "message").String(); msg != "" {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, msg)
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
