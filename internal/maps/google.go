package maps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// maxResponseBytes caps how much of an API response is read.
const maxResponseBytes = 4 << 20

// GoogleConfig configures the Google Maps Platform clients.
type GoogleConfig struct {
	APIKey       string
	LanguageCode string
	Timeout      time.Duration
}

// googleClient holds what the Places, Routes and Street View clients share.
type googleClient struct {
	apiKey       string
	languageCode string
	httpClient   *http.Client
	logger       *zap.Logger
}

func newGoogleClient(cfg GoogleConfig, logger *zap.Logger) googleClient {
	lang := cfg.LanguageCode
	if lang == "" {
		lang = "en"
	}
	return googleClient{
		apiKey:       cfg.APIKey,
		languageCode: lang,
		httpClient:   newHTTPClient(cfg.Timeout),
		logger:       logger,
	}
}

// postJSON sends body to url with the API key and field mask headers and
// decodes a 200 response into out.
func (g *googleClient) postJSON(ctx context.Context, url, fieldMask string, body, out interface{}) error {
	if g.apiKey == "" {
		return ErrUnavailable
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", g.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	return g.do(req, out)
}

// get sends a GET request and decodes a 200 response into out.
func (g *googleClient) get(ctx context.Context, url string, out interface{}) error {
	if g.apiKey == "" {
		return ErrUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return g.do(req, out)
}

func (g *googleClient) do(req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	g.logger.Debug("maps api call",
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(raw), 256))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

type googleLatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
