package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	dashboard "github.com/goliatone/go-widgetgrid/components/dashboard"
)

// DefaultStatsPath is the aggregate-statistics endpoint relative to the base URL.
const DefaultStatsPath = "/api/stats"

// HTTPConfig configures the HTTP metrics client.
type HTTPConfig struct {
	BaseURL    string
	StatsPath  string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPClient fetches the metrics snapshot from the backend REST API.
type HTTPClient struct {
	baseURL   string
	statsPath string
	apiKey    string
	client    *http.Client
}

var _ dashboard.MetricsSource = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the aggregate-statistics endpoint.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("metrics: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	path := cfg.StatsPath
	if path == "" {
		path = DefaultStatsPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return &HTTPClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		statsPath: path,
		apiKey:    cfg.APIKey,
		client:    httpClient,
	}, nil
}

// FetchMetrics issues a single GET and decodes the snapshot.
func (c *HTTPClient) FetchMetrics(ctx context.Context) (dashboard.MetricsSnapshot, error) {
	var resp statsResponse
	if err := c.do(ctx, http.MethodGet, c.statsPath, &resp); err != nil {
		return dashboard.MetricsSnapshot{}, err
	}
	return resp.toSnapshot(), nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("metrics: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("metrics: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("metrics: remote error %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("metrics: decode response: %w", err)
	}
	return nil
}

type statsCounts struct {
	Dreams         int `json:"dreams"`
	Clients        int `json:"clients"`
	Sessions       int `json:"sessions"`
	Amplifications int `json:"amplifications"`
	JournalEntries int `json:"journalEntries"`
	TestResults    int `json:"testResults"`
}

type statsSymbol struct {
	Symbol string `json:"symbol"`
	Count  int    `json:"count"`
}

type statsDistributions struct {
	Symbols    []statsSymbol  `json:"symbols"`
	Tests      map[string]int `json:"tests"`
	Categories map[string]int `json:"categories"`
}

type statsResponse struct {
	Counts        statsCounts        `json:"counts"`
	Distributions statsDistributions `json:"distributions"`
}

func (r statsResponse) toSnapshot() dashboard.MetricsSnapshot {
	symbols := make([]dashboard.SymbolCount, 0, len(r.Distributions.Symbols))
	for _, s := range r.Distributions.Symbols {
		if s.Symbol == "" {
			continue
		}
		symbols = append(symbols, dashboard.SymbolCount{Symbol: s.Symbol, Count: s.Count})
	}
	return dashboard.MetricsSnapshot{
		Counts: dashboard.MetricCounts{
			Dreams:         r.Counts.Dreams,
			Clients:        r.Counts.Clients,
			Sessions:       r.Counts.Sessions,
			Amplifications: r.Counts.Amplifications,
			JournalEntries: r.Counts.JournalEntries,
			TestResults:    r.Counts.TestResults,
		},
		Distributions: dashboard.Distributions{
			Symbols:    symbols,
			Tests:      cloneTable(r.Distributions.Tests),
			Categories: cloneTable(r.Distributions.Categories),
		},
	}
}

func cloneTable(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
