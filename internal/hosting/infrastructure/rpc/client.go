// Package rpc talks to the panel XML API.
package rpc

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/kolabsys/phlesk/internal/hosting/domain"
	"github.com/kolabsys/phlesk/pkg/observability"
)

const (
	// DefaultURL is the API endpoint of a local panel.
	DefaultURL = "https://127.0.0.1:8443/enterprise/control/agent.php"
	// DefaultTimeout bounds one API request.
	DefaultTimeout = 30 * time.Second
	// KeyHeader carries the secret API key.
	KeyHeader = "KEY"

	maxResponseSize = 8 << 20
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("panel API circuit open")

// Config configures the client.
type Config struct {
	URL     string
	Key     string
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures that opens
	// the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open.
	OpenTimeout time.Duration
}

// Client sends XML packets to the panel API.
type Client struct {
	url     string
	key     string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	metrics observability.Metrics
	logger  *slog.Logger
}

// NewClient creates a client. A nil httpClient uses one with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "panel-api",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &Client{
		url:     cfg.URL,
		key:     cfg.Key,
		http:    httpClient,
		breaker: breaker,
		metrics: observability.NoopMetrics{},
		logger:  logger,
	}
}

// SetMetrics sets the collector that receives call counts and latencies.
func (c *Client) SetMetrics(metrics observability.Metrics) {
	c.metrics = metrics
}

// Call posts packet and returns the raw response body.
func (c *Client) Call(ctx context.Context, packet []byte) ([]byte, error) {
	timer := observability.StartTimer(observability.MetricRPCTotal, observability.MetricRPCDuration, observability.MetricRPCFailures).
		WithMetrics(c.metrics)

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.post(ctx, packet)
	})
	timer.Stop(ctx, err != nil)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitOpen
	}
	return body, err
}

func (c *Client) post(ctx context.Context, packet []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(packet))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("HTTP_PRETTY_PRINT", "TRUE")
	if c.key != "" {
		req.Header.Set(KeyHeader, c.key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRPCFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrRPCFailed, resp.StatusCode)
	}

	var sys systemError
	if err := xml.Unmarshal(body, &sys); err == nil && sys.System != nil && sys.System.Status == "error" {
		return nil, fmt.Errorf("%w: %s (%d)", domain.ErrRPCFailed, strings.TrimSpace(sys.System.Text), sys.System.Code)
	}
	return body, nil
}

type systemError struct {
	System *result `xml:"system"`
}

type result struct {
	Status string `xml:"status"`
	Code   int    `xml:"errcode"`
	Text   string `xml:"errtext"`
}

func (r result) err(operation string) error {
	if r.Status == "ok" {
		return nil
	}
	return fmt.Errorf("%w: %s: %s (%d)", domain.ErrRPCFailed, operation, strings.TrimSpace(r.Text), r.Code)
}
