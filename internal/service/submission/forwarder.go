package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hospintel/hospintel_backend/internal/model"
	"github.com/hospintel/hospintel_backend/pkg/constants"
)

// Forwarder delivers a stamped record to the remote collector.
type Forwarder interface {
	Forward(ctx context.Context, rec model.Record) error
}

// HTTPForwarder POSTs records as JSON. It attaches no credentials.
type HTTPForwarder struct {
	endpoint string
	latency  time.Duration
	client   *http.Client
}

func NewHTTPForwarder(cfg Config) *HTTPForwarder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPForwarder{
		endpoint: strings.TrimSpace(cfg.Endpoint),
		latency:  cfg.Latency,
		client:   &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a real endpoint was set. The shipped
// placeholder counts as unset.
func (f *HTTPForwarder) Configured() bool {
	return f.endpoint != "" && f.endpoint != constants.PlaceholderEndpoint
}

func (f *HTTPForwarder) Forward(ctx context.Context, rec model.Record) error {
	if !f.Configured() {
		return ErrNotConfigured
	}

	if f.latency > 0 {
		t := time.NewTimer(f.latency)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("post submission: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrRemoteRejected, resp.StatusCode)
	}
	return nil
}
