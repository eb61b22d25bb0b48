package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bft-labs/realmbridge/pkg/log"
)

// Sender delivers analytics events.
type Sender interface {
	Send(ctx context.Context, event Event) error
}

// HTTPSender posts events as JSON.
type HTTPSender struct {
	url    string
	client HTTPClient
	logger log.Logger
}

// NewHTTPSender creates a sender posting to url.
func NewHTTPSender(url string, client HTTPClient, logger log.Logger) *HTTPSender {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &HTTPSender{
		url:    url,
		client: client,
		logger: logger,
	}
}

// Send transmits one event.
func (s *HTTPSender) Send(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "realmbridge/"+event.Version)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	s.logger.Debug("analytics event sent", log.String("event", event.Event))
	return nil
}
