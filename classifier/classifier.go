// Package classifier is the HTTP client for the external hoax-detection
// model service. The model itself (tokenization, inference) lives behind
// a small scoring endpoint; this client only moves text in and a
// probability pair out.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/zombar/hoaxcheck/models"
)

// ErrUnavailable is returned when the model service cannot be reached or
// reports that the model is not loaded.
var ErrUnavailable = errors.New("classifier unavailable")

// Client talks to the model service over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
}

// New creates a reusable client for the model service at endpoint.
func New(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Classify sends text for scoring and returns the label plus probability
// pair. Transport failures and 5xx responses surface as ErrUnavailable.
func (c *Client) Classify(ctx context.Context, text string) (models.ClassifierOutput, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return models.ClassifierOutput{}, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/classify", bytes.NewReader(payload))
	if err != nil {
		return models.ClassifierOutput{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.ClassifierOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusServiceUnavailable {
			return models.ClassifierOutput{}, fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
		}
		return models.ClassifierOutput{}, fmt.Errorf("classifier: unexpected status %s", resp.Status)
	}

	var out models.ClassifierOutput
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.ClassifierOutput{}, fmt.Errorf("decode response: %w", err)
	}
	if out.PValid < 0 || out.PValid > 1 || out.PHoax < 0 || out.PHoax > 1 {
		return models.ClassifierOutput{}, fmt.Errorf("classifier: probabilities out of range (p_valid=%v p_hoax=%v)", out.PValid, out.PHoax)
	}
	return out, nil
}
