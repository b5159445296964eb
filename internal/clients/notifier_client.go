package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"learnhub/internal/service"
)

// NotifierClient forwards CoursePurchased events to the external
// mailer/notifier. Delivery is best effort; the webhook response to the
// gateway never depends on it.
type NotifierClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewNotifierClient returns HTTP client wrapper.
func NewNotifierClient(baseURL string, logger *zap.Logger) *NotifierClient {
	return &NotifierClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// DispatchPurchase sends the CoursePurchased event.
func (c *NotifierClient) DispatchPurchase(ctx context.Context, event service.PurchaseEvent) error {
	if c.baseURL == "" {
		c.logger.Debug("notifier disabled, skip purchase dispatch")
		return nil
	}
	return c.post(ctx, "/events/course-purchased", event)
}

func (c *NotifierClient) post(ctx context.Context, path string, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s%s", c.baseURL, path), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("notifier request failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		c.logger.Warn("notifier returned non-success", zap.Int("status", resp.StatusCode))
	}
	return nil
}
