package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/taskpulse-dev/taskpulse/internal/models"
	"github.com/taskpulse-dev/taskpulse/internal/repository"
)

const (
	DeliverySent     = "sent"
	DeliveryFailed   = "failed"
	DeliverySkipped  = "skipped"
	maxResponseBytes = 4096
	recordTimeout    = 5 * time.Second
)

// DeliveryResult describes a single webhook attempt.
type DeliveryResult struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error,omitempty"`
}

// WebhookNotifier posts task events as JSON to a single endpoint. An empty URL
// disables delivery.
type WebhookNotifier struct {
	url        string
	client     *http.Client
	deliveries repository.DeliveryRepository
	logger     *zap.Logger
	now        func() time.Time
}

func NewWebhookNotifier(url string, timeout time.Duration, deliveries repository.DeliveryRepository, logger *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		client:     &http.Client{Timeout: timeout},
		deliveries: deliveries,
		logger:     orNop(logger),
		now:        time.Now,
	}
}

func (w *WebhookNotifier) Enabled() bool {
	return w.url != ""
}

func (w *WebhookNotifier) Notify(ctx context.Context, event TaskEvent) error {
	result, err := w.Send(ctx, event)
	if err != nil {
		return notifyError("webhook", err)
	}
	if result.Status == DeliveryFailed {
		return notifyError("webhook", fmt.Errorf("%s", result.Error))
	}
	return nil
}

// Send delivers event synchronously and records the attempt. The returned
// error covers only failures to build the request; delivery failures are
// reported in the result.
func (w *WebhookNotifier) Send(ctx context.Context, event TaskEvent) (DeliveryResult, error) {
	if !w.Enabled() {
		w.logger.Info("webhook url not configured, skipping notification",
			zap.String("task_id", event.TaskID),
			zap.String("event_type", string(event.EventType)),
		)
		return DeliveryResult{Status: DeliverySkipped}, nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return DeliveryResult{}, fmt.Errorf("failed to marshal task event: %w", err)
	}

	w.logger.Debug("pushing task event",
		zap.String("task_id", event.TaskID),
		zap.String("event_type", string(event.EventType)),
		zap.String("workspace", event.Workspace),
	)

	result := w.post(ctx, body)
	w.record(ctx, event, body, result)

	if result.Status == DeliveryFailed {
		w.logger.Warn("webhook delivery failed",
			zap.String("task_id", event.TaskID),
			zap.Int("status_code", result.StatusCode),
			zap.String("error", result.Error),
		)
	} else {
		w.logger.Info("webhook delivered",
			zap.String("task_id", event.TaskID),
			zap.Int("status_code", result.StatusCode),
		)
	}
	return result, nil
}

func (w *WebhookNotifier) post(ctx context.Context, body []byte) DeliveryResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return DeliveryResult{Status: DeliveryFailed, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return DeliveryResult{Status: DeliveryFailed, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		return DeliveryResult{
			Status:     DeliveryFailed,
			StatusCode: resp.StatusCode,
			Error:      fmt.Sprintf("webhook returned status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet)),
		}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	return DeliveryResult{Status: DeliverySent, StatusCode: resp.StatusCode}
}

func (w *WebhookNotifier) record(ctx context.Context, event TaskEvent, body []byte, result DeliveryResult) {
	if w.deliveries == nil {
		return
	}

	// Record even when the delivery itself ran out of time.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	delivery := &models.Delivery{
		TaskID:        event.TaskID,
		WorkspaceName: event.Workspace,
		EventType:     string(event.EventType),
		Status:        result.Status,
		StatusCode:    result.StatusCode,
		Error:         result.Error,
		Payload:       body,
		SentAt:        w.now(),
	}
	if err := w.deliveries.Create(ctx, delivery); err != nil {
		w.logger.Error("failed to record webhook delivery", zap.String("task_id", event.TaskID), zap.Error(err))
	}
}
