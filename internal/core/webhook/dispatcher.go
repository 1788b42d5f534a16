package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/trevocrm/crm-automation-be/internal/models"
)

const (
	maxAttempts     = 3
	deliveryTimeout = 10 * time.Second
	userAgent       = "TrevoCRM-Webhook/1.0"
)

// SubscriptionStore loads the active subscriptions for one event.
type SubscriptionStore interface {
	FindActiveByEvent(ctx context.Context, event string) ([]models.WebhookSubscription, error)
}

// DeliveryLogStore records terminal delivery outcomes.
type DeliveryLogStore interface {
	CreateDeliveryLog(ctx context.Context, entry *models.WebhookDeliveryLog) error
}

// Payload is the outbound wire format posted to subscribers.
type Payload struct {
	Event     string                 `json:"event"`
	Data      map[string]interface{} `json:"data"`
	Timestamp string                 `json:"timestamp"`
}

// Result aggregates one trigger call's fan-out.
type Result struct {
	Triggered  int `json:"triggered"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// DeliveryError is a failed delivery attempt: transport error or non-2xx.
type DeliveryError struct {
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("delivery failed: %v", e.Err)
	}
	return fmt.Sprintf("subscriber returned status %d", e.StatusCode)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Dispatcher fans one domain event out to all matching subscriptions with
// signed, retried HTTP delivery. Individual delivery failures are accounted
// in the Result, never raised to the caller of Trigger.
type Dispatcher struct {
	subscriptions SubscriptionStore
	logs          DeliveryLogStore
	client        *http.Client
	maxConcurrent int
	sleep         func(time.Duration)
	now           func() time.Time
}

// NewDispatcher creates a webhook dispatcher. maxConcurrent bounds the
// fan-out so large subscriber counts cannot open unbounded connections.
func NewDispatcher(subscriptions SubscriptionStore, logs DeliveryLogStore, maxConcurrent int) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &Dispatcher{
		subscriptions: subscriptions,
		logs:          logs,
		client:        &http.Client{Timeout: deliveryTimeout},
		maxConcurrent: maxConcurrent,
		sleep:         time.Sleep,
		now:           time.Now,
	}
}

// Trigger delivers the event to every active matching subscription
// concurrently. Deliveries are independent: one unreachable endpoint does
// not affect the others.
func (d *Dispatcher) Trigger(ctx context.Context, event string, data map[string]interface{}) (Result, error) {
	subscriptions, err := d.subscriptions.FindActiveByEvent(ctx, event)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	if len(subscriptions) == 0 {
		return Result{}, nil
	}

	payload := Payload{
		Event:     event,
		Data:      data,
		Timestamp: d.now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	log.Printf("📡 Triggering webhook event %s for %d subscriptions", event, len(subscriptions))

	result := Result{Triggered: len(subscriptions)}
	sem := make(chan struct{}, d.maxConcurrent)

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, sub := range subscriptions {
		wg.Add(1)
		go func(sub models.WebhookSubscription) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			err := d.deliver(ctx, sub, event, body)
			mu.Lock()
			if err != nil {
				result.Failed++
			} else {
				result.Successful++
			}
			mu.Unlock()
		}(sub)
	}
	wg.Wait()

	return result, nil
}

// deliver runs the per-subscription retry state machine: up to maxAttempts
// POSTs with exponential backoff (1s, 2s, 4s) between attempts. Exactly one
// delivery log row is written, recording the terminal outcome.
func (d *Dispatcher) deliver(ctx context.Context, sub models.WebhookSubscription, event string, body []byte) error {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		status, err := d.attempt(ctx, sub, body)
		if err == nil {
			d.writeLog(ctx, &models.WebhookDeliveryLog{
				WebhookID:  sub.ID,
				Event:      event,
				Status:     models.DeliveryStatusSuccess,
				HTTPStatus: status,
				Attempt:    attempt,
				SentAt:     d.now(),
			})
			return nil
		}

		lastErr = err
		log.Printf("⚠️ Webhook delivery to %s failed (attempt %d/%d): %v", sub.URL, attempt, maxAttempts, err)

		if attempt < maxAttempts {
			d.sleep(time.Duration(1<<(attempt-1)) * time.Second)
		}
	}

	d.writeLog(ctx, &models.WebhookDeliveryLog{
		WebhookID:    sub.ID,
		Event:        event,
		Status:       models.DeliveryStatusFailed,
		ErrorMessage: lastErr.Error(),
		Attempt:      maxAttempts,
		SentAt:       d.now(),
	})
	return lastErr
}

// attempt performs one POST toward the subscriber.
func (d *Dispatcher) attempt(ctx context.Context, sub models.WebhookSubscription, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.URL, bytes.NewReader(body))
	if err != nil {
		return 0, &DeliveryError{Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if sub.Secret != "" {
		req.Header.Set("X-Webhook-Signature", Sign(sub.Secret, body))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, &DeliveryError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, &DeliveryError{StatusCode: resp.StatusCode}
	}
	return resp.StatusCode, nil
}

func (d *Dispatcher) writeLog(ctx context.Context, entry *models.WebhookDeliveryLog) {
	if err := d.logs.CreateDeliveryLog(ctx, entry); err != nil {
		log.Printf("⚠️ Failed to write webhook delivery log: %v", err)
	}
}
