package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-hub/scheduling-api/pkg/config"
	"github.com/campus-hub/scheduling-api/pkg/jobs"
)

// Outbound event names consumed by the push-notification transport.
const (
	EventRoomAssigned             = "room-assigned"
	EventRoomUnassigned           = "room-unassigned"
	EventStatsUpdated             = "stats-updated"
	EventScheduleUpdated          = "schedule-updated"
	EventScheduleExceptionUpdated = "schedule-exception-updated"
	EventScheduleRequestCreated   = "schedule-request-created"
)

// Event is one fire-and-forget notification. Audience lists the user ids the
// transport should fan the event out to.
type Event struct {
	Name      string      `json:"name"`
	Payload   interface{} `json:"payload"`
	Audience  []string    `json:"audience,omitempty"`
	EmittedAt time.Time   `json:"emitted_at"`
}

// NotifierService dispatches events on a background worker queue. Delivery is
// best-effort: failures are logged and counted, never surfaced to callers.
type NotifierService struct {
	queue   *jobs.Queue[Event]
	webhook string
	client  *http.Client
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotifierService constructs the notifier and its worker queue.
func NewNotifierService(cfg config.NotifierConfig, metrics *MetricsService, logger *zap.Logger) *NotifierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotifierService{
		webhook: cfg.WebhookURL,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		metrics: metrics,
		logger:  logger,
	}
	s.queue = jobs.NewQueue("notifier", s.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool.
func (s *NotifierService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *NotifierService) Stop() {
	s.queue.Stop()
}

// Emit enqueues an event. It never blocks a core operation's outcome: when
// the queue is unavailable the event is dropped with a log line.
func (s *NotifierService) Emit(name string, payload interface{}, audience ...string) {
	if s == nil {
		return
	}
	event := Event{Name: name, Payload: payload, Audience: audience, EmittedAt: time.Now().UTC()}
	job := jobs.Job[Event]{ID: uuid.NewString(), Type: name, Payload: event}
	if err := s.queue.Enqueue(job); err != nil {
		s.metrics.RecordEvent(name, false)
		s.logger.Warn("dropping notification event", zap.String("event", name), zap.Error(err))
	}
}

func (s *NotifierService) deliver(ctx context.Context, job jobs.Job[Event]) error {
	event := job.Payload

	s.logger.Info("schedule event",
		zap.String("event", event.Name),
		zap.Strings("audience", event.Audience),
		zap.Time("emitted_at", event.EmittedAt),
	)

	if s.webhook == "" {
		s.metrics.RecordEvent(event.Name, true)
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		s.metrics.RecordEvent(event.Name, false)
		s.logger.Error("marshal notification event", zap.String("event", event.Name), zap.Error(err))
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhook, bytes.NewReader(body))
	if err != nil {
		s.metrics.RecordEvent(event.Name, false)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.RecordEvent(event.Name, false)
		s.logger.Warn("notification delivery failed", zap.String("event", event.Name), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		s.metrics.RecordEvent(event.Name, false)
		s.logger.Warn("notification rejected", zap.String("event", event.Name), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}

	s.metrics.RecordEvent(event.Name, true)
	return nil
}
