package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taskpulse-dev/taskpulse/internal/models"
	"github.com/taskpulse-dev/taskpulse/internal/types"
)

type EventType string

const (
	EventCreated EventType = "Created"
	EventUpdated EventType = "Updated"
	EventDeleted EventType = "Deleted"
)

// TaskEvent is the outbound payload for a task mutation.
type TaskEvent struct {
	TaskID        string    `json:"task_id"`
	TaskName      string    `json:"taskName"`
	Description   string    `json:"description"`
	Assignee      string    `json:"assignee"`
	AssigneeEmail string    `json:"assigneeEmail"`
	Workspace     string    `json:"workspace"`
	Priority      string    `json:"priority"`
	Status        string    `json:"status"`
	EventType     EventType `json:"eventType"`
	DueDate       string    `json:"due_date"`
	Timestamp     string    `json:"timestamp"`

	// Not serialized; used for routing to realtime subscribers.
	AssigneeID string `json:"-"`
}

const dueDateLayout = "1/2/2006"

func NewTaskEvent(task models.Task, event EventType, now time.Time) TaskEvent {
	description := task.Description
	if description == "" {
		description = types.DefaultDescription
	}
	priority := task.Priority
	if priority == "" {
		priority = types.DefaultPriority
	}
	dueDate := "N/A"
	if task.DueDate != nil && !task.DueDate.IsZero() {
		dueDate = task.DueDate.UTC().Format(dueDateLayout)
	}

	return TaskEvent{
		TaskID:        task.ID,
		TaskName:      task.Name,
		Description:   description,
		Assignee:      task.AssigneeName,
		AssigneeEmail: task.AssigneeEmail,
		Workspace:     task.WorkspaceName,
		Priority:      priority,
		Status:        task.Status,
		EventType:     event,
		DueDate:       dueDate,
		Timestamp:     now.UTC().Format(time.RFC3339Nano),
		AssigneeID:    task.Assignee,
	}
}

// Notifier delivers task events to an external party.
type Notifier interface {
	Notify(ctx context.Context, event TaskEvent) error
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, TaskEvent) error { return nil }

// MultiNotifier fans an event out to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, event TaskEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AsyncNotifier dispatches events in the background so callers never wait on
// delivery. Failures and panics are logged and dropped.
type AsyncNotifier struct {
	next    Notifier
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewAsyncNotifier(next Notifier, timeout time.Duration, logger *zap.Logger) *AsyncNotifier {
	return &AsyncNotifier{next: next, timeout: timeout, logger: orNop(logger)}
}

func (a *AsyncNotifier) Notify(ctx context.Context, event TaskEvent) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.logger.Warn("notifier closed, dropping event",
			zap.String("task_id", event.TaskID),
			zap.String("event_type", string(event.EventType)),
		)
		return nil
	}
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error("notifier panicked",
					zap.String("task_id", event.TaskID),
					zap.Any("panic", r),
				)
			}
		}()

		// The request context ends with the response.
		dispatchCtx := context.WithoutCancel(ctx)
		if a.timeout > 0 {
			var cancel context.CancelFunc
			dispatchCtx, cancel = context.WithTimeout(dispatchCtx, a.timeout)
			defer cancel()
		}

		if err := a.next.Notify(dispatchCtx, event); err != nil {
			a.logger.Warn("task notification failed",
				zap.String("task_id", event.TaskID),
				zap.String("event_type", string(event.EventType)),
				zap.Error(err),
			)
		}
	}()
	return nil
}

// Wait stops accepting events and blocks until every dispatched event has
// finished. Events arriving afterwards are dropped.
func (a *AsyncNotifier) Wait() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	a.wg.Wait()
}

func notifyError(name string, err error) error {
	return fmt.Errorf("%s: %w", name, err)
}
