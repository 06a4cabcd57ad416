// Package watcher turns Postgres project-change notifications into handler
// calls: cache eviction and notification emission.
package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"permit-review/internal/domain"
)

// Channel is the NOTIFY channel written by the projects status trigger.
const Channel = "project_status"

const (
	minReconnect   = 10 * time.Second
	maxReconnect   = time.Minute
	pingInterval   = 90 * time.Second
	handlerTimeout = 30 * time.Second
)

type Handler interface {
	HandleStatusChange(ctx context.Context, change domain.StatusChange) error
}

type Listener interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

type Watcher struct {
	listener Listener
	handlers []Handler
}

// New opens a dedicated LISTEN connection to databaseURL. Handlers run in the
// given order for every change.
func New(databaseURL string, handlers ...Handler) *Watcher {
	l := pq.NewListener(databaseURL, minReconnect, maxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
			slog.Warn("status listener connection problem", "event", ev, "error", err)
		case pq.ListenerEventReconnected:
			slog.Info("status listener reconnected")
		}
	})
	return NewWithListener(l, handlers...)
}

func NewWithListener(l Listener, handlers ...Handler) *Watcher {
	return &Watcher{listener: l, handlers: handlers}
}

// Run blocks until ctx is cancelled, dispatching each change to every
// handler once.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.listener.Listen(Channel); err != nil {
		return fmt.Errorf("listen %s: %w", Channel, err)
	}
	defer w.listener.Close()

	slog.Info("status watcher started", "channel", Channel)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("status watcher stopped")
			return nil

		case n, ok := <-w.listener.NotificationChannel():
			if !ok {
				return fmt.Errorf("status listener closed")
			}
			if n == nil {
				// Sent after a reconnect; changes made while disconnected are lost.
				slog.Warn("status listener reconnected, notifications may have been missed")
				continue
			}
			w.dispatch(ctx, n.Extra)

		case <-ticker.C:
			if err := w.listener.Ping(); err != nil {
				slog.Warn("status listener ping failed", "error", err)
			}
		}
	}
}

type payload struct {
	ProjectID string    `json:"projectId"`
	Before    string    `json:"before"`
	After     string    `json:"after"`
	ChangedAt time.Time `json:"changedAt"`
}

func parsePayload(raw string) (domain.StatusChange, error) {
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return domain.StatusChange{}, fmt.Errorf("decode payload: %w", err)
	}
	id, err := uuid.Parse(p.ProjectID)
	if err != nil {
		return domain.StatusChange{}, fmt.Errorf("invalid project id %q: %w", p.ProjectID, err)
	}
	return domain.StatusChange{
		ProjectID: id,
		Before:    domain.ProjectStatus(p.Before),
		After:     domain.ProjectStatus(p.After),
		ChangedAt: p.ChangedAt,
	}, nil
}

func (w *Watcher) dispatch(ctx context.Context, raw string) {
	change, err := parsePayload(raw)
	if err != nil {
		slog.Error("dropping malformed status notification", "payload", raw, "error", err)
		return
	}

	for _, h := range w.handlers {
		w.handle(ctx, h, change)
	}
}

func (w *Watcher) handle(ctx context.Context, h Handler, change domain.StatusChange) {
	hctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	if err := h.HandleStatusChange(hctx, change); err != nil {
		slog.Error("status change handler failed",
			"project_id", change.ProjectID,
			"before", change.Before,
			"after", change.After,
			"error", err,
		)
	}
}
