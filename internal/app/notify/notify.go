// Package notify carries user-facing notifications (toasts) from the API
// client to whatever page the user sees next.
package notify

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/moxc-web/internal/app/observability/metrics"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notification struct {
	Level     Level
	Title     string
	Message   string
	CreatedAt time.Time
}

// Notifier displays a notification to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// LogNotifier writes notifications to the log. It is used where no browser
// session exists to show them in.
type LogNotifier struct {
	Logger *zap.Logger
}

func (l LogNotifier) Notify(_ context.Context, n Notification) {
	record(n)
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fields := []zap.Field{zap.String("level", string(n.Level)), zap.String("message", n.Message)}
	if n.Title != "" {
		fields = append(fields, zap.String("title", n.Title))
	}
	if n.Level == LevelError {
		logger.Warn("User notification", fields...)
		return
	}
	logger.Info("User notification", fields...)
}

func record(n Notification) {
	metrics.Get().NotificationsTotal.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("level", string(n.Level))))
}
