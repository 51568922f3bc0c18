package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
}

func NewServiceLogger(logger *slog.Logger, component string) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", "hostel-service", "component", component),
	}
}

// ===== OPERATION LOGGING =====

// LogOperation logs the outcome of a mutating operation. Expected failures
// (validation, not found, conflicts) log below error level.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation string, userID uint, resourceID uint, resourceType string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	if err != nil {
		level = slog.LevelError
		status = "error"

		switch {
		case IsValidation(err):
			level = slog.LevelWarn
			status = "validation_error"
		case IsInvalidTransition(err):
			level = slog.LevelWarn
			status = "invalid_transition"
		case IsConflict(err):
			level = slog.LevelWarn
			status = "conflict"
		case IsUnauthorized(err), IsForbidden(err):
			level = slog.LevelWarn
			status = "unauthorized"
		case IsNotFound(err):
			status = "not_found"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.Uint64("user_id", uint64(userID)),
		slog.Uint64("resource_id", uint64(resourceID)),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var validationErr ValidationErrors
		var transitionErr *TransitionError
		switch {
		case errors.As(err, &validationErr):
			attrs = append(attrs, slog.Int("validation_errors_count", len(validationErr)))
		case errors.As(err, &transitionErr):
			attrs = append(attrs,
				slog.String("from_status", string(transitionErr.From)),
				slog.String("to_status", string(transitionErr.To)))
		}
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

// ===== AUDIT LOGGING =====

type AuditAction string

const (
	AuditUserCreated      AuditAction = "user_created"
	AuditUserDeactivated  AuditAction = "user_deactivated"
	AuditIssueTransition  AuditAction = "issue_transition"
	AuditAnnouncementMade AuditAction = "announcement_created"
)

type AuditEvent struct {
	Action       AuditAction
	ActorID      uint
	ResourceID   uint
	ResourceType string
	OldValue     interface{}
	NewValue     interface{}
}

func (l *ServiceLogger) LogAuditEvent(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("action", string(event.Action)),
		slog.Uint64("actor_id", uint64(event.ActorID)),
		slog.Uint64("resource_id", uint64(event.ResourceID)),
		slog.String("resource_type", event.ResourceType),
	}

	if event.OldValue != nil {
		attrs = append(attrs, slog.Any("old_value", event.OldValue))
	}
	if event.NewValue != nil {
		attrs = append(attrs, slog.Any("new_value", event.NewValue))
	}

	l.logger.LogAttrs(ctx, slog.LevelInfo, fmt.Sprintf("Audit: %s %s", event.Action, event.ResourceType), attrs...)
}

// ===== SECURITY LOGGING =====

// LogLoginFailure records why a login failed. The reason never reaches the
// client, which always sees the same message.
func (l *ServiceLogger) LogLoginFailure(ctx context.Context, email string, reason string) {
	l.logger.LogAttrs(ctx, slog.LevelWarn, "Login failed",
		slog.String("email", email),
		slog.String("reason", reason))
}
