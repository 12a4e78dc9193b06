package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/clinic-billing/internal/domain"
	customError "github.com/segyhp/clinic-billing/pkg/errors"
	"github.com/segyhp/clinic-billing/pkg/logger"
)

// ViewCache keeps rendered financing details warm and tells the
// presentation layer which views went stale. A miss returns nil, nil.
type ViewCache interface {
	GetFinancing(ctx context.Context, id uuid.UUID) (*domain.FinancingDetail, int64, error)
	SetFinancing(ctx context.Context, detail *domain.FinancingDetail, generation int64) error
	InvalidateFinancings(ctx context.Context, ids ...uuid.UUID) error
	Publish(ctx context.Context, event *domain.ViewEvent) error
}

// Clock returns the current time. Services use it for every timestamp they write.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

// internalError logs an unexpected failure and hides it behind a generic
// database error. Business errors pass through untouched.
func internalError(log logrus.FieldLogger, module, operation string, fields logrus.Fields, err error) error {
	var be *customError.BusinessError
	if errors.As(err, &be) {
		return err
	}
	logger.LogError(log, module, operation, fields, err)
	return customError.WrapDatabaseError(err)
}

// refreshViews runs after commit; failures are logged and swallowed.
func refreshViews(ctx context.Context, cache ViewCache, log logrus.FieldLogger, event *domain.ViewEvent) {
	entry := log.WithField("event", event.Type)

	if len(event.FinancingIDs) > 0 {
		if err := cache.InvalidateFinancings(ctx, event.FinancingIDs...); err != nil {
			entry.WithError(err).Warn("failed to invalidate financing views")
		}
	}

	if err := cache.Publish(ctx, event); err != nil {
		entry.WithError(err).Warn("failed to publish view refresh")
	}
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
