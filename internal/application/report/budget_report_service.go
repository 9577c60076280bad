// Package report provides read-side reporting services, currently the
// planned-versus-actual budget reconciliation per order.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/budget"
	"github.com/kontor/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReportCache is a byte-oriented cache for rendered reports. A miss is
// reported as (nil, nil).
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// DefaultReportTTL bounds how stale a cached reconciliation may get even
// without an invalidating event
const DefaultReportTTL = 5 * time.Minute

// BudgetReportService computes budget reconciliations, serving repeated
// requests cache-aside
type BudgetReportService struct {
	planRepo budget.BudgetPlanRepository
	costRepo budget.ActualCostRepository
	cache    ReportCache
	ttl      time.Duration
	logger   *zap.Logger
}

// NewBudgetReportService creates a new BudgetReportService. The cache is
// optional; without one every request recomputes.
func NewBudgetReportService(
	planRepo budget.BudgetPlanRepository,
	costRepo budget.ActualCostRepository,
	cache ReportCache,
	logger *zap.Logger,
) *BudgetReportService {
	return &BudgetReportService{
		planRepo: planRepo,
		costRepo: costRepo,
		cache:    cache,
		ttl:      DefaultReportTTL,
		logger:   logger,
	}
}

func reportCacheKey(orderID uuid.UUID, withMonths bool) string {
	return fmt.Sprintf("report:budget:%s:months=%t", orderID, withMonths)
}

// Reconcile returns the planned-versus-actual view for an order, comparing
// the latest budget plan version against all recorded costs. Orders without
// a plan reconcile against zero planned figures.
func (s *BudgetReportService) Reconcile(ctx context.Context, orderID uuid.UUID, withMonths bool) (*budget.Reconciliation, error) {
	key := reportCacheKey(orderID, withMonths)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Warn("report cache read failed", zap.Error(err))
		} else if cached != nil {
			var rec budget.Reconciliation
			if err := json.Unmarshal(cached, &rec); err == nil {
				return &rec, nil
			}
			// Unreadable entries are dropped and recomputed
			_ = s.cache.Delete(ctx, key)
		}
	}

	plan, err := s.planRepo.FindLatestByOrder(ctx, orderID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	costs, err := s.costRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	rec := budget.Reconcile(orderID, plan, costs, withMonths)

	if s.cache != nil {
		if payload, err := json.Marshal(rec); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
				s.logger.Warn("report cache write failed", zap.Error(err))
			}
		}
	}

	return rec, nil
}

// Invalidate drops the cached reconciliation for an order
func (s *BudgetReportService) Invalidate(ctx context.Context, orderID uuid.UUID) {
	if s.cache == nil {
		return
	}
	keys := []string{reportCacheKey(orderID, true), reportCacheKey(orderID, false)}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("report cache invalidation failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
	}
}

// ReportInvalidator drops cached reconciliations when budget figures change
type ReportInvalidator struct {
	service *BudgetReportService
}

// NewReportInvalidator creates an event handler that invalidates the report
// cache on plan submissions and cost recordings
func NewReportInvalidator(service *BudgetReportService) *ReportInvalidator {
	return &ReportInvalidator{service: service}
}

// EventTypes returns the events the invalidator listens to
func (h *ReportInvalidator) EventTypes() []string {
	return []string{
		budget.EventTypeBudgetPlanSubmitted,
		budget.EventTypeActualCostRecorded,
	}
}

// Handle invalidates the cache entry of the affected order
func (h *ReportInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *budget.BudgetPlanSubmittedEvent:
		h.service.Invalidate(ctx, e.OrderID)
	case *budget.ActualCostRecordedEvent:
		h.service.Invalidate(ctx, e.OrderID)
	}
	return nil
}
