package service

import (
	"context"
	"log/slog"

	"inventory-api/internal/event"
	"inventory-api/internal/model"
	"inventory-api/internal/query"
)

const auditStatusSuccess = "success"

type AuditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	List(ctx context.Context, spec query.Spec) ([]model.AuditEntry, int, error)
}

// AuditService persists mutation events published on the bus.
type AuditService struct {
	store AuditStore
	bus   event.Bus
}

func NewAuditService(store AuditStore, bus event.Bus) *AuditService {
	return &AuditService{store: store, bus: bus}
}

// Start subscribes before returning, so no event published afterwards is
// missed. The returned channel closes once ctx is cancelled and the buffered
// events have been written.
func (s *AuditService) Start(ctx context.Context) <-chan struct{} {
	events, unsubscribe := s.bus.Subscribe("audit")
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case e, ok := <-events:
				if !ok {
					return
				}
				s.Record(ctx, e)
			case <-ctx.Done():
				unsubscribe()
				flushCtx := context.WithoutCancel(ctx)
				for e := range events {
					s.Record(flushCtx, e)
				}
				return
			}
		}
	}()

	return done
}

func (s *AuditService) Record(ctx context.Context, e event.Event) {
	entry := model.AuditEntry{
		Action:     string(e.Type),
		OccurredAt: e.Timestamp,
		Actor:      e.Actor,
		Status:     auditStatusSuccess,
		Resource:   e.Resource,
		Before:     e.Before,
		After:      e.After,
	}

	if err := s.store.Log(ctx, entry); err != nil {
		slog.Error("failed to persist audit entry", "action", entry.Action, "resource", entry.Resource, "error", err)
	}
}

func (s *AuditService) List(ctx context.Context, spec query.Spec) (query.Page[model.AuditEntry], error) {
	entries, total, err := s.store.List(ctx, spec)
	if err != nil {
		return query.Page[model.AuditEntry]{}, err
	}
	return query.NewPage(entries, total, spec), nil
}
