package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"inventory-api/internal/model"
	"inventory-api/internal/query"
)

type AuditRepository struct {
	pool    *pgxpool.Pool
	listing query.Resource
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool, listing: AuditListing()}
}

func (r *AuditRepository) Log(ctx context.Context, entry model.AuditEntry) error {
	var beforeJSON, afterJSON []byte
	var err error

	if entry.Before != nil {
		beforeJSON, err = json.Marshal(entry.Before)
		if err != nil {
			return fmt.Errorf("marshal before data: %w", err)
		}
	}
	if entry.After != nil {
		afterJSON, err = json.Marshal(entry.After)
		if err != nil {
			return fmt.Errorf("marshal after data: %w", err)
		}
	}

	occurredAt := time.Now().UTC()
	if entry.OccurredAt != "" {
		if parsed, parseErr := time.Parse(time.RFC3339Nano, entry.OccurredAt); parseErr == nil {
			occurredAt = parsed
		}
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO audit_entries
		 (action, occurred_at, actor_user_id, actor_email, actor_role, actor_ip,
		  status, resource, before_data, after_data, error_text)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.Action, occurredAt,
		entry.Actor.UserID, entry.Actor.Email, string(entry.Actor.Role), entry.Actor.IP,
		entry.Status, entry.Resource, beforeJSON, afterJSON, entry.Error)
	if err != nil {
		return fmt.Errorf("log audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, spec query.Spec) ([]model.AuditEntry, int, error) {
	clause := spec.SQL(r.listing)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_entries "+clause.Where, clause.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	page, args := clause.Page(spec)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT id, action, occurred_at, actor_user_id, actor_email, actor_role, actor_ip,
		        status, resource, before_data, after_data, error_text
		 FROM audit_entries %s %s %s`, clause.Where, clause.OrderBy, page), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.AuditEntry, 0)
	for rows.Next() {
		var e model.AuditEntry
		var occurredAt time.Time
		var role string
		var beforeJSON, afterJSON []byte

		if err := rows.Scan(
			&e.ID, &e.Action, &occurredAt,
			&e.Actor.UserID, &e.Actor.Email, &role, &e.Actor.IP,
			&e.Status, &e.Resource, &beforeJSON, &afterJSON, &e.Error,
		); err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}

		e.OccurredAt = occurredAt.UTC().Format(time.RFC3339Nano)
		e.Actor.Role = model.Role(role)

		if len(beforeJSON) > 0 {
			var before any
			if jsonErr := json.Unmarshal(beforeJSON, &before); jsonErr == nil {
				e.Before = before
			}
		}
		if len(afterJSON) > 0 {
			var after any
			if jsonErr := json.Unmarshal(afterJSON, &after); jsonErr == nil {
				e.After = after
			}
		}

		entries = append(entries, e)
	}

	return entries, total, rows.Err()
}
