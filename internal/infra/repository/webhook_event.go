package repository

import (
	"context"

	"courier-escrow/internal/infra"
	"courier-escrow/internal/infra/db"
	"courier-escrow/internal/usecase/shared"

	sq "github.com/Masterminds/squirrel"
)

type WebhookEventRepository struct {
	db db.DBTX
}

func NewWebhookEventRepository(dbtx db.DBTX) *WebhookEventRepository {
	return &WebhookEventRepository{db: dbtx}
}

func (r *WebhookEventRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	query, args, err := psql.Select("1").
		Prefix("SELECT EXISTS (").
		From("webhook_events").
		Where(sq.Eq{"event_id": eventID}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, infra.WrapRepoErr("failed to build webhook event lookup", err)
	}
	var exists bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, infra.WrapRepoErr("failed to look up webhook event", err)
	}
	return exists, nil
}

// Record stores the processed event id. A concurrent delivery that already stored
// it makes Record report false instead of failing.
func (r *WebhookEventRepository) Record(ctx context.Context, rec shared.WebhookEventRecord) (bool, error) {
	query, args, err := psql.Insert("webhook_events").
		Columns("event_id", "event_type", "payment_reference", "processed_at").
		Values(rec.EventID, rec.EventType, rec.PaymentReference, rec.ProcessedAt).
		Suffix("ON CONFLICT (event_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, infra.WrapRepoErr("failed to build webhook event insert", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, infra.WrapRepoErr("failed to record webhook event", err)
	}
	return tag.RowsAffected() == 1, nil
}
