package repository

import (
	"context"
	"time"

	"courier-escrow/internal/infra"
	"courier-escrow/internal/infra/db"
	"courier-escrow/internal/usecase/shared"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type RefundRepository struct {
	db db.DBTX
}

func NewRefundRepository(dbtx db.DBTX) *RefundRepository {
	return &RefundRepository{db: dbtx}
}

// ListByBooking returns the refund ledger in sequence order.
func (r *RefundRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]shared.RefundRecord, error) {
	query, args, err := psql.Select("id", "booking_id", "sequence", "amount_cents", "release", "idempotency_key",
		"gateway_refund_id", "status", "requested_by", "created_at", "updated_at").
		From("booking_refunds").
		Where(sq.Eq{"booking_id": bookingID}).
		OrderBy("sequence").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build refund query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list refunds", err)
	}
	defer rows.Close()

	var out []shared.RefundRecord
	for rows.Next() {
		var rec shared.RefundRecord
		var status string
		if err := rows.Scan(&rec.ID, &rec.BookingID, &rec.Sequence, &rec.AmountCents, &rec.Release,
			&rec.IdempotencyKey, &rec.GatewayRefundID, &status, &rec.RequestedBy, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan refund", err)
		}
		rec.Status = shared.RefundStatus(status)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate refunds", err)
	}
	return out, nil
}

func (r *RefundRepository) Create(ctx context.Context, rec shared.RefundRecord) error {
	query, args, err := psql.Insert("booking_refunds").
		Columns("id", "booking_id", "sequence", "amount_cents", "release", "idempotency_key",
			"gateway_refund_id", "status", "requested_by", "created_at", "updated_at").
		Values(rec.ID, rec.BookingID, rec.Sequence, rec.AmountCents, rec.Release, rec.IdempotencyKey,
			rec.GatewayRefundID, string(rec.Status), rec.RequestedBy, rec.CreatedAt, rec.UpdatedAt).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build refund insert", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to create refund", err)
	}
	return nil
}

func (r *RefundRepository) AttachGatewayID(ctx context.Context, id uuid.UUID, gatewayRefundID string) error {
	return r.update(ctx, id, "failed to attach gateway refund id", map[string]any{
		"gateway_refund_id": gatewayRefundID,
		"updated_at":        sq.Expr("now()"),
	})
}

func (r *RefundRepository) MarkSucceeded(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.update(ctx, id, "failed to mark refund succeeded", map[string]any{
		"status":     string(shared.RefundSucceeded),
		"updated_at": at,
	})
}

func (r *RefundRepository) update(ctx context.Context, id uuid.UUID, msg string, set map[string]any) error {
	query, args, err := psql.Update("booking_refunds").SetMap(set).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return infra.WrapRepoErr(msg, err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr(msg, err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "refund not found")
	}
	return nil
}
