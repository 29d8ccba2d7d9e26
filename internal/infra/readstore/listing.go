package readstore

import (
	"context"

	"courier-escrow/internal/infra"
	"courier-escrow/internal/infra/db"
	"courier-escrow/internal/usecase/shared"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type ListingReadStore struct {
	db db.DBTX
}

func NewListingReadStore(dbtx db.DBTX) *ListingReadStore {
	return &ListingReadStore{db: dbtx}
}

func (s *ListingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*shared.ListingSnapshot, error) {
	query, args, err := psql.Select("id", "provider_id", "title", "base_cents", "per_km_cents", "per_minute_cents",
		"estimated_minutes", "requires_pickup", "active").
		From("listings").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build listing query", err)
	}

	var (
		snap    shared.ListingSnapshot
		minutes int32
	)
	err = s.db.QueryRow(ctx, query, args...).Scan(
		&snap.ID, &snap.ProviderID, &snap.Title,
		&snap.RateCard.BaseCents, &snap.RateCard.PerKmCents, &snap.RateCard.PerMinuteCents,
		&minutes, &snap.RequiresPickup, &snap.Active,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get listing", err)
	}
	snap.RateCard.EstimatedMinutes = int(minutes)
	return &snap, nil
}
