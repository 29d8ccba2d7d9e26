package components

import (
	"courier-escrow/internal/infra/cache"
	"courier-escrow/internal/infra/db"
	"courier-escrow/internal/infra/payment"
	"courier-escrow/internal/infra/readstore"
	"courier-escrow/internal/infra/uow"
	"courier-escrow/internal/pkg/config"
	"courier-escrow/internal/usecase/queries"
	"courier-escrow/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	repositoryModule,
	gatewayModule,
)

var baseOption = fx.Provide(
	NewDBTX,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingReadStore)),
		),
		fx.Annotate(
			readstore.NewReviewReadStore,
			fx.As(new(queries.ReviewReadStore)),
		),
		NewRatingCache,
		func(c *cache.RatingCache) queries.RatingCache { return c },
		func(c *cache.RatingCache) shared.RatingCacheInvalidator { return c },
	),
)

var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		// UnitOfWork owns every write-side repository
		uow.NewPostgresUoW,
	),
)

var gatewayModule = fx.Module("persistence/gateway",
	fx.Provide(
		fx.Annotate(
			NewPaymentGateway,
			fx.As(new(shared.PaymentGateway)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

func NewRatingCache(client *redis.Client, cfg config.Config) *cache.RatingCache {
	return cache.NewRatingCache(client, cfg.Rating.CacheTTL)
}

func NewPaymentGateway(cfg config.Config) *payment.StripeGateway {
	return payment.NewStripeGateway(cfg.Payment)
}
