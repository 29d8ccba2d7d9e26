package components

import (
	"courier-escrow/internal/domain/pricing"
	"courier-escrow/internal/pkg/clock"
	"courier-escrow/internal/pkg/config"
	"courier-escrow/internal/usecase"
	"courier-escrow/internal/usecase/commands"
	"courier-escrow/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		pricing.NewDefaultCalculator,
		fx.As(new(pricing.Calculator)),
	),
	NewCommandOptions,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewEscrowCoordinator,
		func(e *commands.EscrowCoordinator) commands.EscrowCommands { return e },
		commands.NewBookingUseCase,
		commands.NewReviewUseCase,
		commands.NewRatingAggregator,
		commands.NewWebhookProcessor,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
		queries.NewReviewQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

func NewCommandOptions(cfg config.Config) commands.Options {
	return commands.Options{
		Currency:             cfg.Payment.Currency,
		AuthorizationTimeout: cfg.Escrow.AuthorizationTimeout,
		AsyncRating:          cfg.Rating.Async,
	}
}
