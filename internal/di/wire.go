//go:build wireinject
// +build wireinject

package di

import (
	"FinCast/pkg/config"
	"FinCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvidePriceStore,
		ProvideSignalPublisher,
		ProvideResponseCache,

		// Live feed
		ProvideWindows,
		ProvideQuoteCollector,

		// Engine and jobs
		ProvideOrchestrator,
		ProvideJobQueue,

		// HTTP surface and application server
		ProvideForecastHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
