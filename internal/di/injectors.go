//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"gxd/internal"
	"gxd/internal/controllers"
	"gxd/internal/exchange"
	"gxd/internal/providers"
	"gxd/internal/services"
	"gxd/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewCatalogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		exchange.NewZstdCompressor,
		services.NewAccountService,
		services.NewGiftService,
		exchange.NewFileManager,
		exchange.NewScheduler,
		exchange.NewPersister,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
