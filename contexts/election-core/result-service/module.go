package resultservice

import (
	"log/slog"

	httpadapter "tallyroom/contexts/election-core/result-service/adapters/http"
	"tallyroom/contexts/election-core/result-service/adapters/memory"
	"tallyroom/contexts/election-core/result-service/application"
	"tallyroom/contexts/election-core/result-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Centers    ports.CenterDirectory
	Actors     ports.ActorDirectory
	Notifier   ports.Notifier
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:     deps.Repository,
		Centers:  deps.Centers,
		Actors:   deps.Actors,
		Notifier: deps.Notifier,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Results: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

// NewInMemoryModule backs every port with the memory store; tests seed
// center and actor projections directly on Store.
func NewInMemoryModule(notifier ports.Notifier, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Centers:    store,
		Actors:     store,
		Notifier:   notifier,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
