package ussdservice

import (
	"log/slog"
	"time"

	httpadapter "tallyroom/contexts/field-intake/ussd-service/adapters/http"
	"tallyroom/contexts/field-intake/ussd-service/adapters/memory"
	"tallyroom/contexts/field-intake/ussd-service/application"
	"tallyroom/contexts/field-intake/ussd-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Engine  application.Engine
	Store   *memory.Store
}

type Dependencies struct {
	Sessions   ports.SessionStore
	Directory  ports.DirectoryClient
	Results    ports.ResultClient
	Clock      ports.Clock
	SessionTTL time.Duration
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	engine := application.Engine{
		Sessions:   deps.Sessions,
		Directory:  deps.Directory,
		Results:    deps.Results,
		Clock:      deps.Clock,
		SessionTTL: deps.SessionTTL,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Engine: engine,
			Logger: deps.Logger,
		},
		Engine: engine,
	}
}

// NewInMemoryModule keeps sessions in memory; the directory and result
// clients still have to be supplied because the dialogue is a thin shell
// over those two services.
func NewInMemoryModule(
	directory ports.DirectoryClient,
	results ports.ResultClient,
	sessionTTL time.Duration,
	logger *slog.Logger,
) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Sessions:   store,
		Directory:  directory,
		Results:    results,
		Clock:      store,
		SessionTTL: sessionTTL,
		Logger:     logger,
	})
	module.Store = store
	return module
}
