package analyticsservice

import (
	"log/slog"

	httpadapter "tallyroom/contexts/election-core/analytics-service/adapters/http"
	"tallyroom/contexts/election-core/analytics-service/application"
	"tallyroom/contexts/election-core/analytics-service/ports"
)

type Module struct {
	Handler     httpadapter.Handler
	Service     application.Service
	Broadcaster application.Broadcaster
}

type Dependencies struct {
	Results     ports.ResultSource
	Centers     ports.CenterSource
	Publisher   ports.EventPublisher
	Clock       ports.Clock
	RecentLimit int
	TopLimit    int
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Results:     deps.Results,
		Centers:     deps.Centers,
		Clock:       deps.Clock,
		RecentLimit: deps.RecentLimit,
		TopLimit:    deps.TopLimit,
		Logger:      deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Analytics: service,
			Logger:    deps.Logger,
		},
		Service: service,
		Broadcaster: application.Broadcaster{
			Analytics: service,
			Publisher: deps.Publisher,
			Logger:    deps.Logger,
		},
	}
}
