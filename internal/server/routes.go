package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/pulse/internal/api/v1"
	"github.com/gosuda/pulse/internal/api/ws"
	"github.com/gosuda/pulse/internal/hitl"
	"github.com/gosuda/pulse/internal/store/postgres"
)

func registerAPIRoutes(api huma.API, store *postgres.Store, hub *ws.Hub, gate *hitl.Gate) {
	v1.RegisterEventRoutes(api, store, hub)
	v1.RegisterViewRoutes(api, store)
	v1.RegisterHITLRoutes(api, gate)
	v1.RegisterTranscriptRoutes(api)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/stream", hub.ServeStream)
}
