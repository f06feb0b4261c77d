package rest

import "net/http"

// RouterDeps groups the handlers needed to build the HTTP mux.
type RouterDeps struct {
	Sync   *SyncHandler
	Admin  *AdminHandler
	Health *HealthHandler
}

// NewRouter builds the route table. Middleware is applied by the caller.
func NewRouter(deps RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", deps.Health.Live)
	mux.HandleFunc("GET /ready", deps.Health.Ready)
	mux.HandleFunc("GET /health", deps.Health.Health)

	mux.HandleFunc("POST /v1/sync", deps.Sync.Submit)
	mux.HandleFunc("GET /v1/sync/{sync_id}", deps.Sync.Status)

	mux.HandleFunc("GET /v1/admin/sync", deps.Admin.ListOperations)

	return mux
}
