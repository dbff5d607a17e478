package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	mux.Handle("GET /health", chain(http.HandlerFunc(h.Health)))
	mux.Handle("GET /tasks", chain(http.HandlerFunc(h.ListTasks)))
	mux.Handle("GET /tasks/{id}", chain(http.HandlerFunc(h.GetTask)))
}
