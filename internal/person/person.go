// Package person exposes the people resource: storage backends, the
// merge-patch service and its HTTP handler.
package person

import (
	"log/slog"

	"personpatch/internal/person/handler"
	"personpatch/internal/person/service"
)

// Service orchestrates person reads, creation and merge-patch updates.
type Service = service.Service

// Handler wires HTTP endpoints to the person service.
type Handler = handler.Handler

// NewService constructs the person service over a store.
func NewService(store service.Store, opts ...service.Option) *Service {
	return service.New(store, opts...)
}

// NewHandler constructs the HTTP handler for /people routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
