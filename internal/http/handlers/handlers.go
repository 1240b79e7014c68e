// Package handlers: service contracts and wiring.
//
// Handlers are transport-thin: they run the validation layer on the decoded
// body or path, call a service, and hand the result to the envelope builder.
// Every failure goes through Abort.
package handlers

import (
	"context"
	"time"

	"github.com/tbourn/go-crud-backend/internal/domain"
	"github.com/tbourn/go-crud-backend/internal/services"
)

// SolutionService is the engine behind the solutions surface.
//
// Implementations must be safe for concurrent use and honour ctx.
type SolutionService interface {
	// Submit upserts a submission, preserving the original createdAt.
	Submit(ctx context.Context, in services.SolutionInput) (*domain.Solution, error)
	// ListByProblem returns summaries for problemID, newest first.
	ListByProblem(ctx context.Context, problemID string) ([]domain.SolutionSummary, error)
}

// ItemService is the engine behind the items surface.
//
// Implementations must be safe for concurrent use and honour ctx.
type ItemService interface {
	// Create persists an item; idemKey may be empty.
	Create(ctx context.Context, in services.ItemInput, idemKey string) (*domain.Item, bool, error)
	// List returns all items, newest first.
	List(ctx context.Context) ([]domain.Item, error)
	// Get returns one item or a not-found error.
	Get(ctx context.Context, id uint) (*domain.Item, error)
}

// Handlers groups the HTTP endpoints of both surfaces.
type Handlers struct {
	solutions   SolutionService
	items       ItemService
	environment string
	started     time.Time
}

// New binds handlers to their services. environment is reported by Health.
func New(solutions SolutionService, items ItemService, environment string) *Handlers {
	return &Handlers{
		solutions:   solutions,
		items:       items,
		environment: environment,
		started:     now(),
	}
}
