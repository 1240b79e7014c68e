// Package services – SolutionService
//
// SolutionService owns the document-style surface: one record per
// (problemId, username), upserted so the first submission's createdAt
// survives every later resubmission.
//
// Observability: public methods open an OpenTelemetry span carrying the
// problem id.
package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-crud-backend/internal/domain"
	"github.com/tbourn/go-crud-backend/internal/repo"
)

// SolutionStore is the document store behind the solutions surface.
// repo.SQLSolutions and repo.RedisSolutions both satisfy it.
type SolutionStore interface {
	GetSolution(ctx context.Context, docID string) (*domain.Solution, error)
	PutSolution(ctx context.Context, sol *domain.Solution) error
	ListSolutions(ctx context.Context, problemID string) ([]domain.Solution, error)
}

// SolutionService implements upsert and list for solution submissions.
type SolutionService struct {
	Store SolutionStore
	Now   func() time.Time
}

func (s *SolutionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Submit upserts in and returns the record as persisted. An existing
// record keeps its createdAt; updatedAt is always the current time.
func (s *SolutionService) Submit(ctx context.Context, in SolutionInput) (*domain.Solution, error) {
	tr := otel.Tracer("services/SolutionService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(
			attribute.String("problem.id", in.ProblemID),
			attribute.String("user.name", in.Username),
		),
	)
	defer span.End()

	docID := domain.SolutionDocID(in.ProblemID, in.Username)
	now := s.now()

	createdAt := now
	existing, err := s.Store.GetSolution(ctx, docID)
	switch {
	case err == nil:
		createdAt = existing.CreatedAt
	case !errors.Is(err, repo.ErrNotFound):
		span.RecordError(err)
		return nil, Store(err)
	}

	sol := &domain.Solution{
		DocID:        docID,
		ProblemID:    in.ProblemID,
		Username:     in.Username,
		SolutionLink: in.SolutionLink,
		CreatedAt:    createdAt,
		UpdatedAt:    now,
	}
	if err := s.Store.PutSolution(ctx, sol); err != nil {
		span.RecordError(err)
		return nil, Store(err)
	}

	saved, err := s.Store.GetSolution(ctx, docID)
	if err != nil {
		// A record we just wrote must be readable.
		span.RecordError(err)
		return nil, Store(errors.Wrap(err, "solutions: re-read after upsert"))
	}
	return saved, nil
}

// ListByProblem returns the summaries for problemID, newest first.
func (s *SolutionService) ListByProblem(ctx context.Context, problemID string) ([]domain.SolutionSummary, error) {
	tr := otel.Tracer("services/SolutionService")
	ctx, span := tr.Start(ctx, "ListByProblem",
		trace.WithAttributes(attribute.String("problem.id", problemID)),
	)
	defer span.End()

	sols, err := s.Store.ListSolutions(ctx, problemID)
	if err != nil {
		span.RecordError(err)
		return nil, Store(err)
	}
	out := make([]domain.SolutionSummary, 0, len(sols))
	for i := range sols {
		out = append(out, sols[i].Summary())
	}
	span.SetAttributes(attribute.Int("result.count", len(out)))
	return out, nil
}
