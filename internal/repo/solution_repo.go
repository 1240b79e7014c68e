// Package repo: solution documents in the relational store.
//
// SQLSolutions keeps solution submissions in the "solutions" table, keyed by
// the document id derived from (problemId, username). Writes are a single
// INSERT ... ON CONFLICT(doc_id) DO UPDATE that never touches created_at, so
// concurrent submissions for the same key cannot overwrite the original
// creation time.
package repo

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-crud-backend/internal/domain"
)

// SQLSolutions is the GORM-backed solution document store.
type SQLSolutions struct {
	DB *gorm.DB
}

// NewSQLSolutions returns a document store over db. The solutions table must
// exist (see AutoMigrate).
func NewSQLSolutions(db *gorm.DB) *SQLSolutions {
	return &SQLSolutions{DB: db}
}

// GetSolution returns the document with docID, or ErrNotFound.
func (s *SQLSolutions) GetSolution(ctx context.Context, docID string) (*domain.Solution, error) {
	var sol domain.Solution
	err := s.DB.WithContext(ctx).Where("doc_id = ?", docID).First(&sol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "solutions: get")
	}
	return &sol, nil
}

// PutSolution inserts sol, or updates every field of the existing document
// except CreatedAt.
func (s *SQLSolutions) PutSolution(ctx context.Context, sol *domain.Solution) error {
	row := *sol
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "doc_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"problem_id", "username", "solution_link", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return errors.Wrap(err, "solutions: upsert")
	}
	return nil
}

// ListSolutions returns the documents for problemID, newest first. Ties keep
// the store's native order.
func (s *SQLSolutions) ListSolutions(ctx context.Context, problemID string) ([]domain.Solution, error) {
	out := []domain.Solution{}
	err := s.DB.WithContext(ctx).
		Where("problem_id = ?", problemID).
		Order("created_at desc").
		Find(&out).Error
	if err != nil {
		return nil, errors.Wrap(err, "solutions: list")
	}
	return out, nil
}
