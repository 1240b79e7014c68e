// Package domain defines the persistence models for solution submissions and
// items. These types are mapped with GORM and serialized as JSON by the HTTP
// layer; their JSON field names are part of the public API.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Solution is a submission of a solution link for a problem by a user.
// Exactly one Solution exists per natural key (ProblemID, Username); repeated
// submissions overwrite SolutionLink and UpdatedAt but never CreatedAt.
//
// Fields:
//   - DocID: document id derived from the natural key (see SolutionDocID).
//   - ProblemID: problem identifier, always stored as a string; indexed for
//     list-by-problem queries.
//   - Username: submitting user.
//   - SolutionLink: link to the submitted solution.
//   - CreatedAt: set on first write, immutable afterwards.
//   - UpdatedAt: refreshed on every write.
type Solution struct {
	DocID        string    `json:"-"            gorm:"column:doc_id;type:varchar(512);primaryKey"`
	ProblemID    string    `json:"problemId"    gorm:"column:problem_id;type:varchar(255);not null;index:idx_solutions_problem_created,priority:1"`
	Username     string    `json:"username"     gorm:"type:varchar(255);not null"`
	SolutionLink string    `json:"solutionLink" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"createdAt"    gorm:"not null;index:idx_solutions_problem_created,priority:2"`
	UpdatedAt    time.Time `json:"updatedAt"    gorm:"not null"`
}

// TableName returns the database table name for Solution.
func (Solution) TableName() string { return "solutions" }

// SolutionDocID builds the document id for a natural key.
func SolutionDocID(problemID, username string) string {
	return problemID + "_" + username
}

// SolutionSummary is the listing projection of a Solution.
type SolutionSummary struct {
	Username     string    `json:"username"`
	SolutionLink string    `json:"solutionLink"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Summary projects s onto its listing shape.
func (s Solution) Summary() SolutionSummary {
	return SolutionSummary{
		Username:     s.Username,
		SolutionLink: s.SolutionLink,
		CreatedAt:    s.CreatedAt,
	}
}

// Item is a generic record with a store-generated integer id. Items are
// read-only after creation.
//
// Data is an opaque JSON payload stored verbatim; it is NULL (and serialized
// as null) when the client did not send one.
type Item struct {
	ID        uint           `json:"id"        gorm:"primaryKey;autoIncrement"`
	Name      string         `json:"name"      gorm:"type:text;not null"`
	Data      datatypes.JSON `json:"data"`
	CreatedAt time.Time      `json:"createdAt" gorm:"not null;index"`
}

// TableName returns the database table name for Item.
func (Item) TableName() string { return "items" }
