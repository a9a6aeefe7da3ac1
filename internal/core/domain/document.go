package domain

import (
	"fmt"
	"time"
)

// Stage identifies a content view of the database.
type Stage string

// Content stages.
const (
	// StageDraft is the editing view.
	StageDraft Stage = "draft"

	// StageLive is the published, publicly visible view.
	StageLive Stage = "live"
)

// IsValid returns true if the stage is recognised.
func (s Stage) IsValid() bool {
	return s == StageDraft || s == StageLive
}

// Document is a searchable record as read from the content database.
// It is the unit handed to the indexing pipeline.
type Document struct {
	// ID is the unique identifier on the search backend.
	ID string

	// RecordID is the primary key in the content database.
	RecordID int64

	// SourceClass is the record class name.
	SourceClass string

	// Stage is the content stage the record was read from.
	Stage Stage

	// LastEdited is when the record last changed.
	LastEdited time.Time

	// Data holds record property values keyed by property name.
	Data map[string]any
}

// DocumentID builds the backend id for a record.
func DocumentID(class string, recordID int64) string {
	return fmt.Sprintf("%s_%d", class, recordID)
}

// IndexMethod is the mutation applied to documents on the backend.
type IndexMethod string

// Index methods.
const (
	MethodAdd    IndexMethod = "add"
	MethodRemove IndexMethod = "remove"
)
