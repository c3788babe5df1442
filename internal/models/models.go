package models

import (
	"time"
)

// Document represents one uploaded file end-to-end: the metadata record
// created at upload time, mutated by the processing pipeline, and read by
// the dashboard for status display. The document store owns persistence;
// the pipeline never deletes a document.
type Document struct {
	ID                string    `db:"id" json:"id"`
	OwnerID           string    `db:"owner_id" json:"ownerId"`
	OriginalName      string    `db:"original_name" json:"originalName"`
	MimeType          string    `db:"mime_type" json:"mimeType"`
	SizeBytes         int64     `db:"size_bytes" json:"sizeBytes"`
	OriginalLocation  string    `db:"original_location" json:"originalLocation,omitempty"`
	ProcessedLocation string    `db:"processed_location" json:"processedLocation,omitempty"`
	ExtractedText     string    `db:"extracted_text" json:"extractedText,omitempty"`
	Summary           string    `db:"summary" json:"summary,omitempty"`
	Status            string    `db:"status" json:"status"`
	ErrorMessage      string    `db:"error_message" json:"errorMessage,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}

// QueueItem is one pending unit of work as persisted in the queue store.
// Items are created at enqueue time and never mutated in place; a consumed
// item ends up on the completed or failed history list for observability.
type QueueItem struct {
	DocumentID   string `json:"documentId"`
	OwnerID      string `json:"ownerId"`
	Timestamp    int64  `json:"timestamp"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// QueueCounters approximates queue depth and throughput. The counters are
// for status reporting only and may drift transiently if a worker crashes
// between a dequeue and the matching counter update.
type QueueCounters struct {
	Waiting   int64     `json:"waiting"`
	Active    int64     `json:"active"`
	Completed int64     `json:"completed"`
	Failed    int64     `json:"failed"`
	Timestamp time.Time `json:"timestamp"`
}
