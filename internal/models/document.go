package models

import "time"

// Document is a unit of ingested content, mutated only by the
// ingestion pipeline once created.
type Document struct {
	ID             string           `json:"id"`
	CustomID       *string          `json:"customId,omitempty"`
	ConnectionID   *string          `json:"connectionId,omitempty"`
	Title          *string          `json:"title,omitempty"`
	Content        *string          `json:"content,omitempty"`
	Summary        *string          `json:"summary,omitempty"`
	URL            *string          `json:"url,omitempty"`
	Source         *string          `json:"source,omitempty"`
	Type           DocumentType     `json:"type"`
	Status         ProcessingStatus `json:"status"`
	Metadata       Metadata         `json:"metadata"`
	ContainerTags  []string         `json:"containerTags"`
	ChunkCount     int              `json:"chunkCount"`
	TokenCount     *int             `json:"tokenCount,omitempty"`
	WordCount      *int             `json:"wordCount,omitempty"`
	ErrorMessage   *string          `json:"errorMessage,omitempty"`
	ShouldLLMFilter bool            `json:"shouldLlmFilter,omitempty"`
	FilterPrompt   *string          `json:"filterPrompt,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// NewDocument builds a fresh, queued document shell for id.
func NewDocument(id string) *Document {
	now := Now()
	return &Document{
		ID:            id,
		Type:          DocumentTypeText,
		Status:        ProcessingStatusQueued,
		Metadata:      Metadata{},
		ContainerTags: []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// DocumentSummary is the trimmed projection returned by list
// endpoints — it drops content, summary, url and the processing
// counters a caller rarely needs for a listing.
type DocumentSummary struct {
	ID            string           `json:"id"`
	CustomID      *string          `json:"customId,omitempty"`
	Title         *string          `json:"title,omitempty"`
	Type          DocumentType     `json:"type"`
	Status        ProcessingStatus `json:"status"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	Metadata      Metadata         `json:"metadata"`
	ContainerTags []string         `json:"containerTags"`
}

func NewDocumentSummary(d *Document) DocumentSummary {
	return DocumentSummary{
		ID:            d.ID,
		CustomID:      d.CustomID,
		Title:         d.Title,
		Type:          d.Type,
		Status:        d.Status,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		Metadata:      d.Metadata,
		ContainerTags: d.ContainerTags,
	}
}

// DocumentFilter describes a list_documents query.
type DocumentFilter struct {
	ContainerTags []string
	Page          int
	Limit         int
	Sort          string // created_at | updated_at | title
	Order         string // asc | desc
}

// Clamp normalizes Page/Limit/Sort/Order to their allowed bounds
// (limit clamped to [1,100], default 20).
func (f *DocumentFilter) Clamp() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	switch f.Sort {
	case "created_at", "updated_at", "title":
	default:
		f.Sort = "created_at"
	}
	switch f.Order {
	case "asc", "desc":
	default:
		f.Order = "desc"
	}
}
