// Package models holds the persisted entities and wire DTOs of the
// memory service: documents, chunks, memories, container tags,
// cached profiles, and the enumerations shared across them.
package models

import (
	"strings"
	"time"
)

// Metadata is an arbitrary string-keyed JSON document attached to
// documents, memories and container tags.
type Metadata map[string]any

// Pagination describes a page of a list response.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
}

// NewPagination computes TotalPages via ceiling division, matching
// the reference div_ceil(total_items, limit) behavior.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{CurrentPage: page, Limit: limit, TotalItems: total, TotalPages: pages}
}

// DocumentType is a closed enumeration of ingestible content kinds.
type DocumentType string

const (
	DocumentTypeText       DocumentType = "text"
	DocumentTypePDF        DocumentType = "pdf"
	DocumentTypeWebpage    DocumentType = "webpage"
	DocumentTypeTweet      DocumentType = "tweet"
	DocumentTypeGoogleDoc  DocumentType = "google_doc"
	DocumentTypeGoogleSlide DocumentType = "google_slide"
	DocumentTypeGoogleSheet DocumentType = "google_sheet"
	DocumentTypeNotionDoc  DocumentType = "notion_doc"
	DocumentTypeOneDrive   DocumentType = "onedrive"
	DocumentTypeImage      DocumentType = "image"
	DocumentTypeVideo      DocumentType = "video"
	DocumentTypeAudio      DocumentType = "audio"
	DocumentTypeMarkdown   DocumentType = "markdown"
	DocumentTypeCode       DocumentType = "code"
	DocumentTypeCSV        DocumentType = "csv"
	DocumentTypeDOCX       DocumentType = "docx"
	DocumentTypePPTX       DocumentType = "pptx"
	DocumentTypeXLSX       DocumentType = "xlsx"
	DocumentTypeUnknown    DocumentType = "unknown"
)

// ParseDocumentType accepts a handful of lenient aliases and falls
// back to DocumentTypeUnknown rather than erroring, matching the
// original's lenient DocumentType::from_str.
func ParseDocumentType(s string) DocumentType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return DocumentTypeText
	case "pdf":
		return DocumentTypePDF
	case "webpage", "web":
		return DocumentTypeWebpage
	case "tweet":
		return DocumentTypeTweet
	case "google_doc":
		return DocumentTypeGoogleDoc
	case "google_slide":
		return DocumentTypeGoogleSlide
	case "google_sheet":
		return DocumentTypeGoogleSheet
	case "notion_doc":
		return DocumentTypeNotionDoc
	case "onedrive":
		return DocumentTypeOneDrive
	case "image":
		return DocumentTypeImage
	case "video":
		return DocumentTypeVideo
	case "audio":
		return DocumentTypeAudio
	case "markdown", "md":
		return DocumentTypeMarkdown
	case "code":
		return DocumentTypeCode
	case "csv":
		return DocumentTypeCSV
	case "docx":
		return DocumentTypeDOCX
	case "pptx":
		return DocumentTypePPTX
	case "xlsx":
		return DocumentTypeXLSX
	default:
		return DocumentTypeUnknown
	}
}

// ProcessingStatus tracks a document's position in the ingestion
// pipeline.
type ProcessingStatus string

const (
	ProcessingStatusUnknown    ProcessingStatus = "unknown"
	ProcessingStatusQueued     ProcessingStatus = "queued"
	ProcessingStatusExtracting ProcessingStatus = "extracting"
	ProcessingStatusChunking   ProcessingStatus = "chunking"
	ProcessingStatusEmbedding  ProcessingStatus = "embedding"
	ProcessingStatusIndexing   ProcessingStatus = "indexing"
	ProcessingStatusDone       ProcessingStatus = "done"
	ProcessingStatusFailed     ProcessingStatus = "failed"
)

// ParseProcessingStatus is strict: an unrecognised token is reported
// to the caller rather than silently coerced.
func ParseProcessingStatus(s string) (ProcessingStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unknown":
		return ProcessingStatusUnknown, true
	case "queued":
		return ProcessingStatusQueued, true
	case "extracting":
		return ProcessingStatusExtracting, true
	case "chunking":
		return ProcessingStatusChunking, true
	case "embedding":
		return ProcessingStatusEmbedding, true
	case "indexing":
		return ProcessingStatusIndexing, true
	case "done":
		return ProcessingStatusDone, true
	case "failed":
		return ProcessingStatusFailed, true
	default:
		return "", false
	}
}

// MemoryType is the closed enumeration of memory kinds; episodes are
// the only kind subject to relevance decay.
type MemoryType string

const (
	MemoryTypeFact       MemoryType = "fact"
	MemoryTypePreference MemoryType = "preference"
	MemoryTypeEpisode    MemoryType = "episode"
)

func ParseMemoryType(s string) (MemoryType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fact":
		return MemoryTypeFact, true
	case "preference":
		return MemoryTypePreference, true
	case "episode":
		return MemoryTypeEpisode, true
	default:
		return "", false
	}
}

// MemoryRelationType labels an edge recorded on a Memory's
// MemoryRelations map; distinct from the wire-facing GraphEdgeType.
type MemoryRelationType string

const (
	MemoryRelationUpdates MemoryRelationType = "updates"
	MemoryRelationExtends MemoryRelationType = "extends"
	MemoryRelationDerives MemoryRelationType = "derives"
)

func ParseMemoryRelationType(s string) (MemoryRelationType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "updates":
		return MemoryRelationUpdates, true
	case "extends":
		return MemoryRelationExtends, true
	case "derives":
		return MemoryRelationDerives, true
	default:
		return "", false
	}
}

// Now is overridden in tests that need a fixed clock; production
// code always calls time.Now().UTC() through this indirection,
// truncated to second precision to match the persisted granularity.
var Now = func() time.Time { return time.Now().UTC().Truncate(time.Second) }
