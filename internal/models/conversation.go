package models

// ConversationMessage is one turn of a conversation submitted for
// memory extraction.
type ConversationMessage struct {
	Role    string `json:"role" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// ConversationIngestRequest is the body of POST /conversations:ingest.
type ConversationIngestRequest struct {
	Messages     []ConversationMessage `json:"messages" validate:"required,min=1,dive"`
	ContainerTag string                `json:"containerTag" validate:"required"`
}

// ExtractedMemoryCandidate is a single candidate the Extractor
// produced, prior to contradiction checking and dedup.
type ExtractedMemoryCandidate struct {
	Content                string
	MemoryType             string
	Confidence             float64
	Context                *string
	PotentialContradiction bool
}

// ExtractionResult is the Extractor's output: candidate memories plus
// the verbatim source content they were extracted from.
type ExtractionResult struct {
	Memories      []ExtractedMemoryCandidate
	SourceContent string
}

// ConversationIngestResponse reports how many memories survived
// extraction, contradiction tagging and dedup.
type ConversationIngestResponse struct {
	MemoriesExtracted int      `json:"memoriesExtracted"`
	MemoryIDs         []string `json:"memoryIds"`
}
