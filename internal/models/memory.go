package models

import (
	"math"
	"time"
)

// Memory is an atomic piece of knowledge, immutable once written:
// updates append a new version row and flip is_latest on the
// predecessor rather than mutating content in place.
type Memory struct {
	ID               string                        `json:"id"`
	Content          string                        `json:"content"`
	SpaceID          string                        `json:"spaceId"`
	ContainerTag     *string                        `json:"containerTag,omitempty"`
	MemoryType       MemoryType                    `json:"memoryType"`
	Version          int                           `json:"version"`
	IsLatest         bool                          `json:"isLatest"`
	ParentMemoryID   *string                        `json:"parentMemoryId,omitempty"`
	RootMemoryID     string                        `json:"rootMemoryId"`
	MemoryRelations  map[string]MemoryRelationType `json:"memoryRelations,omitempty"`
	SourceCount      int                           `json:"sourceCount"`
	IsInference      bool                          `json:"isInference"`
	IsForgotten      bool                          `json:"isForgotten"`
	IsStatic         bool                          `json:"isStatic"`
	ForgetAfter      *time.Time                    `json:"forgetAfter,omitempty"`
	ForgetReason     *string                        `json:"forgetReason,omitempty"`
	LastAccessed     *time.Time                    `json:"lastAccessed,omitempty"`
	Confidence       *float64                       `json:"confidence,omitempty"`
	Metadata         Metadata                      `json:"metadata"`
	Embedding        []float32                     `json:"-"`
	CreatedAt        time.Time                     `json:"createdAt"`
	UpdatedAt        time.Time                     `json:"updatedAt"`
}

// NewMemory mints a root memory: version 1, latest, rooted at
// itself.
func NewMemory(id, content, spaceID string, containerTag *string, memType MemoryType) *Memory {
	now := Now()
	return &Memory{
		ID:           id,
		Content:      content,
		SpaceID:      spaceID,
		ContainerTag: containerTag,
		MemoryType:   memType,
		Version:      1,
		IsLatest:     true,
		RootMemoryID: id,
		SourceCount:  1,
		Metadata:     Metadata{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// MemoryMatch is a memory returned from a similarity search.
type MemoryMatch struct {
	Memory
	Similarity float32 `json:"similarity"`
}

// EpisodeDecayCandidate is the narrow projection the decay manager
// needs: enough to compute relevance without loading the full row.
type EpisodeDecayCandidate struct {
	ID           string
	ContainerTag *string
	LastAccessed *time.Time
	CreatedAt    time.Time
}

// EpisodeRelevance computes the sigmoid decay relevance for an
// episode memory. daysSinceAccess is clamped to >= 0; decayFactor is
// clamped to [0.01, 0.99] before deriving the steepness constant so
// the sigmoid never hits its pole.
func EpisodeRelevance(daysSinceAccess, decayDays, decayFactor float64) float64 {
	if daysSinceAccess <= 0 {
		return 1.0
	}
	clampedFactor := decayFactor
	if clampedFactor < 0.01 {
		clampedFactor = 0.01
	}
	if clampedFactor > 0.99 {
		clampedFactor = 0.99
	}
	if decayDays <= 0 {
		decayDays = 1
	}
	k := -math.Log(1/clampedFactor-1) / decayDays
	return 1 / (1 + math.Exp((daysSinceAccess-decayDays)*k))
}
