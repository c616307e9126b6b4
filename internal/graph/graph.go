// Package graph wraps the Store's neighborhood and container-scope
// graph traversal behind the relation-type filter parsing §4.6
// describes.
package graph

import (
	"context"

	"github.com/momo-run/momo/internal/apperr"
	"github.com/momo-run/momo/internal/models"
	"github.com/momo-run/momo/internal/store"
)

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Neighborhood returns the BFS-bounded graph around memoryID. An
// empty relationTypesRaw means no filter (every edge type allowed).
func (s *Service) Neighborhood(ctx context.Context, memoryID string, depth, maxNodes int, relationTypesRaw string) (*models.GraphResponse, error) {
	if memoryID == "" {
		return nil, apperr.Validation("memory id must not be empty")
	}
	if depth <= 0 {
		depth = 2
	}
	if maxNodes <= 0 {
		maxNodes = 50
	}

	relationTypes := models.ParseGraphEdgeTypes(relationTypesRaw)
	return s.store.GetGraphNeighborhood(ctx, memoryID, depth, maxNodes, relationTypes)
}

// Container returns the induced subgraph over a tag's most recently
// updated memories.
func (s *Service) Container(ctx context.Context, tag string, maxNodes int) (*models.GraphResponse, error) {
	if tag == "" {
		return nil, apperr.Validation("tag must not be empty")
	}
	if maxNodes <= 0 {
		maxNodes = 100
	}
	return s.store.GetContainerGraph(ctx, tag, maxNodes)
}
