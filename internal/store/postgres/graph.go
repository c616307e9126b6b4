package postgres

import (
	"context"

	"github.com/momo-run/momo/internal/apperr"
	"github.com/momo-run/momo/internal/models"
)

// GetGraphNeighborhood performs a BFS from memoryID over the
// memory-relation graph, bounded by depth hops and maxNodes total
// memory nodes, then attaches any document-source edges for the
// visited memories to the frontier without spending a hop on them —
// resolving the Open Question SPEC_FULL.md §D.3 decides explicitly.
func (s *Store) GetGraphNeighborhood(ctx context.Context, memoryID string, depth, maxNodes int, relationTypes map[models.GraphEdgeType]bool) (*models.GraphResponse, error) {
	resp := models.NewGraphResponse()

	visited := map[string]bool{memoryID: true}
	frontier := []string{memoryID}
	order := []string{memoryID}

	for hop := 0; hop < depth && len(order) < maxNodes; hop++ {
		if len(frontier) == 0 {
			break
		}
		edges, err := s.relationEdgesFrom(ctx, frontier)
		if err != nil {
			return nil, err
		}
		var next []string
		for _, e := range edges {
			if relationTypes != nil && len(relationTypes) > 0 && !relationTypes[e.Type] {
				continue
			}
			other := e.Target
			if visited[e.Source] && !visited[other] {
				if len(order) >= maxNodes {
					continue
				}
				visited[other] = true
				order = append(order, other)
				next = append(next, other)
			}
		}
		frontier = next
	}

	// Re-fetch edges among the final visited set (both directions),
	// filtered the same way, for the response.
	edgeSet, err := s.relationEdgesAmong(ctx, order)
	if err != nil {
		return nil, err
	}
	for _, e := range edgeSet {
		if relationTypes != nil && len(relationTypes) > 0 && !relationTypes[e.Type] {
			continue
		}
		resp.AddEdge(e)
	}

	memNodes, err := s.memoryNodes(ctx, order)
	if err != nil {
		return nil, err
	}
	for _, n := range memNodes {
		resp.AddNode(n)
	}

	if relationTypes == nil || relationTypes[models.GraphEdgeSources] {
		docNodes, docEdges, err := s.sourceDocumentsFor(ctx, order)
		if err != nil {
			return nil, err
		}
		for _, n := range docNodes {
			resp.AddNode(n)
		}
		for _, e := range docEdges {
			resp.AddEdge(e)
		}
	}

	return resp, nil
}

// GetContainerGraph returns the induced subgraph over the most
// recently updated memories of a single tag.
func (s *Store) GetContainerGraph(ctx context.Context, tag string, maxNodes int) (*models.GraphResponse, error) {
	resp := models.NewGraphResponse()

	rows, err := s.pool.Query(ctx, `
SELECT id FROM memories
WHERE container_tag=$1 AND is_latest=true AND is_forgotten=false
ORDER BY updated_at DESC LIMIT $2`, tag, maxNodes)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, apperr.Storage(err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err)
	}

	nodes, err := s.memoryNodes(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		resp.AddNode(n)
	}

	edges, err := s.relationEdgesAmong(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		resp.AddEdge(e)
	}

	docNodes, docEdges, err := s.sourceDocumentsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, n := range docNodes {
		resp.AddNode(n)
	}
	for _, e := range docEdges {
		resp.AddEdge(e)
	}

	return resp, nil
}

func (s *Store) relationEdgesFrom(ctx context.Context, ids []string) ([]models.GraphEdge, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `SELECT id, memory_relations FROM memories WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer rows.Close()

	var out []models.GraphEdge
	for rows.Next() {
		var id string
		var relations []byte
		if err := rows.Scan(&id, &relations); err != nil {
			return nil, apperr.Storage(err)
		}
		out = append(out, decodeRelationEdges(id, relations)...)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err)
	}
	return out, nil
}

func (s *Store) relationEdgesAmong(ctx context.Context, ids []string) ([]models.GraphEdge, error) {
	all, err := s.relationEdgesFrom(ctx, ids)
	if err != nil {
		return nil, err
	}
	memberSet := map[string]bool{}
	for _, id := range ids {
		memberSet[id] = true
	}
	var out []models.GraphEdge
	for _, e := range all {
		if memberSet[e.Source] && memberSet[e.Target] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) memoryNodes(ctx context.Context, ids []string) ([]models.GraphNode, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
SELECT id, content, memory_type, version, is_latest, container_tag FROM memories WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer rows.Close()

	var out []models.GraphNode
	for rows.Next() {
		var id, content, memType string
		var version int
		var isLatest bool
		var containerTag *string
		if err := rows.Scan(&id, &content, &memType, &version, &isLatest, &containerTag); err != nil {
			return nil, apperr.Storage(err)
		}
		out = append(out, models.GraphNode{
			ID:   id,
			Type: models.GraphNodeMemory,
			Metadata: map[string]any{
				"content":      content,
				"memoryType":   memType,
				"version":      version,
				"isLatest":     isLatest,
				"containerTag": containerTag,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err)
	}
	return out, nil
}

func (s *Store) sourceDocumentsFor(ctx context.Context, memoryIDs []string) ([]models.GraphNode, []models.GraphEdge, error) {
	if len(memoryIDs) == 0 {
		return nil, nil, nil
	}
	rows, err := s.pool.Query(ctx, `
SELECT DISTINCT ms.memory_id, d.id, d.title, d.doc_type, d.status, d.url
FROM memory_sources ms
JOIN documents d ON d.id = ms.document_id
WHERE ms.memory_id = ANY($1)`, memoryIDs)
	if err != nil {
		return nil, nil, apperr.Storage(err)
	}
	defer rows.Close()

	seen := map[string]bool{}
	var nodes []models.GraphNode
	var edges []models.GraphEdge
	for rows.Next() {
		var memoryID, docID, docType, status string
		var title, url *string
		if err := rows.Scan(&memoryID, &docID, &title, &docType, &status, &url); err != nil {
			return nil, nil, apperr.Storage(err)
		}
		if !seen[docID] {
			seen[docID] = true
			nodes = append(nodes, models.GraphNode{
				ID:   docID,
				Type: models.GraphNodeDocument,
				Metadata: map[string]any{
					"title":  title,
					"docType": docType,
					"status": status,
					"url":    url,
				},
			})
		}
		edges = append(edges, models.GraphEdge{Source: memoryID, Target: docID, Type: models.GraphEdgeSources})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperr.Storage(err)
	}
	return nodes, edges, nil
}

func decodeRelationEdges(sourceID string, raw []byte) []models.GraphEdge {
	if len(raw) == 0 {
		return nil
	}
	m := map[string]string{}
	if err := jsonUnmarshalLoose(raw, &m); err != nil {
		return nil
	}
	out := make([]models.GraphEdge, 0, len(m))
	for target, relType := range m {
		edgeType := models.GraphEdgeRelatesTo
		switch relType {
		case "updates":
			edgeType = models.GraphEdgeUpdates
		case "extends":
			edgeType = models.GraphEdgeRelatesTo
		case "derives":
			edgeType = models.GraphEdgeDerivedFrom
		}
		out = append(out, models.GraphEdge{Source: sourceID, Target: target, Type: edgeType})
	}
	return out
}
