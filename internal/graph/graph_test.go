package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momo-run/momo/internal/models"
	"github.com/momo-run/momo/internal/storetest"
)

// capturingStore records the arguments passed to the two graph
// traversal methods, embedding the in-memory fake for everything
// else.
type capturingStore struct {
	*storetest.Store

	neighborhoodMemoryID string
	neighborhoodDepth     int
	neighborhoodMaxNodes  int
	neighborhoodTypes     map[models.GraphEdgeType]bool

	containerTag      string
	containerMaxNodes int
}

func (c *capturingStore) GetGraphNeighborhood(_ context.Context, memoryID string, depth, maxNodes int, relationTypes map[models.GraphEdgeType]bool) (*models.GraphResponse, error) {
	c.neighborhoodMemoryID = memoryID
	c.neighborhoodDepth = depth
	c.neighborhoodMaxNodes = maxNodes
	c.neighborhoodTypes = relationTypes
	return &models.GraphResponse{}, nil
}

func (c *capturingStore) GetContainerGraph(_ context.Context, tag string, maxNodes int) (*models.GraphResponse, error) {
	c.containerTag = tag
	c.containerMaxNodes = maxNodes
	return &models.GraphResponse{}, nil
}

func TestNeighborhood_RejectsEmptyID(t *testing.T) {
	svc := NewService(&capturingStore{Store: storetest.New()})

	_, err := svc.Neighborhood(context.Background(), "", 2, 50, "")

	assert.Error(t, err)
}

func TestNeighborhood_AppliesDefaults(t *testing.T) {
	st := &capturingStore{Store: storetest.New()}
	svc := NewService(st)

	_, err := svc.Neighborhood(context.Background(), "m1", 0, 0, "")

	require.NoError(t, err)
	assert.Equal(t, 2, st.neighborhoodDepth)
	assert.Equal(t, 50, st.neighborhoodMaxNodes)
}

func TestNeighborhood_ParsesRelationTypeFilter(t *testing.T) {
	st := &capturingStore{Store: storetest.New()}
	svc := NewService(st)

	_, err := svc.Neighborhood(context.Background(), "m1", 3, 10, "updates")

	require.NoError(t, err)
	assert.True(t, st.neighborhoodTypes[models.GraphEdgeUpdates])
	assert.False(t, st.neighborhoodTypes[models.GraphEdgeRelatesTo])
}

func TestContainer_RejectsEmptyTag(t *testing.T) {
	svc := NewService(&capturingStore{Store: storetest.New()})

	_, err := svc.Container(context.Background(), "", 50)

	assert.Error(t, err)
}

func TestContainer_AppliesDefaultMaxNodes(t *testing.T) {
	st := &capturingStore{Store: storetest.New()}
	svc := NewService(st)

	_, err := svc.Container(context.Background(), "work", 0)

	require.NoError(t, err)
	assert.Equal(t, 100, st.containerMaxNodes)
	assert.Equal(t, "work", st.containerTag)
}
