package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/storage"
	"github.com/opsnet/unet/pkg/value"
)

func TestStore_CreateAndGetNode(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateNode(ctx, models.Node{Name: "core-rtr-1", Model: "asr9k", Lifecycle: models.LifecycleLive})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, ok, err := s.GetNode(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "core-rtr-1", got.Name)
}

func TestStore_RequireNode_NotFound(t *testing.T) {
	s := New()
	_, err := s.RequireNode(context.Background(), "missing")
	require.Error(t, err)
	var notFound *storage.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestStore_ListNodes_FilterSortPaginate(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, name := range []string{"edge-3", "edge-1", "core-1", "edge-2"} {
		_, err := s.CreateNode(ctx, models.Node{Name: name, Model: "x", Vendor: "cisco", Lifecycle: models.LifecycleLive})
		require.NoError(t, err)
	}

	page, err := s.ListNodes(ctx, storage.QueryOptions{
		Filters: []storage.Filter{{Field: "name", Operation: storage.OpStartsWith, Value: storage.StringValue("edge")}},
		Sorts:   []storage.Sort{{Field: "name", Direction: storage.Ascending}},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "edge-1", page.Items[0].Name)
	assert.Equal(t, "edge-2", page.Items[1].Name)
	assert.Equal(t, "edge-3", page.Items[2].Name)
	assert.Equal(t, int64(3), page.TotalCount)
}

func TestStore_ListNodes_Pagination(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := s.CreateNode(ctx, models.Node{Name: string(rune('a' + i)), Model: "x", Lifecycle: models.LifecyclePlanned})
		require.NoError(t, err)
	}

	page, err := s.ListNodes(ctx, storage.QueryOptions{
		Sorts:      []storage.Sort{{Field: "name", Direction: storage.Ascending}},
		Pagination: &storage.PageRequest{Limit: 2, Offset: 2},
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(5), page.TotalCount)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrevious)
}

func TestStore_ListNodes_UnknownFieldIsValidationError(t *testing.T) {
	s := New()
	_, err := s.ListNodes(context.Background(), storage.QueryOptions{
		Filters: []storage.Filter{{Field: "nonexistent", Operation: storage.OpEquals, Value: storage.StringValue("x")}},
	})
	require.Error(t, err)
	var verr *storage.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestStore_UpdateNodeCustomData_MergesLastWriteWinsPerLeaf(t *testing.T) {
	s := New()
	ctx := context.Background()
	created, err := s.CreateNode(ctx, models.Node{
		Name:  "rtr1",
		Model: "x",
		CustomData: value.Map(map[string]value.Value{
			"tags": value.Map(map[string]value.Value{"a": value.String("1"), "b": value.String("2")}),
		}),
	})
	require.NoError(t, err)

	patch := value.Map(map[string]value.Value{
		"tags": value.Map(map[string]value.Value{"b": value.String("overwritten")}),
	})
	require.NoError(t, s.UpdateNodeCustomData(ctx, created.ID, patch))

	got, _, err := s.GetNode(ctx, created.ID)
	require.NoError(t, err)
	tags, ok := got.CustomData.Get("tags")
	require.True(t, ok)
	a, _ := tags.Get("a")
	b, _ := tags.Get("b")
	av, _ := a.AsString()
	bv, _ := b.AsString()
	assert.Equal(t, "1", av)
	assert.Equal(t, "overwritten", bv)
}

func TestStore_BatchCreateNodes_StrictRollsBackOnFailure(t *testing.T) {
	s := New()
	ctx := context.Background()
	nodes := []models.Node{
		{Name: "ok-1", Model: "x", Lifecycle: models.LifecycleLive},
		{Name: "", Model: "x", Lifecycle: models.LifecycleLive}, // invalid name
	}
	result, err := s.BatchCreateNodes(ctx, nodes, storage.BatchStrict)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ErrorCount)

	list, err := s.ListNodes(ctx, storage.QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestStore_BatchCreateNodes_BestEffortKeepsSuccesses(t *testing.T) {
	s := New()
	ctx := context.Background()
	nodes := []models.Node{
		{Name: "ok-1", Model: "x", Lifecycle: models.LifecycleLive},
		{Name: "", Model: "x", Lifecycle: models.LifecycleLive},
	}
	result, err := s.BatchCreateNodes(ctx, nodes, storage.BatchBestEffort)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.ErrorCount)

	list, err := s.ListNodes(ctx, storage.QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestStore_NodesForPolicyEvaluation_OnlyLiveNodes(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, err := s.CreateNode(ctx, models.Node{Name: "live-1", Model: "x", Lifecycle: models.LifecycleLive})
	require.NoError(t, err)
	_, err = s.CreateNode(ctx, models.Node{Name: "planned-1", Model: "x", Lifecycle: models.LifecyclePlanned})
	require.NoError(t, err)

	eligible, err := s.NodesForPolicyEvaluation(ctx)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, "live-1", eligible[0].Name)
}

func TestStore_ListNodes_IsNullMatchesAbsentOptionalField(t *testing.T) {
	s := New()
	ctx := context.Background()
	locID := "loc-1"
	_, err := s.CreateNode(ctx, models.Node{Name: "no-location", Model: "x"})
	require.NoError(t, err)
	_, err = s.CreateNode(ctx, models.Node{Name: "with-location", Model: "x", LocationID: &locID})
	require.NoError(t, err)

	page, err := s.ListNodes(ctx, storage.QueryOptions{
		Filters: []storage.Filter{{Field: "location_id", Operation: storage.OpIsNull}},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "no-location", page.Items[0].Name)

	page, err = s.ListNodes(ctx, storage.QueryOptions{
		Filters: []storage.Filter{{Field: "location_id", Operation: storage.OpIsNotNull}},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "with-location", page.Items[0].Name)
}

func TestStore_LocationCycleDetection(t *testing.T) {
	s := New()
	ctx := context.Background()
	root, err := s.CreateLocation(ctx, models.Location{Name: "site-a", LocationType: "site", Path: "site-a"})
	require.NoError(t, err)

	child, err := s.CreateLocation(ctx, models.Location{Name: "rack-1", LocationType: "rack", ParentID: &root.ID, Path: "site-a/rack-1"})
	require.NoError(t, err)

	root.ParentID = &child.ID
	_, err = s.UpdateLocation(ctx, root)
	require.Error(t, err)
}
