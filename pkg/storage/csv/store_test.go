package csv_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/storage"
	"github.com/opsnet/unet/pkg/storage/csv"
	"github.com/opsnet/unet/pkg/value"
)

func TestStore_CreateNode_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := csv.Open(dir)
	require.NoError(t, err)

	created, err := s.CreateNode(ctx, models.Node{
		Name: "core-rtr-1", Model: "asr9k", Lifecycle: models.LifecycleLive,
		CustomData: value.Map(map[string]value.Value{"tags": value.String("core")}),
	})
	require.NoError(t, err)

	reopened, err := csv.Open(dir)
	require.NoError(t, err)
	got, ok, err := reopened.GetNode(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "core-rtr-1", got.Name)
	tags, ok := got.CustomData.Get("tags")
	require.True(t, ok)
	tagVal, _ := tags.AsString()
	assert.Equal(t, "core", tagVal)
}

func TestStore_NodeWithNilOptionalFields_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, err := csv.Open(dir)
	require.NoError(t, err)

	_, err = s.CreateNode(ctx, models.Node{Name: "no-ip", Model: "x"})
	require.NoError(t, err)

	reopened, err := csv.Open(dir)
	require.NoError(t, err)
	page, err := reopened.ListNodes(ctx, storage.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Nil(t, page.Items[0].ManagementIP)
	assert.Nil(t, page.Items[0].LocationID)
}

func TestStore_DeleteNode_RemovesFromCSVFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, err := csv.Open(dir)
	require.NoError(t, err)

	created, err := s.CreateNode(ctx, models.Node{Name: "a", Model: "x"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteNode(ctx, created.ID))

	reopened, err := csv.Open(dir)
	require.NoError(t, err)
	page, err := reopened.ListNodes(ctx, storage.QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestStore_UpdateNodeCustomData_PersistsMerge(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, err := csv.Open(dir)
	require.NoError(t, err)

	created, err := s.CreateNode(ctx, models.Node{
		Name: "a", Model: "x",
		CustomData: value.Map(map[string]value.Value{"a": value.Int(1), "b": value.Int(2)}),
	})
	require.NoError(t, err)

	require.NoError(t, s.UpdateNodeCustomData(ctx, created.ID, value.Map(map[string]value.Value{"b": value.Int(99)})))

	reopened, err := csv.Open(dir)
	require.NoError(t, err)
	got, _, err := reopened.GetNode(ctx, created.ID)
	require.NoError(t, err)
	a, _ := got.CustomData.Get("a")
	b, _ := got.CustomData.Get("b")
	av, _ := a.AsInt()
	bv, _ := b.AsInt()
	assert.Equal(t, int64(1), av)
	assert.Equal(t, int64(99), bv)
}

func TestStore_LinkWithBandwidthAndZSide_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, err := csv.Open(dir)
	require.NoError(t, err)

	_, err = s.CreateNode(ctx, models.Node{Name: "a", Model: "x"})
	require.NoError(t, err)

	zID := "node-z"
	zIf := "eth1"
	bw := int64(10_000_000_000)
	_, err = s.CreateLink(ctx, models.Link{
		Name: "a-z", NodeAID: "node-a", InterfaceA: "eth0",
		NodeZID: &zID, InterfaceZ: &zIf, BandwidthBPS: &bw,
	})
	require.NoError(t, err)

	reopened, err := csv.Open(dir)
	require.NoError(t, err)
	page, err := reopened.ListLinks(ctx, storage.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].BandwidthBPS)
	assert.Equal(t, bw, *page.Items[0].BandwidthBPS)
	assert.False(t, page.Items[0].IsInternetCircuit)
}

func TestStore_InternetCircuitLink_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, err := csv.Open(dir)
	require.NoError(t, err)

	_, err = s.CreateLink(ctx, models.Link{Name: "uplink", NodeAID: "node-a", InterfaceA: "eth0", IsInternetCircuit: true})
	require.NoError(t, err)

	reopened, err := csv.Open(dir)
	require.NoError(t, err)
	page, err := reopened.ListLinks(ctx, storage.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].IsInternetCircuit)
	assert.Nil(t, page.Items[0].NodeZID)
}

func TestStore_Location_RoundTripsParentAndPath(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, err := csv.Open(dir)
	require.NoError(t, err)

	root, err := s.CreateLocation(ctx, models.Location{Name: "site-a", LocationType: "site", Path: "site-a"})
	require.NoError(t, err)
	_, err = s.CreateLocation(ctx, models.Location{Name: "rack-1", LocationType: "rack", ParentID: &root.ID, Path: "site-a/rack-1"})
	require.NoError(t, err)

	reopened, err := csv.Open(dir)
	require.NoError(t, err)
	page, err := reopened.ListLocations(ctx, storage.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
}

func TestStore_Vendors_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, err := csv.Open(dir)
	require.NoError(t, err)

	require.NoError(t, s.CreateVendor(ctx, "cisco"))
	require.NoError(t, s.CreateVendor(ctx, "juniper"))
	require.NoError(t, s.DeleteVendor(ctx, "juniper"))

	reopened, err := csv.Open(dir)
	require.NoError(t, err)
	vendors, err := reopened.ListVendors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cisco"}, vendors)
}

func TestStore_Filtering_WorksThroughSharedQueryEngine(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, err := csv.Open(dir)
	require.NoError(t, err)

	for _, name := range []string{"edge-1", "edge-2", "core-1"} {
		_, err := s.CreateNode(ctx, models.Node{Name: name, Model: "x"})
		require.NoError(t, err)
	}

	page, err := s.ListNodes(ctx, storage.QueryOptions{
		Filters: []storage.Filter{{Field: "name", Operation: storage.OpStartsWith, Value: storage.StringValue("edge")}},
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestOpen_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "datastore")
	_, err := csv.Open(dir)
	require.NoError(t, err)
}
