package client

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeed(t *testing.T, watched ...int) *Feed {
	t.Helper()

	registry, err := NewRegistry(filepath.Join(t.TempDir(), "tables.json"))
	require.NoError(t, err)
	for _, n := range watched {
		require.NoError(t, registry.Toggle(n))
	}
	return NewFeed(registry)
}

func TestFeed_TableCallingSurfacesForWatchedTable(t *testing.T) {
	feed := newTestFeed(t, 5)

	n, err := feed.Apply([]byte(`{"event":"table_calling","payload":{"tableNumber":5,"status":"occupied"}}`))
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, 5, n.TableNumber)
	assert.Equal(t, CategoryAlert, n.Category)
	assert.Equal(t, "Table 5 needs help!", n.Message)
}

func TestFeed_TableCallingIgnoredForUnwatchedTable(t *testing.T) {
	feed := newTestFeed(t, 5)

	n, err := feed.Apply([]byte(`{"event":"table_calling","payload":{"tableNumber":6}}`))
	require.NoError(t, err)
	assert.Nil(t, n)
	assert.Empty(t, feed.Notifications())
}

func TestFeed_OrderUpdatedSurfacesOnlyWhenReady(t *testing.T) {
	feed := newTestFeed(t, 5)

	for _, status := range []string{"pending", "preparing", "served", "paid", "cancelled"} {
		n, err := feed.Apply([]byte(fmt.Sprintf(`{"event":"order_updated","payload":{"tableNumber":5,"status":%q}}`, status)))
		require.NoError(t, err)
		assert.Nil(t, n, "status %q must not surface", status)
	}

	n, err := feed.Apply([]byte(`{"event":"order_updated","payload":{"tableNumber":5,"status":"ready"}}`))
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, CategorySuccess, n.Category)
	assert.Equal(t, "Order for table 5 is ready!", n.Message)
}

func TestFeed_OrderReadyIgnoredForUnwatchedTable(t *testing.T) {
	feed := newTestFeed(t, 5)

	n, err := feed.Apply([]byte(`{"event":"order_updated","payload":{"tableNumber":6,"status":"ready"}}`))
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestFeed_UnknownEventsAreIgnored(t *testing.T) {
	feed := newTestFeed(t, 5)

	for _, raw := range []string{
		`{"event":"order_created","payload":{"tableNumber":5,"status":"pending"}}`,
		`{"event":"table_resolved","payload":{"tableNumber":5}}`,
		`{"event":"something_new","payload":{}}`,
	} {
		n, err := feed.Apply([]byte(raw))
		require.NoError(t, err)
		assert.Nil(t, n)
	}
}

func TestFeed_MalformedMessageIsAnError(t *testing.T) {
	feed := newTestFeed(t, 5)

	_, err := feed.Apply([]byte(`{not json`))
	assert.Error(t, err)

	_, err = feed.Apply([]byte(`{"event":"table_calling","payload":"not-an-object"}`))
	assert.Error(t, err)
}

func TestFeed_NewestFirstAndDismiss(t *testing.T) {
	feed := newTestFeed(t, 5)
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	feed.now = func() time.Time {
		ts = ts.Add(time.Minute)
		return ts
	}

	first, err := feed.Apply([]byte(`{"event":"table_calling","payload":{"tableNumber":5}}`))
	require.NoError(t, err)
	second, err := feed.Apply([]byte(`{"event":"order_updated","payload":{"tableNumber":5,"status":"ready"}}`))
	require.NoError(t, err)

	list := feed.Notifications()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.True(t, list[0].ReceivedAt.After(list[1].ReceivedAt))

	feed.Dismiss(first.ID)
	list = feed.Notifications()
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)

	// Dismissing an unknown id is a no-op.
	feed.Dismiss("nope")
	assert.Len(t, feed.Notifications(), 1)
}
