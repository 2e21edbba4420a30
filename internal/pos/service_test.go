package pos

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/store"
)

// newTestService sets up an isolated in-memory SQLite database seeded with
// one restaurant, table 5 (capacity 4) and a couple of products.
func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, gormDB.AutoMigrate(
		&model.Restaurant{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.Table{},
	))

	require.NoError(t, gormDB.Create(&model.Restaurant{ID: 1, Name: "Testaurant"}).Error)
	require.NoError(t, gormDB.Create(&model.Product{ID: 10, RestaurantID: 1, Name: "Cola", Price: 3, IsAvailable: true}).Error)
	require.NoError(t, gormDB.Create(&model.Product{ID: 11, RestaurantID: 1, Name: "Pizza", Price: 12.5, IsAvailable: true}).Error)
	require.NoError(t, gormDB.Create(&model.Table{ID: 1, RestaurantID: 1, TableNumber: 5, Capacity: 4, Status: model.TableAvailable}).Error)

	s := store.NewGormStore(gormDB)
	return NewService(s), s
}

func TestOpenOrder(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, 1, 5, []ItemRequest{{ProductID: 10, Quantity: 2}})
	require.NoError(t, err)

	assert.Equal(t, float64(6), order.TotalAmount)
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, int64(1), order.Version)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Cola", order.Items[0].Name)

	table, err := s.FindTableByNumber(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, model.TableOccupied, table.Status)
	require.NotNil(t, table.CurrentOrderID)
	assert.Equal(t, order.ID, *table.CurrentOrderID)
}

func TestOpenOrder_OccupiedTableConflicts(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	first, err := svc.OpenOrder(ctx, 1, 5, []ItemRequest{{ProductID: 10, Quantity: 2}})
	require.NoError(t, err)

	_, err = svc.OpenOrder(ctx, 1, 5, []ItemRequest{{ProductID: 11, Quantity: 1}})
	assert.ErrorIs(t, err, ErrConflict)

	// The existing order and table are untouched.
	existing, err := s.FindOrder(ctx, 1, first.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(6), existing.TotalAmount)
	assert.Equal(t, StatusPending, existing.Status)

	table, err := s.FindTableByNumber(ctx, 1, 5)
	require.NoError(t, err)
	require.NotNil(t, table.CurrentOrderID)
	assert.Equal(t, first.ID, *table.CurrentOrderID)
}

func TestOpenOrder_UnknownTable(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.OpenOrder(context.Background(), 1, 99, []ItemRequest{{ProductID: 10, Quantity: 1}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenOrder_UnresolvableProductFailsWholeRequest(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	_, err := svc.OpenOrder(ctx, 1, 5, []ItemRequest{
		{ProductID: 10, Quantity: 1},
		{ProductID: 999, Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrNotFound)

	// Nothing was created and the table was not flipped.
	var orderCount int64
	s.DB().Model(&model.Order{}).Count(&orderCount)
	assert.Equal(t, int64(0), orderCount)

	table, err := s.FindTableByNumber(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, model.TableAvailable, table.Status)
}

func TestOpenOrder_EmptyItems(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.OpenOrder(context.Background(), 1, 5, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAppendItems(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, 1, 5, []ItemRequest{{ProductID: 10, Quantity: 2}})
	require.NoError(t, err)

	updated, err := svc.AppendItems(ctx, 1, order.ID, []ItemRequest{{ProductID: 11, Quantity: 1}}, order.Version)
	require.NoError(t, err)

	assert.Equal(t, float64(6+12.5), updated.TotalAmount)
	assert.Equal(t, int64(2), updated.Version)
	assert.Len(t, updated.Items, 2)
}

func TestAppendItems_SnapshotImmuneToMenuEdits(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, 1, 5, []ItemRequest{{ProductID: 10, Quantity: 2}})
	require.NoError(t, err)

	// A later menu edit must never retroactively alter the order's total.
	require.NoError(t, s.DB().Model(&model.Product{}).Where("id = ?", 10).Update("price", 100).Error)

	reread, err := s.FindOrder(ctx, 1, order.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(6), reread.TotalAmount)
	assert.Equal(t, float64(3), reread.Items[0].Price)
}

func TestAppendItems_StaleVersionConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, 1, 5, []ItemRequest{{ProductID: 10, Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.AppendItems(ctx, 1, order.ID, []ItemRequest{{ProductID: 11, Quantity: 1}}, order.Version)
	require.NoError(t, err)

	// A second append built from the original read loses.
	_, err = svc.AppendItems(ctx, 1, order.ID, []ItemRequest{{ProductID: 11, Quantity: 1}}, order.Version)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAppendItems_TerminalOrderConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, 1, 5, []ItemRequest{{ProductID: 10, Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, 1, order.ID, StatusCancelled)
	require.NoError(t, err)

	_, err = svc.AppendItems(ctx, 1, order.ID, []ItemRequest{{ProductID: 11, Quantity: 1}}, 0)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTransition_FullLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, 1, 5, []ItemRequest{{ProductID: 10, Quantity: 1}})
	require.NoError(t, err)

	for _, status := range []string{StatusPreparing, StatusReady, StatusServed, StatusPaid} {
		order, err = svc.Transition(ctx, 1, order.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, order.Status)
	}
}

func TestTransition_SkipRejectedAndStateUnchanged(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, 1, 5, []ItemRequest{{ProductID: 10, Quantity: 1}})
	require.NoError(t, err)

	// Kitchen cannot jump pending → ready.
	_, err = svc.Transition(ctx, 1, order.ID, StatusReady)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	reread, err := s.FindOrder(ctx, 1, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, reread.Status)
}

func TestTransition_UnknownStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, 1, 5, []ItemRequest{{ProductID: 10, Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, 1, order.ID, "delivered")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFreeTable(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, 1, 5, []ItemRequest{{ProductID: 10, Quantity: 1}})
	require.NoError(t, err)

	// An active order blocks freeing.
	_, err = svc.FreeTable(ctx, 1, 1)
	assert.ErrorIs(t, err, ErrConflict)

	for _, status := range []string{StatusPreparing, StatusReady, StatusServed, StatusPaid} {
		_, err = svc.Transition(ctx, 1, order.ID, status)
		require.NoError(t, err)
	}

	table, err := svc.FreeTable(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, model.TableAvailable, table.Status)
	assert.Nil(t, table.CurrentOrderID)

	// The order's own status is untouched by freeing.
	reread, err := s.FindOrder(ctx, 1, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, reread.Status)
}

// hookStore lets a test interleave a competing writer at the exact moment
// between a service's occupancy read and its guarded table write.
type hookStore struct {
	store.Store
	beforeOccupy  func()
	beforeRelease func()
}

func (h *hookStore) OccupyTable(ctx context.Context, tableID int64, orderID string) error {
	if h.beforeOccupy != nil {
		fn := h.beforeOccupy
		h.beforeOccupy = nil
		fn()
	}
	return h.Store.OccupyTable(ctx, tableID, orderID)
}

func (h *hookStore) ReleaseTable(ctx context.Context, tableID int64, currentOrderID *string) error {
	if h.beforeRelease != nil {
		fn := h.beforeRelease
		h.beforeRelease = nil
		fn()
	}
	return h.Store.ReleaseTable(ctx, tableID, currentOrderID)
}

func TestOpenOrder_ConcurrentOpenLosesAndCompensates(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	// A second waiter's open completes in the window between the first
	// open's occupancy read and its table flip.
	var winner *model.Order
	hooked := &hookStore{Store: s}
	hooked.beforeOccupy = func() {
		var err error
		winner, err = svc.OpenOrder(ctx, 1, 5, []ItemRequest{{ProductID: 11, Quantity: 1}})
		require.NoError(t, err)
	}

	_, err := NewService(hooked).OpenOrder(ctx, 1, 5, []ItemRequest{{ProductID: 10, Quantity: 2}})
	assert.ErrorIs(t, err, ErrConflict)

	// The winner's claim is intact and the loser's order was compensated
	// to cancelled, so exactly one active order exists for the table.
	table, err := s.FindTableByNumber(ctx, 1, 5)
	require.NoError(t, err)
	require.NotNil(t, table.CurrentOrderID)
	assert.Equal(t, winner.ID, *table.CurrentOrderID)

	var active int64
	s.DB().Model(&model.Order{}).
		Where("table_number = ? AND status NOT IN ?", 5, []string{StatusPaid, StatusCancelled}).
		Count(&active)
	assert.Equal(t, int64(1), active)
}

func TestFreeTable_StaleClearCannotWipeNewerOrder(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, 1, 5, []ItemRequest{{ProductID: 10, Quantity: 1}})
	require.NoError(t, err)
	_, err = svc.Transition(ctx, 1, order.ID, StatusCancelled)
	require.NoError(t, err)

	// Between this free's read and its clear, the table is freed and
	// reopened by someone else.
	var reopened *model.Order
	hooked := &hookStore{Store: s}
	hooked.beforeRelease = func() {
		_, err := svc.FreeTable(ctx, 1, 1)
		require.NoError(t, err)
		reopened, err = svc.OpenOrder(ctx, 1, 5, []ItemRequest{{ProductID: 11, Quantity: 1}})
		require.NoError(t, err)
	}

	_, err = NewService(hooked).FreeTable(ctx, 1, 1)
	assert.ErrorIs(t, err, ErrConflict)

	table, err := s.FindTableByNumber(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, model.TableOccupied, table.Status)
	require.NotNil(t, table.CurrentOrderID)
	assert.Equal(t, reopened.ID, *table.CurrentOrderID)
}

func TestAssistanceFlag(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	table, err := svc.RequestAssistance(ctx, 1, 5)
	require.NoError(t, err)
	assert.True(t, table.NeedsAssistance)

	table, err = svc.ResolveAssistance(ctx, 1, 5)
	require.NoError(t, err)
	assert.False(t, table.NeedsAssistance)

	_, err = svc.RequestAssistance(ctx, 1, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssistanceFlag_LeavesOccupancyAlone(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, 1, 5, []ItemRequest{{ProductID: 10, Quantity: 1}})
	require.NoError(t, err)

	table, err := svc.RequestAssistance(ctx, 1, 5)
	require.NoError(t, err)
	assert.True(t, table.NeedsAssistance)

	// The flag write touches nothing but the flag.
	reread, err := s.FindTableByNumber(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, model.TableOccupied, reread.Status)
	require.NotNil(t, reread.CurrentOrderID)
	assert.Equal(t, order.ID, *reread.CurrentOrderID)
}
