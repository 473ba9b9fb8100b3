package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(id uint64, price string) Item {
	return Item{
		ProductID: id,
		Name:      "product",
		Price:     price,
		Category:  "shirts",
	}
}

func TestAddItem_MergesSameProduct(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := NewStore(ctx, NewMemoryPersister())

	// Act: same product added three times
	store.AddItem(ctx, snapshot(7, "0.0500"))
	store.AddItem(ctx, snapshot(7, "0.0500"))
	store.AddItem(ctx, snapshot(7, "0.0500"))

	// Assert: one entry, quantity equals the call count
	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, uint64(7), items[0].ProductID)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestAddItem_IgnoresSnapshotQuantity(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, NewMemoryPersister())

	item := snapshot(7, "0.0500")
	item.Quantity = 99

	store.AddItem(ctx, item)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestUpdateQuantity_SetsExactValue(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, NewMemoryPersister())
	store.AddItem(ctx, snapshot(7, "0.0500"))

	store.UpdateQuantity(ctx, 7, 5)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestUpdateQuantity_NonPositiveRemoves(t *testing.T) {
	for _, quantity := range []int{0, -1, -100} {
		ctx := context.Background()
		store := NewStore(ctx, NewMemoryPersister())
		store.AddItem(ctx, snapshot(7, "0.0500"))

		store.UpdateQuantity(ctx, 7, quantity)

		assert.Empty(t, store.Items(), "quantity %d should remove the item", quantity)
	}
}

func TestRemoveItem_UnknownProductIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, NewMemoryPersister())
	store.AddItem(ctx, snapshot(7, "0.0500"))

	store.RemoveItem(ctx, 999)

	assert.Len(t, store.Items(), 1)
}

func TestTotalAndItemCount(t *testing.T) {
	// Arrange: {7, 0.0500, qty 2} and {9, 0.0025, qty 1}
	ctx := context.Background()
	store := NewStore(ctx, NewMemoryPersister())
	store.AddItem(ctx, snapshot(7, "0.0500"))
	store.AddItem(ctx, snapshot(7, "0.0500"))
	store.AddItem(ctx, snapshot(9, "0.0025"))

	// Assert
	assert.Equal(t, "0.1025", store.Total())
	assert.Equal(t, 3, store.ItemCount())

	// Act: dropping product 7 leaves one item
	store.UpdateQuantity(ctx, 7, 0)

	assert.Len(t, store.Items(), 1)
	assert.Equal(t, 1, store.ItemCount())
}

func TestTotal_InvariantUnderAddOrder(t *testing.T) {
	ctx := context.Background()

	first := NewStore(ctx, NewMemoryPersister())
	first.AddItem(ctx, snapshot(7, "0.0500"))
	first.AddItem(ctx, snapshot(9, "0.0025"))
	first.AddItem(ctx, snapshot(7, "0.0500"))

	second := NewStore(ctx, NewMemoryPersister())
	second.AddItem(ctx, snapshot(9, "0.0025"))
	second.AddItem(ctx, snapshot(7, "0.0500"))
	second.AddItem(ctx, snapshot(7, "0.0500"))

	assert.Equal(t, first.Total(), second.Total())
}

func TestTotal_EmptyCart(t *testing.T) {
	store := NewStore(context.Background(), NewMemoryPersister())

	assert.Equal(t, "0.0000", store.Total())
	assert.Equal(t, 0, store.ItemCount())
}

func TestStore_PersistenceRoundTrip(t *testing.T) {
	// Arrange
	ctx := context.Background()
	persister := NewMemoryPersister()

	store := NewStore(ctx, persister)
	store.AddItem(ctx, snapshot(7, "0.0500"))
	store.AddItem(ctx, snapshot(7, "0.0500"))
	store.AddItem(ctx, snapshot(9, "0.0025"))

	// Act: a fresh store over the same persister reloads the cart
	reloaded := NewStore(ctx, persister)

	// Assert: identical item list
	assert.Equal(t, store.Items(), reloaded.Items())
	assert.Equal(t, store.Total(), reloaded.Total())
}

func TestStore_ClearPersists(t *testing.T) {
	ctx := context.Background()
	persister := NewMemoryPersister()

	store := NewStore(ctx, persister)
	store.AddItem(ctx, snapshot(7, "0.0500"))
	store.Clear(ctx)

	reloaded := NewStore(ctx, persister)
	assert.Empty(t, reloaded.Items())
}

// failingPersister simula armazenamento durável indisponível
type failingPersister struct{}

func (p failingPersister) Load(ctx context.Context) ([]Item, error) {
	return nil, errors.New("storage unavailable")
}

func (p failingPersister) Save(ctx context.Context, items []Item) error {
	return errors.New("storage unavailable")
}

func TestStore_WorksInMemoryWhenPersistenceFails(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := NewStore(ctx, failingPersister{})

	// Act: mutations must not crash even though every save fails
	store.AddItem(ctx, snapshot(7, "0.0500"))
	store.AddItem(ctx, snapshot(9, "0.0025"))
	store.UpdateQuantity(ctx, 9, 4)
	store.RemoveItem(ctx, 7)

	// Assert: the in-memory session kept working
	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, uint64(9), items[0].ProductID)
	assert.Equal(t, 4, items[0].Quantity)
}

func TestItems_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, NewMemoryPersister())
	store.AddItem(ctx, snapshot(7, "0.0500"))

	items := store.Items()
	items[0].Quantity = 100

	assert.Equal(t, 1, store.Items()[0].Quantity)
}
