package cart_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/storefront/internal/cart"
)

func TestFileStorage_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	storage := cart.NewFileStorage(dir)
	userID := mustUUID(t)

	size := 500
	state := cart.State{
		Lines: []cart.Line{
			{ProductID: mustUUID(t), Name: "first", UnitPrice: 100000, Quantity: 2},
			{ProductID: mustUUID(t), Name: "second", UnitPrice: 50000, Quantity: 1, SizeML: &size},
		},
		BuyNow:       &cart.Line{ProductID: mustUUID(t), Name: "buy-now", UnitPrice: 25000, Quantity: 1},
		BuyNowActive: true,
	}

	require.NoError(t, storage.Save(context.Background(), userID, state))

	loaded, err := storage.Load(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, state.Lines, loaded.Lines)
	assert.Equal(t, state.BuyNow, loaded.BuyNow)
	assert.True(t, loaded.BuyNowActive)
}

func TestFileStorage_AbsentFileIsEmptyState(t *testing.T) {
	storage := cart.NewFileStorage(t.TempDir())

	loaded, err := storage.Load(context.Background(), mustUUID(t))
	require.NoError(t, err)

	assert.Empty(t, loaded.Lines)
	assert.Nil(t, loaded.BuyNow)
	assert.False(t, loaded.BuyNowActive)
}

func TestFileStorage_CorruptFileIsEmptyState(t *testing.T) {
	dir := t.TempDir()
	storage := cart.NewFileStorage(dir)
	userID := mustUUID(t)

	err := os.WriteFile(filepath.Join(dir, userID.String()+".json"), []byte("{not json"), 0o644)
	require.NoError(t, err)

	loaded, err := storage.Load(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Lines)
}

func TestFileStorage_SaveOverwrites(t *testing.T) {
	dir := t.TempDir()
	storage := cart.NewFileStorage(dir)
	userID := mustUUID(t)

	first := cart.State{Lines: []cart.Line{{ProductID: mustUUID(t), Quantity: 3}}}
	require.NoError(t, storage.Save(context.Background(), userID, first))

	require.NoError(t, storage.Save(context.Background(), userID, cart.State{}))

	loaded, err := storage.Load(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Lines)
}

func TestStore_ReloadDropsZeroQuantityLines(t *testing.T) {
	dir := t.TempDir()
	storage := cart.NewFileStorage(dir)
	userID := mustUUID(t)

	// Simulate a bad write from an older client leaving a zero-quantity line.
	state := cart.State{Lines: []cart.Line{
		{ProductID: mustUUID(t), Name: "ok", Quantity: 2},
		{ProductID: mustUUID(t), Name: "stale", Quantity: 0},
	}}
	require.NoError(t, storage.Save(context.Background(), userID, state))

	store := cart.NewStore(userID, storage)
	snap := store.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, "ok", snap.Lines[0].Name)
}
