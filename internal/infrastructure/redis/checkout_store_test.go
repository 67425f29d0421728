package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/checkout"
)

func TestCheckoutStore(t *testing.T) {
	client := newTestClient(t)

	ctx := context.Background()
	store := NewCheckoutStore(client, time.Minute)

	t.Run("保存したチェックアウトを取得できる", func(t *testing.T) {
		c := checkout.New("co-store-1", "session-123", "user-123")
		reservationID := "res-123"
		c.Step = checkout.StepCheckout
		c.ReservationID = &reservationID

		err := store.Save(ctx, c)
		require.NoError(t, err)
		defer store.Delete(ctx, c.ID)

		got, err := store.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)
		assert.Equal(t, checkout.StepCheckout, got.Step)
		require.NotNil(t, got.ReservationID)
		assert.Equal(t, "res-123", *got.ReservationID)
	})

	t.Run("存在しないIDはErrCheckoutNotFoundを返す", func(t *testing.T) {
		_, err := store.Get(ctx, "no-such-checkout")
		assert.ErrorIs(t, err, checkout.ErrCheckoutNotFound)
	})

	t.Run("削除後はErrCheckoutNotFoundを返す", func(t *testing.T) {
		c := checkout.New("co-store-2", "session-123", "user-123")
		require.NoError(t, store.Save(ctx, c))

		require.NoError(t, store.Delete(ctx, c.ID))

		_, err := store.Get(ctx, c.ID)
		assert.ErrorIs(t, err, checkout.ErrCheckoutNotFound)
	})

	t.Run("TTL経過後はErrCheckoutNotFoundを返す", func(t *testing.T) {
		shortStore := NewCheckoutStore(client, 100*time.Millisecond)
		c := checkout.New("co-store-3", "session-123", "user-123")
		require.NoError(t, shortStore.Save(ctx, c))

		time.Sleep(200 * time.Millisecond)

		_, err := shortStore.Get(ctx, c.ID)
		assert.ErrorIs(t, err, checkout.ErrCheckoutNotFound)
	})

	t.Run("上書き保存で最新の状態が返る", func(t *testing.T) {
		c := checkout.New("co-store-4", "session-123", "user-123")
		require.NoError(t, store.Save(ctx, c))
		defer store.Delete(ctx, c.ID)

		orderID := "order-1"
		c.Step = checkout.StepConfirmation
		c.OrderID = &orderID
		require.NoError(t, store.Save(ctx, c))

		got, err := store.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, checkout.StepConfirmation, got.Step)
		require.NotNil(t, got.OrderID)
		assert.Equal(t, "order-1", *got.OrderID)
	})
}
