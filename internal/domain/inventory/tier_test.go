package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTier(t *testing.T) {
	tier := NewTier("session-123", "VIP", 100, 12000)

	assert.Equal(t, "session-123", tier.SessionID)
	assert.Equal(t, "VIP", tier.Name)
	assert.Equal(t, 100, tier.Capacity)
	assert.Equal(t, 100, tier.Remaining)
	assert.Equal(t, 12000, tier.Price)
}

func TestTier_Take(t *testing.T) {
	t.Run("残数の範囲内なら減算できる", func(t *testing.T) {
		tier := NewTier("session-123", "一般", 10, 5000)

		err := tier.Take(3)

		require.NoError(t, err)
		assert.Equal(t, 7, tier.Remaining)
	})

	t.Run("残数ちょうどの数量も減算できる", func(t *testing.T) {
		tier := NewTier("session-123", "一般", 10, 5000)

		err := tier.Take(10)

		require.NoError(t, err)
		assert.Equal(t, 0, tier.Remaining)
	})

	t.Run("残数を超える数量は減算できない", func(t *testing.T) {
		tier := NewTier("session-123", "一般", 2, 5000)

		err := tier.Take(3)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCapacityExceeded)
		assert.Equal(t, 2, tier.Remaining)
	})

	t.Run("残数は決して負にならない", func(t *testing.T) {
		tier := NewTier("session-123", "一般", 1, 5000)

		require.NoError(t, tier.Take(1))
		err := tier.Take(1)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCapacityExceeded)
		assert.Equal(t, 0, tier.Remaining)
	})

	t.Run("数量0以下はエラー", func(t *testing.T) {
		tier := NewTier("session-123", "一般", 10, 5000)

		assert.ErrorIs(t, tier.Take(0), ErrInvalidQuantity)
		assert.ErrorIs(t, tier.Take(-1), ErrInvalidQuantity)
	})
}

func TestTier_Restore(t *testing.T) {
	t.Run("解放された数量を残数に戻せる", func(t *testing.T) {
		tier := NewTier("session-123", "一般", 10, 5000)
		require.NoError(t, tier.Take(4))

		err := tier.Restore(4)

		require.NoError(t, err)
		assert.Equal(t, 10, tier.Remaining)
	})

	t.Run("定員を超えて戻すことはできない", func(t *testing.T) {
		tier := NewTier("session-123", "一般", 10, 5000)

		err := tier.Restore(5)

		require.NoError(t, err)
		assert.Equal(t, 10, tier.Remaining)
	})
}

func TestTier_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tier    *Tier
		wantErr error
	}{
		{"正常なティア", NewTier("session-123", "VIP", 100, 12000), nil},
		{"セッションIDなし", NewTier("", "VIP", 100, 12000), ErrSessionIDRequired},
		{"ティア名なし", NewTier("session-123", "", 100, 12000), ErrTierNameRequired},
		{"定員0", NewTier("session-123", "VIP", 0, 12000), ErrInvalidCapacity},
		{"負の価格", NewTier("session-123", "VIP", 100, -1), ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tier.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
