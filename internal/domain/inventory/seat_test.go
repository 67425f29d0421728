package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeat(t *testing.T) {
	sessionID := "session-123"
	zone := "S"
	seatNumber := "A-1"
	price := 8000

	seat := NewSeat(sessionID, zone, seatNumber, price)

	assert.Equal(t, sessionID, seat.SessionID)
	assert.Equal(t, zone, seat.Zone)
	assert.Equal(t, seatNumber, seat.SeatNumber)
	assert.Equal(t, price, seat.Price)
	assert.Equal(t, StatusAvailable, seat.Status)
	assert.Nil(t, seat.HeldBy)
	assert.Nil(t, seat.HeldAt)
	assert.Equal(t, 0, seat.Version)
}

func TestSeat_IsAvailable(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		expected bool
	}{
		{"利用可能", StatusAvailable, true},
		{"ホールド中", StatusHeld, false},
		{"販売済み", StatusSold, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seat := &Seat{Status: tt.status}
			assert.Equal(t, tt.expected, seat.IsAvailable())
		})
	}
}

func TestSeat_Hold(t *testing.T) {
	t.Run("利用可能な座席をホールドできる", func(t *testing.T) {
		seat := NewSeat("session-123", "S", "A-1", 8000)
		reservationID := "reservation-456"

		err := seat.Hold(reservationID)

		require.NoError(t, err)
		assert.Equal(t, StatusHeld, seat.Status)
		assert.NotNil(t, seat.HeldBy)
		assert.Equal(t, reservationID, *seat.HeldBy)
		assert.NotNil(t, seat.HeldAt)
	})

	t.Run("ホールド中の座席はホールドできない", func(t *testing.T) {
		seat := NewSeat("session-123", "S", "A-1", 8000)
		require.NoError(t, seat.Hold("reservation-1"))

		err := seat.Hold("reservation-2")

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSeatConflict)
	})

	t.Run("販売済みの座席はホールドできない", func(t *testing.T) {
		seat := NewSeat("session-123", "S", "A-1", 8000)
		seat.Status = StatusSold

		err := seat.Hold("reservation-456")

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSeatConflict)
	})
}

func TestSeat_MarkSold(t *testing.T) {
	t.Run("ホールド中の座席を販売済みにできる", func(t *testing.T) {
		seat := NewSeat("session-123", "S", "A-1", 8000)
		require.NoError(t, seat.Hold("reservation-456"))

		err := seat.MarkSold()

		require.NoError(t, err)
		assert.Equal(t, StatusSold, seat.Status)
	})

	t.Run("利用可能な座席は直接販売済みにできない", func(t *testing.T) {
		seat := NewSeat("session-123", "S", "A-1", 8000)

		err := seat.MarkSold()

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSeatNotHeld)
	})
}

func TestSeat_Release(t *testing.T) {
	t.Run("ホールド中の座席を解放できる", func(t *testing.T) {
		seat := NewSeat("session-123", "S", "A-1", 8000)
		require.NoError(t, seat.Hold("reservation-456"))

		err := seat.Release()

		require.NoError(t, err)
		assert.Equal(t, StatusAvailable, seat.Status)
		assert.Nil(t, seat.HeldBy)
		assert.Nil(t, seat.HeldAt)
	})

	t.Run("販売済みの座席は解放できない", func(t *testing.T) {
		seat := NewSeat("session-123", "S", "A-1", 8000)
		require.NoError(t, seat.Hold("reservation-456"))
		require.NoError(t, seat.MarkSold())

		err := seat.Release()

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSeatAlreadySold)
		assert.Equal(t, StatusSold, seat.Status)
	})
}

func TestSeat_Validate(t *testing.T) {
	tests := []struct {
		name    string
		seat    *Seat
		wantErr error
	}{
		{"正常な座席", NewSeat("session-123", "S", "A-1", 8000), nil},
		{"セッションIDなし", NewSeat("", "S", "A-1", 8000), ErrSessionIDRequired},
		{"座席番号なし", NewSeat("session-123", "S", "", 8000), ErrSeatNumberRequired},
		{"負の価格", NewSeat("session-123", "S", "A-1", -1), ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.seat.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
