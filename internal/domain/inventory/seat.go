package inventory

import "time"

// Status は在庫ユニットの状態を表す
type Status string

const (
	StatusAvailable Status = "available"
	StatusHeld      Status = "held"
	StatusSold      Status = "sold"
)

// Seat は指定席の在庫ユニットを表す
// 状態遷移は available → held → {available, sold} のみ（sold は終端状態）
type Seat struct {
	ID         string
	SessionID  string
	Zone       string
	SeatNumber string
	Status     Status
	Price      int
	HeldBy     *string // reservation_id
	HeldAt     *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int // 楽観的ロック用
}

// NewSeat は新しい座席を作成する
func NewSeat(sessionID, zone, seatNumber string, price int) *Seat {
	now := time.Now()
	return &Seat{
		SessionID:  sessionID,
		Zone:       zone,
		SeatNumber: seatNumber,
		Status:     StatusAvailable,
		Price:      price,
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    0,
	}
}

// IsAvailable は座席がホールド可能かを返す
func (s *Seat) IsAvailable() bool {
	return s.Status == StatusAvailable
}

// Hold は座席をホールド状態にする
func (s *Seat) Hold(reservationID string) error {
	if s.Status != StatusAvailable {
		return ErrSeatConflict
	}
	now := time.Now()
	s.Status = StatusHeld
	s.HeldBy = &reservationID
	s.HeldAt = &now
	s.UpdatedAt = now
	return nil
}

// MarkSold は座席を販売済みにする（終端状態）
func (s *Seat) MarkSold() error {
	if s.Status != StatusHeld {
		return ErrSeatNotHeld
	}
	s.Status = StatusSold
	s.UpdatedAt = time.Now()
	return nil
}

// Release はホールド中の座席を解放する
// 販売済みの座席は解放できない
func (s *Seat) Release() error {
	if s.Status == StatusSold {
		return ErrSeatAlreadySold
	}
	s.Status = StatusAvailable
	s.HeldBy = nil
	s.HeldAt = nil
	s.UpdatedAt = time.Now()
	return nil
}

// Validate は座席の検証を行う
func (s *Seat) Validate() error {
	if s.SessionID == "" {
		return ErrSessionIDRequired
	}
	if s.SeatNumber == "" {
		return ErrSeatNumberRequired
	}
	if s.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}
