package reservation

import "time"

// Status は予約（ホールド）の状態を表す
type Status string

const (
	StatusActive    Status = "active"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// IsTerminal は終端状態かを返す
func (s Status) IsTerminal() bool {
	return s != StatusActive
}

// TierQuantity はティアに対するホールド数量を表す
type TierQuantity struct {
	TierID    string
	Quantity  int
	UnitPrice int
}

// Reservation は1人の購入者による時限付きホールドを表す
// active の間、SeatIDs / TierQuantities が指す在庫を排他的に占有する
// TTL は作成時に固定され、延長されない
type Reservation struct {
	ID             string
	SessionID      string
	UserID         string
	SeatIDs        []string
	TierQuantities []TierQuantity
	Status         Status
	IdempotencyKey string
	ExpiresAt      time.Time
	ConfirmedAt    *time.Time
	TotalAmount    int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DefaultTTL はホールドの有効期限（デフォルト15分）
const DefaultTTL = 15 * time.Minute

// NewReservation は新しいホールドを作成する
func NewReservation(sessionID, userID, idempotencyKey string, seatIDs []string, tierQuantities []TierQuantity, totalAmount int, ttl time.Duration) *Reservation {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Reservation{
		SessionID:      sessionID,
		UserID:         userID,
		SeatIDs:        seatIDs,
		TierQuantities: tierQuantities,
		Status:         StatusActive,
		IdempotencyKey: idempotencyKey,
		ExpiresAt:      now.Add(ttl),
		TotalAmount:    totalAmount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsExpired はホールドが期限切れかを返す
func (r *Reservation) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// IsActive はホールドが有効かを返す
func (r *Reservation) IsActive() bool {
	return r.Status == StatusActive
}

// Confirm はホールドを確定済みに遷移させる
// active かつ期限内の場合のみ成功する
func (r *Reservation) Confirm() error {
	switch r.Status {
	case StatusConfirmed:
		return ErrAlreadyConfirmed
	case StatusCancelled, StatusExpired:
		return ErrReservationReleased
	}
	if r.IsExpired() {
		return ErrReservationExpired
	}
	now := time.Now()
	r.Status = StatusConfirmed
	r.ConfirmedAt = &now
	r.UpdatedAt = now
	return nil
}

// Cancel はホールドをキャンセル状態に遷移させる
// 既に cancelled / expired の場合は ErrReservationReleased を返し、
// 呼び出し側で冪等な成功として扱う
func (r *Reservation) Cancel() error {
	switch r.Status {
	case StatusConfirmed:
		return ErrAlreadyConfirmed
	case StatusCancelled, StatusExpired:
		return ErrReservationReleased
	}
	r.Status = StatusCancelled
	r.UpdatedAt = time.Now()
	return nil
}

// Expire はホールドを期限切れ状態に遷移させる（リーパー用）
func (r *Reservation) Expire() error {
	if r.Status != StatusActive {
		return ErrReservationReleased
	}
	r.Status = StatusExpired
	r.UpdatedAt = time.Now()
	return nil
}

// Validate はホールドの検証を行う
func (r *Reservation) Validate() error {
	if r.SessionID == "" {
		return ErrSessionIDRequired
	}
	if r.UserID == "" {
		return ErrUserIDRequired
	}
	if len(r.SeatIDs) == 0 && len(r.TierQuantities) == 0 {
		return ErrUnitsRequired
	}
	if r.IdempotencyKey == "" {
		return ErrIdempotencyKeyRequired
	}
	for _, tq := range r.TierQuantities {
		if tq.Quantity <= 0 {
			return ErrInvalidTierQuantity
		}
	}
	return nil
}
