package eventbus

import "time"

// トピック名
const (
	TopicHoldCreated       = "reservation.hold_created"
	TopicHoldCancelled     = "reservation.hold_cancelled"
	TopicHoldExpired       = "reservation.hold_expired"
	TopicPurchaseCompleted = "reservation.purchase_completed"
)

// HoldCreated はホールド作成イベント
type HoldCreated struct {
	ReservationID string    `json:"reservation_id"`
	SessionID     string    `json:"session_id"`
	UserID        string    `json:"user_id"`
	SeatIDs       []string  `json:"seat_ids,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// HoldCancelled はホールド取消イベント
type HoldCancelled struct {
	ReservationID string    `json:"reservation_id"`
	SessionID     string    `json:"session_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// HoldExpired はホールド期限切れイベント（リーパーによる自動解放）
type HoldExpired struct {
	ReservationID string    `json:"reservation_id"`
	SessionID     string    `json:"session_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PurchaseCompleted は購入確定イベント
type PurchaseCompleted struct {
	OrderID       string    `json:"order_id"`
	ReservationID *string   `json:"reservation_id,omitempty"`
	SessionID     string    `json:"session_id"`
	UserID        string    `json:"user_id"`
	TotalAmount   int       `json:"total_amount"`
	TicketCount   int       `json:"ticket_count"`
	OccurredAt    time.Time `json:"occurred_at"`
}
