package ticket

import (
	"time"

	"github.com/lithammer/shortuuid/v3"
)

// Order は確定済み購入の記録を表す
// 作成後にこのエンジンから変更されることはない（払い戻し等は外部の責務）
type Order struct {
	ID            string
	ReservationID *string // GA直接購入の場合は nil
	SessionID     string
	UserID        string
	BuyerName     string
	BuyerEmail    string
	Subtotal      int
	Fees          int
	Discount      int
	Total         int
	CouponCode    *string
	CreatedAt     time.Time
}

// Ticket は在庫ユニット1つにつき1枚発行される入場券を表す
// Code は引換用の一意なコードで、発行後は不変
type Ticket struct {
	ID        string
	OrderID   string
	SessionID string
	SeatID    *string // 指定席の場合のみ
	TierID    *string // GAの場合のみ
	Price     int
	Code      string
	CreatedAt time.Time
}

// NewOrder は新しい購入記録を作成する
func NewOrder(reservationID *string, sessionID, userID, buyerName, buyerEmail string, subtotal, fees, discount, total int, couponCode *string) *Order {
	return &Order{
		ReservationID: reservationID,
		SessionID:     sessionID,
		UserID:        userID,
		BuyerName:     buyerName,
		BuyerEmail:    buyerEmail,
		Subtotal:      subtotal,
		Fees:          fees,
		Discount:      discount,
		Total:         total,
		CouponCode:    couponCode,
		CreatedAt:     time.Now(),
	}
}

// NewSeatTicket は指定席のチケットを発行する
func NewSeatTicket(orderID, sessionID, seatID string, price int) *Ticket {
	return &Ticket{
		OrderID:   orderID,
		SessionID: sessionID,
		SeatID:    &seatID,
		Price:     price,
		Code:      shortuuid.New(),
		CreatedAt: time.Now(),
	}
}

// NewTierTicket はGAティアのチケットを発行する
func NewTierTicket(orderID, sessionID, tierID string, price int) *Ticket {
	return &Ticket{
		OrderID:   orderID,
		SessionID: sessionID,
		TierID:    &tierID,
		Price:     price,
		Code:      shortuuid.New(),
		CreatedAt: time.Now(),
	}
}
