package checkout

import "time"

// Step はチェックアウトの進行段階を表す
// 正常系: seats → checkout → payment → processing → confirmation
// checkout / payment からは seats へ戻れる（ホールド解放を伴う）
// processing は confirmation（成功）か checkout（決済失敗）へ遷移する
type Step string

const (
	StepSeats        Step = "seats"
	StepCheckout     Step = "checkout"
	StepPayment      Step = "payment"
	StepProcessing   Step = "processing"
	StepConfirmation Step = "confirmation"
)

// Checkout は購入者1人分のチェックアウトセッションを表す
// 状態の真実はサーバー側にあり、クライアントはこれを描画するだけ
// カウントダウンは Reservation の ExpiresAt から導出され、それ自体に権威はない
type Checkout struct {
	ID            string
	SessionID     string
	UserID        string
	Step          Step
	ReservationID *string
	OrderID       *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// New は seats ステップのチェックアウトを作成する
func New(id, sessionID, userID string) *Checkout {
	now := time.Now()
	return &Checkout{
		ID:        id,
		SessionID: sessionID,
		UserID:    userID,
		Step:      StepSeats,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AttachHold はホールド作成後に checkout ステップへ進める
func (c *Checkout) AttachHold(reservationID string) error {
	if c.Step != StepSeats {
		return ErrInvalidTransition
	}
	c.Step = StepCheckout
	c.ReservationID = &reservationID
	c.UpdatedAt = time.Now()
	return nil
}

// ProceedToPayment は購入者情報入力後に payment ステップへ進める
func (c *Checkout) ProceedToPayment() error {
	if c.Step != StepCheckout {
		return ErrInvalidTransition
	}
	c.Step = StepPayment
	c.UpdatedAt = time.Now()
	return nil
}

// BeginProcessing は決済実行中の processing ステップへ進める
func (c *Checkout) BeginProcessing() error {
	if c.Step != StepPayment {
		return ErrInvalidTransition
	}
	c.Step = StepProcessing
	c.UpdatedAt = time.Now()
	return nil
}

// Complete は購入確定後に confirmation ステップへ進める
func (c *Checkout) Complete(orderID string) error {
	if c.Step != StepProcessing {
		return ErrInvalidTransition
	}
	c.Step = StepConfirmation
	c.OrderID = &orderID
	c.UpdatedAt = time.Now()
	return nil
}

// FailPayment は決済失敗時に checkout ステップへ戻す
// ホールドが期限内であれば再予約なしでリトライできる
func (c *Checkout) FailPayment() error {
	if c.Step != StepProcessing {
		return ErrInvalidTransition
	}
	c.Step = StepCheckout
	c.UpdatedAt = time.Now()
	return nil
}

// Abandon は checkout / payment から seats へ戻す
// 呼び出し側でホールドのキャンセルを伴うこと
func (c *Checkout) Abandon() error {
	if c.Step != StepCheckout && c.Step != StepPayment {
		return ErrInvalidTransition
	}
	c.Step = StepSeats
	c.ReservationID = nil
	c.UpdatedAt = time.Now()
	return nil
}
