package inventory

import "time"

// Tier は自由席（GA）の価格ティアを表す
// 座席単位の識別子を持たず、残数に対する比較減算で在庫を管理する
type Tier struct {
	ID        string
	SessionID string
	Name      string
	Capacity  int
	Remaining int
	Price     int
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int // 楽観的ロック用
}

// NewTier は新しいティアを作成する（残数は定員と同数で初期化）
func NewTier(sessionID, name string, capacity, price int) *Tier {
	now := time.Now()
	return &Tier{
		SessionID: sessionID,
		Name:      name,
		Capacity:  capacity,
		Remaining: capacity,
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   0,
	}
}

// Take は残数から指定数量を減算する
// remaining >= quantity の場合のみ成功する（残数は決して負にならない）
func (t *Tier) Take(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if t.Remaining < quantity {
		return ErrCapacityExceeded
	}
	t.Remaining -= quantity
	t.UpdatedAt = time.Now()
	return nil
}

// Restore は解放された数量を残数に戻す（定員を超えない）
func (t *Tier) Restore(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	t.Remaining += quantity
	if t.Remaining > t.Capacity {
		t.Remaining = t.Capacity
	}
	t.UpdatedAt = time.Now()
	return nil
}

// Validate はティアの検証を行う
func (t *Tier) Validate() error {
	if t.SessionID == "" {
		return ErrSessionIDRequired
	}
	if t.Name == "" {
		return ErrTierNameRequired
	}
	if t.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if t.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}
