package session

import (
	"time"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/pricing"
)

// Session はイベントセッション（公演1回）を表す
// 販売期間と手数料設定を保持し、価格計算の入力となる
type Session struct {
	ID              string
	Name            string
	Venue           string
	StartAt         time.Time
	EndAt           time.Time
	SaleStartAt     time.Time
	SaleEndAt       time.Time
	ServiceFeeMode  pricing.FeeMode
	ServiceFeeValue int
	PerUnitFee      int // ユニットあたりの施設利用料。サービス手数料とは別枠
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int // 楽観的ロック用
}

// NewSession は新しいセッションを作成する
func NewSession(name, venue string, startAt, endAt, saleStartAt, saleEndAt time.Time, feeMode pricing.FeeMode, feeValue, perUnitFee int) *Session {
	now := time.Now()
	return &Session{
		Name:            name,
		Venue:           venue,
		StartAt:         startAt,
		EndAt:           endAt,
		SaleStartAt:     saleStartAt,
		SaleEndAt:       saleEndAt,
		ServiceFeeMode:  feeMode,
		ServiceFeeValue: feeValue,
		PerUnitFee:      perUnitFee,
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         0,
	}
}

// IsSaleOpen は販売期間内かを返す
func (s *Session) IsSaleOpen(now time.Time) bool {
	return !now.Before(s.SaleStartAt) && now.Before(s.SaleEndAt)
}

// FeeConfig は価格計算用の手数料設定を返す
func (s *Session) FeeConfig() pricing.FeeConfig {
	return pricing.FeeConfig{Mode: s.ServiceFeeMode, Value: s.ServiceFeeValue}
}

// Validate はセッションの検証を行う
func (s *Session) Validate() error {
	if s.Name == "" {
		return ErrSessionNameRequired
	}
	if s.EndAt.Before(s.StartAt) {
		return ErrInvalidSessionTime
	}
	if s.SaleEndAt.Before(s.SaleStartAt) {
		return ErrInvalidSalePeriod
	}
	if s.ServiceFeeValue < 0 || s.PerUnitFee < 0 {
		return ErrInvalidServiceFee
	}
	return nil
}
