package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/pricing"
)

func newValidSession() *Session {
	now := time.Now()
	return NewSession(
		"テスト公演", "テストホール",
		now.Add(72*time.Hour), now.Add(75*time.Hour),
		now.Add(-time.Hour), now.Add(48*time.Hour),
		pricing.FeeModePercent, 10, 0,
	)
}

func TestSession_IsSaleOpen(t *testing.T) {
	s := newValidSession()

	t.Run("販売期間内", func(t *testing.T) {
		assert.True(t, s.IsSaleOpen(time.Now()))
	})

	t.Run("販売開始前", func(t *testing.T) {
		assert.False(t, s.IsSaleOpen(s.SaleStartAt.Add(-time.Minute)))
	})

	t.Run("販売終了後", func(t *testing.T) {
		assert.False(t, s.IsSaleOpen(s.SaleEndAt))
	})

	t.Run("販売開始時刻ちょうどは期間内", func(t *testing.T) {
		assert.True(t, s.IsSaleOpen(s.SaleStartAt))
	})
}

func TestSession_FeeConfig(t *testing.T) {
	s := newValidSession()

	cfg := s.FeeConfig()

	assert.Equal(t, pricing.FeeModePercent, cfg.Mode)
	assert.Equal(t, 10, cfg.Value)
}

func TestSession_Validate(t *testing.T) {
	t.Run("正常なセッション", func(t *testing.T) {
		assert.NoError(t, newValidSession().Validate())
	})

	t.Run("名前なし", func(t *testing.T) {
		s := newValidSession()
		s.Name = ""
		assert.ErrorIs(t, s.Validate(), ErrSessionNameRequired)
	})

	t.Run("開始より前の終了時刻", func(t *testing.T) {
		s := newValidSession()
		s.EndAt = s.StartAt.Add(-time.Hour)
		assert.ErrorIs(t, s.Validate(), ErrInvalidSessionTime)
	})

	t.Run("不正な販売期間", func(t *testing.T) {
		s := newValidSession()
		s.SaleEndAt = s.SaleStartAt.Add(-time.Hour)
		assert.ErrorIs(t, s.Validate(), ErrInvalidSalePeriod)
	})

	t.Run("負の手数料", func(t *testing.T) {
		s := newValidSession()
		s.ServiceFeeValue = -1
		assert.ErrorIs(t, s.Validate(), ErrInvalidServiceFee)
	})

	t.Run("負のユニットあたり手数料", func(t *testing.T) {
		s := newValidSession()
		s.PerUnitFee = -1
		assert.ErrorIs(t, s.Validate(), ErrInvalidServiceFee)
	})
}
